package models

import (
	"fmt"
	"time"

	"workmarket/internal/store"
)

// Order approval statuses.
const (
	OrderPending  = "pending"
	OrderApproved = "approved"
)

// Order completion statuses.
const (
	CompletePending   = "pending"
	CompleteInProcess = "in_process"
	CompleteCompleted = "completed"
)

// Specialization is one advertised slot within an order, independently
// fillable by exactly one freelancer. VacancyID is minted once and survives
// order edits; IsOccupied and OccupiedBy are a denormalized cache of "does
// an accepted application reference this slot" - the application collection
// is the source of truth.
type Specialization struct {
	VacancyID      string `json:"vacancy_id"`
	Specialization string `json:"specialization"`
	SkillLevel     string `json:"skill_level,omitempty"`
	Requirements   string `json:"requirements,omitempty"`
	IsOccupied     bool   `json:"is_occupied"`
	OccupiedBy     string `json:"occupied_by_freelancer_id,omitempty"`
}

type Order struct {
	OrderID             string           `json:"order_id"`
	CompanyID           string           `json:"company_id"`
	OrderTitle          string           `json:"order_title,omitempty"`
	OrderDescription    string           `json:"order_description"`
	OrderStatus         string           `json:"order_status"`
	OrderCompleteStatus string           `json:"order_complete_status"`
	Requirements        string           `json:"requirements,omitempty"`
	ChatLink            string           `json:"chat_link,omitempty"`
	OrderCondition      map[string]any   `json:"order_condition,omitempty"`
	Contracts           map[string]any   `json:"contracts,omitempty"`
	Specializations     []Specialization `json:"order_specializations,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// SpecializationIndex resolves a vacancy id to its position in the slot
// list, or -1 when no slot carries that id.
func (o *Order) SpecializationIndex(vacancyID string) int {
	for i, spec := range o.Specializations {
		if spec.VacancyID == vacancyID {
			return i
		}
	}
	return -1
}

// ParseOrder materializes an Order from a raw document.
func ParseOrder(doc store.Document) (*Order, error) {
	if _, err := requireID(doc, "order_id"); err != nil {
		return nil, err
	}
	if _, err := requireID(doc, "company_id"); err != nil {
		return nil, err
	}
	o, err := decodeDocument[Order](doc)
	if err != nil {
		return nil, err
	}
	if o.OrderStatus == "" {
		o.OrderStatus = OrderPending
	}
	if o.OrderStatus != OrderPending && o.OrderStatus != OrderApproved {
		return nil, fmt.Errorf("invalid order status %q", o.OrderStatus)
	}
	if o.OrderCompleteStatus == "" {
		o.OrderCompleteStatus = CompletePending
	}
	switch o.OrderCompleteStatus {
	case CompletePending, CompleteInProcess, CompleteCompleted:
	default:
		return nil, fmt.Errorf("invalid order complete status %q", o.OrderCompleteStatus)
	}
	return o, nil
}
