package models

import (
	"fmt"
	"time"

	"workmarket/internal/store"
)

// Application statuses. Rejected is terminal.
const (
	ApplicationPending  = "pending"
	ApplicationAccepted = "accepted"
	ApplicationRejected = "rejected"
)

// OrderApplication records one freelancer's application to one order.
// SpecializationIndex is nil for a general, order-level application.
// CompanyID is denormalized from the order for fast filtering.
type OrderApplication struct {
	ID                  string    `json:"id"`
	OrderID             string    `json:"order_id"`
	FreelancerID        string    `json:"freelancer_id"`
	CompanyID           string    `json:"company_id"`
	Status              string    `json:"status"`
	SpecializationIndex *int      `json:"specialization_index,omitempty"`
	SpecializationName  string    `json:"specialization_name,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ValidStatusTransition reports whether an application may move between the
// two statuses: pending -> accepted, pending -> rejected and
// accepted -> rejected are the only legal moves.
func ValidStatusTransition(from, to string) bool {
	switch from {
	case ApplicationPending:
		return to == ApplicationAccepted || to == ApplicationRejected
	case ApplicationAccepted:
		return to == ApplicationRejected
	default:
		return false
	}
}

// ParseOrderApplication materializes an OrderApplication from a raw
// document.
func ParseOrderApplication(doc store.Document) (*OrderApplication, error) {
	if _, err := requireID(doc, "id"); err != nil {
		return nil, err
	}
	if _, err := requireID(doc, "order_id"); err != nil {
		return nil, err
	}
	if _, err := requireID(doc, "freelancer_id"); err != nil {
		return nil, err
	}
	a, err := decodeDocument[OrderApplication](doc)
	if err != nil {
		return nil, err
	}
	if a.Status == "" {
		a.Status = ApplicationPending
	}
	switch a.Status {
	case ApplicationPending, ApplicationAccepted, ApplicationRejected:
	default:
		return nil, fmt.Errorf("invalid application status %q", a.Status)
	}
	return a, nil
}
