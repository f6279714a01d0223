package models

import (
	"strings"
	"time"

	"workmarket/internal/store"
)

type Company struct {
	CompanyID             string    `json:"company_id"`
	ClientID              string    `json:"client_id"`
	OwnerIDs              []string  `json:"owner_ids"`
	CompanyName           string    `json:"company_name,omitempty"`
	NormalizedCompanyName string    `json:"normalized_company_name,omitempty"`
	CompanyIndustry       string    `json:"company_industry,omitempty"`
	CompanyDescription    string    `json:"company_description,omitempty"`
	ClientPosition        string    `json:"client_position,omitempty"`
	CompanySize           int       `json:"company_size,omitempty"`
	CompanyLogo           string    `json:"company_logo,omitempty"`
	CompanyOrders         []string  `json:"company_orders"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// NormalizeCompanyName reduces a display name to its uniqueness key.
func NormalizeCompanyName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ParseCompany materializes a Company from a raw document.
func ParseCompany(doc store.Document) (*Company, error) {
	if _, err := requireID(doc, "company_id"); err != nil {
		return nil, err
	}
	if _, err := requireID(doc, "client_id"); err != nil {
		return nil, err
	}
	return decodeDocument[Company](doc)
}
