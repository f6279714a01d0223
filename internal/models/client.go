package models

import (
	"time"

	"workmarket/internal/store"
)

type Client struct {
	ClientID   string    `json:"client_id"`
	UserID     string    `json:"user_id"`
	CompanyIDs []string  `json:"company_ids"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ParseClient materializes a Client from a raw document.
func ParseClient(doc store.Document) (*Client, error) {
	if _, err := requireID(doc, "client_id"); err != nil {
		return nil, err
	}
	return decodeDocument[Client](doc)
}
