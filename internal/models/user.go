package models

import (
	"time"

	"workmarket/internal/store"
)

// User roles.
const (
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
	RoleAdmin      = "admin"
)

type User struct {
	UserID      string    `json:"user_id"`
	Name        string    `json:"name,omitempty"`
	Surname     string    `json:"surname,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Roles       []string  `json:"roles"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ParseUser materializes a User from a raw document.
func ParseUser(doc store.Document) (*User, error) {
	if _, err := requireID(doc, "user_id"); err != nil {
		return nil, err
	}
	return decodeDocument[User](doc)
}
