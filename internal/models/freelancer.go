package models

import (
	"fmt"
	"time"

	"workmarket/internal/store"
)

// Freelancer profile statuses.
const (
	FreelancerPending  = "pending"
	FreelancerApproved = "approved"
)

type Freelancer struct {
	FreelancerID    string              `json:"freelancer_id"`
	UserID          string              `json:"user_id"`
	IIN             string              `json:"iin,omitempty"`
	City            string              `json:"city,omitempty"`
	Email           string              `json:"email,omitempty"`
	Status          string              `json:"status"`
	Specializations []map[string]string `json:"specializations_with_levels,omitempty"`
	PaymentInfo     map[string]string   `json:"payment_info,omitempty"`
	SocialLinks     map[string]string   `json:"social_links,omitempty"`
	PortfolioLinks  map[string]string   `json:"portfolio_links,omitempty"`
	AvatarURL       string              `json:"avatar_url,omitempty"`
	Bio             string              `json:"bio,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// ParseFreelancer materializes a Freelancer from a raw document.
func ParseFreelancer(doc store.Document) (*Freelancer, error) {
	if _, err := requireID(doc, "freelancer_id"); err != nil {
		return nil, err
	}
	f, err := decodeDocument[Freelancer](doc)
	if err != nil {
		return nil, err
	}
	if f.Status == "" {
		f.Status = FreelancerPending
	}
	if f.Status != FreelancerPending && f.Status != FreelancerApproved {
		return nil, fmt.Errorf("invalid freelancer status %q", f.Status)
	}
	return f, nil
}
