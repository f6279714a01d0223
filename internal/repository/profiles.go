package repository

import (
	"context"
	"errors"
	"log/slog"

	"workmarket/internal/domain"
	"workmarket/internal/models"
	"workmarket/internal/store"
)

// Collection names and their identifying fields.
const (
	CollectionUsers        = "users"
	CollectionClients      = "clients"
	CollectionCompanies    = "companies"
	CollectionFreelancers  = "freelancers"
	CollectionOrders       = "orders"
	CollectionApplications = "order_applications"
)

// UserRepository wraps the users collection.
type UserRepository struct {
	*Repository[*models.User]
}

func NewUserRepository(st store.Store, logger *slog.Logger) *UserRepository {
	return &UserRepository{
		Repository: New(st, CollectionUsers, "user_id", models.ParseUser, logger),
	}
}

// GetByPhoneNumber returns the user registered under a phone number, or
// nil when none exists.
func (r *UserRepository) GetByPhoneNumber(ctx context.Context, phone string) (*models.User, error) {
	users, err := r.Query(ctx, store.QueryOptions{
		Filters: []store.Filter{{Field: "phone_number", Op: store.OpEqual, Value: phone}},
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return users[0], nil
}

// AddRole appends a role to the user unless already present.
func (r *UserRepository) AddRole(ctx context.Context, userID, role string) (*models.User, error) {
	user, err := r.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.HasRole(role) {
		return user, nil
	}
	roles := append(append([]string{}, user.Roles...), role)
	return r.Update(ctx, userID, store.Document{"roles": roles})
}

// ClientRepository wraps the clients collection.
type ClientRepository struct {
	*Repository[*models.Client]
}

func NewClientRepository(st store.Store, logger *slog.Logger) *ClientRepository {
	return &ClientRepository{
		Repository: New(st, CollectionClients, "client_id", models.ParseClient, logger),
	}
}

// GetByUserID returns the client profile owned by a user, or nil when the
// user has none.
func (r *ClientRepository) GetByUserID(ctx context.Context, userID string) (*models.Client, error) {
	clients, err := r.Query(ctx, store.QueryOptions{
		Filters: []store.Filter{{Field: "user_id", Op: store.OpEqual, Value: userID}},
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		return nil, nil
	}
	return clients[0], nil
}

// AddCompany links a company to the client profile, deduplicating.
func (r *ClientRepository) AddCompany(ctx context.Context, clientID, companyID string) (*models.Client, error) {
	client, err := r.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	for _, id := range client.CompanyIDs {
		if id == companyID {
			return client, nil
		}
	}
	ids := append(append([]string{}, client.CompanyIDs...), companyID)
	return r.Update(ctx, clientID, store.Document{"company_ids": ids})
}

// FreelancerRepository wraps the freelancers collection.
type FreelancerRepository struct {
	*Repository[*models.Freelancer]
}

func NewFreelancerRepository(st store.Store, logger *slog.Logger) *FreelancerRepository {
	return &FreelancerRepository{
		Repository: New(st, CollectionFreelancers, "freelancer_id", models.ParseFreelancer, logger),
	}
}

// GetByUserID returns the freelancer profile owned by a user, or nil.
func (r *FreelancerRepository) GetByUserID(ctx context.Context, userID string) (*models.Freelancer, error) {
	freelancers, err := r.Query(ctx, store.QueryOptions{
		Filters: []store.Filter{{Field: "user_id", Op: store.OpEqual, Value: userID}},
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(freelancers) == 0 {
		return nil, nil
	}
	return freelancers[0], nil
}

// UpdateStatus moves the freelancer profile between pending and approved.
func (r *FreelancerRepository) UpdateStatus(ctx context.Context, freelancerID, status string) (*models.Freelancer, error) {
	return r.Update(ctx, freelancerID, store.Document{"status": status})
}

// Exists reports whether a freelancer document is present and readable.
func (r *FreelancerRepository) Exists(ctx context.Context, freelancerID string) (bool, error) {
	_, err := r.GetByID(ctx, freelancerID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
