package repository

import (
	"context"
	"log/slog"

	"workmarket/internal/models"
	"workmarket/internal/store"
)

// ApplicationRepository wraps the order_applications collection. The
// application set is the source of truth for slot occupancy; the occupancy
// queries here always derive from accepted applications, never from the
// order's cached flags.
type ApplicationRepository struct {
	*Repository[*models.OrderApplication]
}

func NewApplicationRepository(st store.Store, logger *slog.Logger) *ApplicationRepository {
	return &ApplicationRepository{
		Repository: New(st, CollectionApplications, "id", models.ParseOrderApplication, logger),
	}
}

// Create persists a new application, forcing the initial status to pending.
func (r *ApplicationRepository) Create(ctx context.Context, payload store.Document, id string) (*models.OrderApplication, error) {
	doc := copyPayload(payload)
	doc["status"] = models.ApplicationPending
	return r.Repository.Create(ctx, doc, id)
}

// GetByOrderID lists every application for an order.
func (r *ApplicationRepository) GetByOrderID(ctx context.Context, orderID string) ([]*models.OrderApplication, error) {
	return r.Query(ctx, store.QueryOptions{
		Filters: []store.Filter{{Field: "order_id", Op: store.OpEqual, Value: orderID}},
	})
}

// GetByFreelancerID lists every application made by a freelancer.
func (r *ApplicationRepository) GetByFreelancerID(ctx context.Context, freelancerID string) ([]*models.OrderApplication, error) {
	return r.Query(ctx, store.QueryOptions{
		Filters: []store.Filter{{Field: "freelancer_id", Op: store.OpEqual, Value: freelancerID}},
	})
}

// GetExistingApplication returns the freelancer's application for an
// order regardless of status, or nil. At most one may ever exist.
func (r *ApplicationRepository) GetExistingApplication(ctx context.Context, orderID, freelancerID string) (*models.OrderApplication, error) {
	applications, err := r.Query(ctx, store.QueryOptions{
		Filters: []store.Filter{
			{Field: "order_id", Op: store.OpEqual, Value: orderID},
			{Field: "freelancer_id", Op: store.OpEqual, Value: freelancerID},
		},
		Limit: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(applications) == 0 {
		return nil, nil
	}
	return applications[0], nil
}

// GetApplicationsForSpecialization lists applications targeting one slot.
func (r *ApplicationRepository) GetApplicationsForSpecialization(ctx context.Context, orderID string, index int) ([]*models.OrderApplication, error) {
	return r.Query(ctx, store.QueryOptions{
		Filters: []store.Filter{
			{Field: "order_id", Op: store.OpEqual, Value: orderID},
			{Field: "specialization_index", Op: store.OpEqual, Value: index},
		},
	})
}

// GetAcceptedFreelancersByOrder returns the freelancers whose applications
// for an order were accepted.
func (r *ApplicationRepository) GetAcceptedFreelancersByOrder(ctx context.Context, orderID string) ([]string, error) {
	applications, err := r.Query(ctx, store.QueryOptions{
		Filters: []store.Filter{
			{Field: "order_id", Op: store.OpEqual, Value: orderID},
			{Field: "status", Op: store.OpEqual, Value: models.ApplicationAccepted},
		},
	})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(applications))
	for _, app := range applications {
		ids = append(ids, app.FreelancerID)
	}
	return ids, nil
}

// IsSpecializationOccupied reports whether an accepted application already
// references the slot index.
func (r *ApplicationRepository) IsSpecializationOccupied(ctx context.Context, orderID string, index int) (bool, error) {
	applications, err := r.Query(ctx, store.QueryOptions{
		Filters: []store.Filter{
			{Field: "order_id", Op: store.OpEqual, Value: orderID},
			{Field: "specialization_index", Op: store.OpEqual, Value: index},
			{Field: "status", Op: store.OpEqual, Value: models.ApplicationAccepted},
		},
		Limit: 1,
	})
	if err != nil {
		return false, err
	}
	return len(applications) > 0, nil
}

// GetOccupiedSpecializationIndexes returns the slot indices backed by an
// accepted application.
func (r *ApplicationRepository) GetOccupiedSpecializationIndexes(ctx context.Context, orderID string) (map[int]bool, error) {
	applications, err := r.Query(ctx, store.QueryOptions{
		Filters: []store.Filter{
			{Field: "order_id", Op: store.OpEqual, Value: orderID},
			{Field: "status", Op: store.OpEqual, Value: models.ApplicationAccepted},
		},
	})
	if err != nil {
		return nil, err
	}
	occupied := make(map[int]bool, len(applications))
	for _, app := range applications {
		if app.SpecializationIndex != nil {
			occupied[*app.SpecializationIndex] = true
		}
	}
	return occupied, nil
}

// UpdateStatus transitions the application status.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, applicationID, status string) (*models.OrderApplication, error) {
	return r.Update(ctx, applicationID, store.Document{"status": status})
}
