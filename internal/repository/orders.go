package repository

import (
	"context"
	"log/slog"

	"workmarket/internal/models"
	"workmarket/internal/store"
)

// OrderRepository wraps the orders collection.
type OrderRepository struct {
	*Repository[*models.Order]
}

func NewOrderRepository(st store.Store, logger *slog.Logger) *OrderRepository {
	return &OrderRepository{
		Repository: New(st, CollectionOrders, "order_id", models.ParseOrder, logger),
	}
}

// GetApprovedOrders lists approved orders with offset/limit pagination.
func (r *OrderRepository) GetApprovedOrders(ctx context.Context, offset, limit int) ([]*models.Order, error) {
	return r.Query(ctx, store.QueryOptions{
		Filters: []store.Filter{{Field: "order_status", Op: store.OpEqual, Value: models.OrderApproved}},
		Offset:  offset,
		Limit:   limit,
	})
}

// GetPendingOrders lists orders awaiting approval.
func (r *OrderRepository) GetPendingOrders(ctx context.Context, offset, limit int) ([]*models.Order, error) {
	return r.Query(ctx, store.QueryOptions{
		Filters: []store.Filter{{Field: "order_status", Op: store.OpEqual, Value: models.OrderPending}},
		Offset:  offset,
		Limit:   limit,
	})
}

// GetByCompanyID lists a company's orders.
func (r *OrderRepository) GetByCompanyID(ctx context.Context, companyID string, offset, limit int) ([]*models.Order, error) {
	return r.Query(ctx, store.QueryOptions{
		Filters: []store.Filter{{Field: "company_id", Op: store.OpEqual, Value: companyID}},
		Offset:  offset,
		Limit:   limit,
	})
}

// CountByStatus counts orders in a given approval status.
func (r *OrderRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	orders, err := r.Query(ctx, store.QueryOptions{
		Filters: []store.Filter{{Field: "order_status", Op: store.OpEqual, Value: status}},
	})
	if err != nil {
		return 0, err
	}
	return len(orders), nil
}

// UpdateStatus updates the approval and/or completion status. Passing two
// empty strings is a no-op read.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID, orderStatus, completeStatus string) (*models.Order, error) {
	fields := store.Document{}
	if orderStatus != "" {
		fields["order_status"] = orderStatus
	}
	if completeStatus != "" {
		fields["order_complete_status"] = completeStatus
	}
	if len(fields) == 0 {
		return r.GetByID(ctx, orderID)
	}
	return r.Update(ctx, orderID, fields)
}

// SetSpecializations writes the whole slot list back. Slot occupancy
// mutations always rewrite the full list so the store sees one coherent
// value.
func (r *OrderRepository) SetSpecializations(ctx context.Context, orderID string, specs []models.Specialization) (*models.Order, error) {
	return r.Update(ctx, orderID, store.Document{"order_specializations": specializationDocs(specs)})
}

// specializationDocs converts typed slots to their document form.
func specializationDocs(specs []models.Specialization) []any {
	out := make([]any, len(specs))
	for i, spec := range specs {
		doc := map[string]any{
			"vacancy_id":     spec.VacancyID,
			"specialization": spec.Specialization,
			"is_occupied":    spec.IsOccupied,
		}
		if spec.SkillLevel != "" {
			doc["skill_level"] = spec.SkillLevel
		}
		if spec.Requirements != "" {
			doc["requirements"] = spec.Requirements
		}
		if spec.OccupiedBy != "" {
			doc["occupied_by_freelancer_id"] = spec.OccupiedBy
		}
		out[i] = doc
	}
	return out
}
