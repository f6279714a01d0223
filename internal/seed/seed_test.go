package seed

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"workmarket/internal/models"
	"workmarket/internal/repository"
	"workmarket/internal/store"
)

const sampleFixtures = `
users:
  - user_id: user-1
    name: Ivan
    roles: [client]
freelancers:
  - freelancer_id: freelancer-1
    user_id: user-2
    status: approved
    specializations_with_levels:
      - specialization: backend
        skill_level: senior
orders:
  - order_id: order-1
    company_id: company-1
    order_description: demo
    order_status: approved
    specializations:
      - vacancy_id: vacancy-1
        specialization: backend
applications:
  - id: application-1
    order_id: order-1
    freelancer_id: freelancer-1
    company_id: company-1
    status: accepted
    specialization_index: 0
    specialization_name: backend
`

func TestParseAndApply(t *testing.T) {
	fixtures, err := Parse([]byte(sampleFixtures))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	st := store.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	seeder := NewSeeder(st, logger)
	ctx := context.Background()

	if err := seeder.Apply(ctx, fixtures); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	orders := repository.NewOrderRepository(st, logger)
	order, err := orders.GetByID(ctx, "order-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if order.OrderStatus != models.OrderApproved {
		t.Errorf("OrderStatus = %q, want approved", order.OrderStatus)
	}
	if len(order.Specializations) != 1 {
		t.Fatalf("got %d slots, want 1", len(order.Specializations))
	}

	// The accepted fixture application must occupy its slot.
	slot := order.Specializations[0]
	if !slot.IsOccupied || slot.OccupiedBy != "freelancer-1" {
		t.Errorf("slot = %+v, want occupied by freelancer-1", slot)
	}

	freelancers := repository.NewFreelancerRepository(st, logger)
	freelancer, err := freelancers.GetByID(ctx, "freelancer-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if freelancer.Status != models.FreelancerApproved {
		t.Errorf("Status = %q, want approved", freelancer.Status)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	fixtures, err := Parse([]byte(sampleFixtures))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	st := store.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	seeder := NewSeeder(st, logger)
	ctx := context.Background()

	if err := seeder.Apply(ctx, fixtures); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := seeder.Apply(ctx, fixtures); err != nil {
		t.Fatalf("Apply twice: %v", err)
	}

	users := repository.NewUserRepository(st, logger)
	all, err := users.Query(ctx, store.QueryOptions{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("got %d users after two runs, want 1", len(all))
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	if _, err := Parse([]byte("users: {not a list")); err == nil {
		t.Error("expected a parse error")
	}
}

func TestApplyRequiresIDs(t *testing.T) {
	fixtures := &Fixtures{Users: []UserFixture{{Name: "anonymous"}}}
	st := store.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := NewSeeder(st, logger).Apply(context.Background(), fixtures); err == nil {
		t.Error("expected an error for a fixture without an id")
	}
}
