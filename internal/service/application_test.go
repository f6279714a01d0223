package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"workmarket/internal/domain"
	"workmarket/internal/models"
	"workmarket/internal/repository"
	"workmarket/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type appFixture struct {
	service      *ApplicationService
	applications *repository.ApplicationRepository
	orders       *repository.OrderRepository
	freelancers  *repository.FreelancerRepository
}

// newAppFixture seeds an approved freelancer, a pending freelancer and an
// approved two-slot order.
func newAppFixture(t *testing.T) *appFixture {
	t.Helper()
	st := store.NewMemoryStore()
	logger := testLogger()
	applications := repository.NewApplicationRepository(st, logger)
	orders := repository.NewOrderRepository(st, logger)
	freelancers := repository.NewFreelancerRepository(st, logger)
	ctx := context.Background()

	if _, err := freelancers.Upsert(ctx, store.Document{
		"user_id": "user-approved",
		"status":  models.FreelancerApproved,
	}, "freelancer-approved"); err != nil {
		t.Fatalf("seed freelancer: %v", err)
	}
	if _, err := freelancers.Upsert(ctx, store.Document{
		"user_id": "user-pending",
		"status":  models.FreelancerPending,
	}, "freelancer-pending"); err != nil {
		t.Fatalf("seed freelancer: %v", err)
	}
	if _, err := freelancers.Upsert(ctx, store.Document{
		"user_id": "user-second",
		"status":  models.FreelancerApproved,
	}, "freelancer-second"); err != nil {
		t.Fatalf("seed freelancer: %v", err)
	}

	if _, err := orders.Upsert(ctx, store.Document{
		"company_id":            "company-1",
		"order_description":     "Build the thing",
		"order_status":          models.OrderApproved,
		"order_complete_status": models.CompletePending,
		"order_specializations": []any{
			map[string]any{"vacancy_id": "vacancy-backend", "specialization": "backend", "is_occupied": false},
			map[string]any{"vacancy_id": "vacancy-design", "specialization": "design", "is_occupied": false},
		},
	}, "order-1"); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	if _, err := orders.Upsert(ctx, store.Document{
		"company_id":            "company-1",
		"order_description":     "Not approved yet",
		"order_status":          models.OrderPending,
		"order_complete_status": models.CompletePending,
	}, "order-pending"); err != nil {
		t.Fatalf("seed order: %v", err)
	}

	return &appFixture{
		service:      NewApplicationService(applications, orders, freelancers, logger),
		applications: applications,
		orders:       orders,
		freelancers:  freelancers,
	}
}

func TestCreateApplicationForVacancy(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	app, err := f.service.CreateApplication(ctx, "freelancer-approved", CreateApplicationRequest{
		OrderID:   "order-1",
		VacancyID: "vacancy-backend",
	})
	if err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}
	if app.Status != models.ApplicationPending {
		t.Errorf("Status = %q, want pending", app.Status)
	}
	if app.SpecializationIndex == nil || *app.SpecializationIndex != 0 {
		t.Errorf("SpecializationIndex = %v, want 0", app.SpecializationIndex)
	}
	if app.SpecializationName != "backend" {
		t.Errorf("SpecializationName = %q, want backend", app.SpecializationName)
	}
	if app.VacancyID != "vacancy-backend" {
		t.Errorf("VacancyID = %q, want vacancy-backend", app.VacancyID)
	}
	if app.CompanyID != "company-1" {
		t.Errorf("CompanyID = %q, want company-1", app.CompanyID)
	}
}

func TestCreateApplicationGeneral(t *testing.T) {
	f := newAppFixture(t)

	app, err := f.service.CreateApplication(context.Background(), "freelancer-approved", CreateApplicationRequest{
		OrderID: "order-1",
	})
	if err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}
	if app.SpecializationIndex != nil {
		t.Errorf("general application should not bind a slot, got index %d", *app.SpecializationIndex)
	}
}

func TestCreateApplicationRules(t *testing.T) {
	tests := []struct {
		name         string
		freelancerID string
		orderID      string
		vacancyID    string
		wantErr      error
	}{
		{
			name:         "unknown freelancer",
			freelancerID: "freelancer-ghost",
			orderID:      "order-1",
			wantErr:      domain.ErrNotFound,
		},
		{
			name:         "unapproved freelancer",
			freelancerID: "freelancer-pending",
			orderID:      "order-1",
			wantErr:      domain.ErrValidation,
		},
		{
			name:         "unknown order",
			freelancerID: "freelancer-approved",
			orderID:      "order-ghost",
			wantErr:      domain.ErrNotFound,
		},
		{
			name:         "unapproved order",
			freelancerID: "freelancer-approved",
			orderID:      "order-pending",
			wantErr:      domain.ErrValidation,
		},
		{
			name:         "unknown vacancy",
			freelancerID: "freelancer-approved",
			orderID:      "order-1",
			vacancyID:    "vacancy-ghost",
			wantErr:      domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAppFixture(t)
			_, err := f.service.CreateApplication(context.Background(), tt.freelancerID, CreateApplicationRequest{
				OrderID:   tt.orderID,
				VacancyID: tt.vacancyID,
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateApplicationOncePerOrder(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	app, err := f.service.CreateApplication(ctx, "freelancer-approved", CreateApplicationRequest{
		OrderID:   "order-1",
		VacancyID: "vacancy-backend",
	})
	if err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}

	// Second attempt against the other slot still conflicts.
	_, err = f.service.CreateApplication(ctx, "freelancer-approved", CreateApplicationRequest{
		OrderID:   "order-1",
		VacancyID: "vacancy-design",
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}

	// A rejected application blocks reapplying too.
	if _, err := f.service.UpdateApplicationStatus(ctx, app.ID, models.ApplicationRejected); err != nil {
		t.Fatalf("UpdateApplicationStatus: %v", err)
	}
	_, err = f.service.CreateApplication(ctx, "freelancer-approved", CreateApplicationRequest{
		OrderID: "order-1",
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("err after rejection = %v, want ErrConflict", err)
	}
}

func TestAcceptOccupiesSlot(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	app, err := f.service.CreateApplication(ctx, "freelancer-approved", CreateApplicationRequest{
		OrderID:   "order-1",
		VacancyID: "vacancy-backend",
	})
	if err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}

	accepted, err := f.service.UpdateApplicationStatus(ctx, app.ID, models.ApplicationAccepted)
	if err != nil {
		t.Fatalf("UpdateApplicationStatus: %v", err)
	}
	if accepted.Status != models.ApplicationAccepted {
		t.Errorf("Status = %q, want accepted", accepted.Status)
	}

	order, err := f.orders.GetByID(ctx, "order-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	slot := order.Specializations[0]
	if !slot.IsOccupied || slot.OccupiedBy != "freelancer-approved" {
		t.Errorf("slot 0 = %+v, want occupied by freelancer-approved", slot)
	}

	available, err := f.service.GetAvailableSpecializations(ctx, "order-1")
	if err != nil {
		t.Fatalf("GetAvailableSpecializations: %v", err)
	}
	if len(available) != 1 || available[0].VacancyID != "vacancy-design" {
		t.Errorf("available = %+v, want only vacancy-design", available)
	}

	// A second freelancer applying for the occupied slot is refused.
	_, err = f.service.CreateApplication(ctx, "freelancer-second", CreateApplicationRequest{
		OrderID:   "order-1",
		VacancyID: "vacancy-backend",
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
}

func TestAcceptRefusedWhenSlotTaken(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	// Both freelancers apply for the same slot while it is still open.
	first, err := f.service.CreateApplication(ctx, "freelancer-approved", CreateApplicationRequest{
		OrderID:   "order-1",
		VacancyID: "vacancy-backend",
	})
	if err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}
	second, err := f.service.CreateApplication(ctx, "freelancer-second", CreateApplicationRequest{
		OrderID:   "order-1",
		VacancyID: "vacancy-backend",
	})
	if err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}

	if _, err := f.service.UpdateApplicationStatus(ctx, first.ID, models.ApplicationAccepted); err != nil {
		t.Fatalf("accept first: %v", err)
	}
	_, err = f.service.UpdateApplicationStatus(ctx, second.ID, models.ApplicationAccepted)
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("accept second: err = %v, want ErrConflict", err)
	}
}

func TestRejectAcceptedReleasesSlot(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	app, err := f.service.CreateApplication(ctx, "freelancer-approved", CreateApplicationRequest{
		OrderID:   "order-1",
		VacancyID: "vacancy-backend",
	})
	if err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}
	if _, err := f.service.UpdateApplicationStatus(ctx, app.ID, models.ApplicationAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := f.service.UpdateApplicationStatus(ctx, app.ID, models.ApplicationRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}

	order, err := f.orders.GetByID(ctx, "order-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	slot := order.Specializations[0]
	if slot.IsOccupied || slot.OccupiedBy != "" {
		t.Errorf("slot 0 = %+v, want released", slot)
	}

	available, err := f.service.GetAvailableSpecializations(ctx, "order-1")
	if err != nil {
		t.Fatalf("GetAvailableSpecializations: %v", err)
	}
	if len(available) != 2 {
		t.Errorf("available = %d slots, want 2 after release", len(available))
	}
}

func TestStatusTransitionRules(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	app, err := f.service.CreateApplication(ctx, "freelancer-approved", CreateApplicationRequest{
		OrderID: "order-1",
	})
	if err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}

	if _, err := f.service.UpdateApplicationStatus(ctx, app.ID, "maybe"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("unknown status: err = %v, want ErrValidation", err)
	}
	if _, err := f.service.UpdateApplicationStatus(ctx, app.ID, models.ApplicationPending); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("pending -> pending: err = %v, want ErrConflict", err)
	}

	if _, err := f.service.UpdateApplicationStatus(ctx, app.ID, models.ApplicationRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}
	// Rejection is terminal.
	if _, err := f.service.UpdateApplicationStatus(ctx, app.ID, models.ApplicationAccepted); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("rejected -> accepted: err = %v, want ErrConflict", err)
	}
}

func TestEligibilityDryRun(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	result, err := f.service.ValidateApplicationEligibility(ctx, "freelancer-approved", "order-1", "vacancy-backend")
	if err != nil {
		t.Fatalf("ValidateApplicationEligibility: %v", err)
	}
	if !result.Eligible {
		t.Errorf("Eligible = false, reason %q", result.Reason)
	}

	result, err = f.service.ValidateApplicationEligibility(ctx, "freelancer-pending", "order-1", "")
	if err != nil {
		t.Fatalf("ValidateApplicationEligibility: %v", err)
	}
	if result.Eligible {
		t.Error("pending freelancer reported eligible")
	}
	if result.Reason != "Freelancer profile must be approved to apply for orders" {
		t.Errorf("Reason = %q", result.Reason)
	}

	// The dry run writes nothing: the real application still goes through.
	if _, err := f.service.CreateApplication(ctx, "freelancer-approved", CreateApplicationRequest{
		OrderID:   "order-1",
		VacancyID: "vacancy-backend",
	}); err != nil {
		t.Fatalf("CreateApplication after dry run: %v", err)
	}
}

func TestAvailableSpecializationsUnknownOrder(t *testing.T) {
	f := newAppFixture(t)

	available, err := f.service.GetAvailableSpecializations(context.Background(), "order-ghost")
	if err != nil {
		t.Fatalf("GetAvailableSpecializations: %v", err)
	}
	if len(available) != 0 {
		t.Errorf("available = %+v, want empty for unknown order", available)
	}
}
