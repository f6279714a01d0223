package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"workmarket/internal/domain"
	"workmarket/internal/models"
	"workmarket/internal/repository"
	"workmarket/internal/store"
)

// CreateApplicationRequest is the payload for applying to an order. An
// empty VacancyID means a general, order-level application.
type CreateApplicationRequest struct {
	OrderID   string `json:"order_id"`
	VacancyID string `json:"vacancy_id,omitempty"`
}

// Validate implements request validation.
func (r CreateApplicationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OrderID, validation.Required),
	)
}

// ApplicationResponse is the external view of an application, with the
// vacancy id resolved back from the order's slot list.
type ApplicationResponse struct {
	ID                  string    `json:"id"`
	OrderID             string    `json:"order_id"`
	FreelancerID        string    `json:"freelancer_id"`
	CompanyID           string    `json:"company_id"`
	Status              string    `json:"status"`
	SpecializationIndex *int      `json:"specialization_index,omitempty"`
	SpecializationName  string    `json:"specialization_name,omitempty"`
	VacancyID           string    `json:"vacancy_id,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// AvailableSpecialization is an open slot augmented with its positional
// index in the order's slot list.
type AvailableSpecialization struct {
	models.Specialization
	Index int `json:"index"`
}

// EligibilityResult is the dry-run answer to "can this freelancer apply".
type EligibilityResult struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason"`
}

// ApplicationService is the allocation engine: it validates eligibility,
// prevents duplicate or conflicting applications and transitions
// application status while keeping slot occupancy consistent. The store
// offers no cross-document transactions, so the two writes of an accept
// (slot, then status) are ordered conservatively: a crash in between
// leaves the slot marked occupied, under-reporting availability instead of
// over-booking.
type ApplicationService struct {
	applications *repository.ApplicationRepository
	orders       *repository.OrderRepository
	freelancers  *repository.FreelancerRepository
	logger       *slog.Logger
}

func NewApplicationService(
	applications *repository.ApplicationRepository,
	orders *repository.OrderRepository,
	freelancers *repository.FreelancerRepository,
	logger *slog.Logger,
) *ApplicationService {
	return &ApplicationService{
		applications: applications,
		orders:       orders,
		freelancers:  freelancers,
		logger:       logger,
	}
}

// eligibility carries what the checks already loaded so the create path
// does not re-read it.
type eligibility struct {
	order               *models.Order
	specializationIndex *int
	specializationName  string
}

// checkEligibility enforces the application rules. The dry-run and the
// create path both run exactly this function, so the two cannot drift
// apart.
func (s *ApplicationService) checkEligibility(ctx context.Context, freelancerID, orderID, vacancyID string) (*eligibility, error) {
	freelancer, err := s.freelancers.GetByID(ctx, freelancerID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.NotFoundError{Message: "Freelancer not found"}
	}
	if err != nil {
		return nil, err
	}
	if freelancer.Status != models.FreelancerApproved {
		return nil, &domain.ValidationError{Message: "Freelancer profile must be approved to apply for orders"}
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.NotFoundError{Message: "Order not found"}
	}
	if err != nil {
		return nil, err
	}
	if order.OrderStatus != models.OrderApproved {
		return nil, &domain.ValidationError{Message: "Cannot apply to unapproved orders"}
	}

	result := &eligibility{order: order}

	if vacancyID != "" {
		index := order.SpecializationIndex(vacancyID)
		if index < 0 {
			return nil, &domain.ValidationError{Message: "Invalid vacancy ID"}
		}
		occupied, err := s.applications.IsSpecializationOccupied(ctx, orderID, index)
		if err != nil {
			return nil, err
		}
		if occupied {
			return nil, &domain.ConflictError{Message: "This specialization is already occupied by another freelancer"}
		}
		result.specializationIndex = &index
		result.specializationName = order.Specializations[index].Specialization
	}

	// One application per (order, freelancer), ever. Rejected applications
	// block reapplying too.
	existing, err := s.applications.GetExistingApplication(ctx, orderID, freelancerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if vacancyID != "" {
			return nil, &domain.ConflictError{Message: "You have already applied for this order"}
		}
		return nil, &domain.ConflictError{Message: "Application already exists for this order"}
	}

	return result, nil
}

// ValidateApplicationEligibility is the dry-run query. Rule violations come
// back as an ineligible result; infrastructure failures stay errors.
func (s *ApplicationService) ValidateApplicationEligibility(ctx context.Context, freelancerID, orderID, vacancyID string) (*EligibilityResult, error) {
	_, err := s.checkEligibility(ctx, freelancerID, orderID, vacancyID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrConflict) {
			return &EligibilityResult{Eligible: false, Reason: err.Error()}, nil
		}
		return nil, err
	}
	return &EligibilityResult{Eligible: true, Reason: "Eligible to apply"}, nil
}

// CreateApplication validates eligibility and persists a pending
// application.
func (s *ApplicationService) CreateApplication(ctx context.Context, freelancerID string, req CreateApplicationRequest) (*ApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	elig, err := s.checkEligibility(ctx, freelancerID, req.OrderID, req.VacancyID)
	if err != nil {
		return nil, err
	}

	payload := store.Document{
		"order_id":      req.OrderID,
		"freelancer_id": freelancerID,
		"company_id":    elig.order.CompanyID,
	}
	if elig.specializationIndex != nil {
		payload["specialization_index"] = *elig.specializationIndex
		payload["specialization_name"] = elig.specializationName
	}

	application, err := s.applications.Create(ctx, payload, "")
	if err != nil {
		return nil, err
	}

	s.logger.Info("application created",
		"application_id", application.ID,
		"order_id", application.OrderID,
		"freelancer_id", application.FreelancerID,
	)
	return s.applicationResponse(ctx, application)
}

// GetApplication returns one application by id.
func (s *ApplicationService) GetApplication(ctx context.Context, applicationID string) (*ApplicationResponse, error) {
	application, err := s.applications.GetByID(ctx, applicationID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.NotFoundError{Message: "Application not found"}
	}
	if err != nil {
		return nil, err
	}
	return s.applicationResponse(ctx, application)
}

// GetApplicationsByOrder lists applications for an order.
func (s *ApplicationService) GetApplicationsByOrder(ctx context.Context, orderID string) ([]*ApplicationResponse, error) {
	applications, err := s.applications.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.applicationResponses(ctx, applications)
}

// GetApplicationsByFreelancer lists a freelancer's applications.
func (s *ApplicationService) GetApplicationsByFreelancer(ctx context.Context, freelancerID string) ([]*ApplicationResponse, error) {
	applications, err := s.applications.GetByFreelancerID(ctx, freelancerID)
	if err != nil {
		return nil, err
	}
	return s.applicationResponses(ctx, applications)
}

// GetApplicationsBySpecialization lists applications targeting one slot.
func (s *ApplicationService) GetApplicationsBySpecialization(ctx context.Context, orderID string, index int) ([]*ApplicationResponse, error) {
	applications, err := s.applications.GetApplicationsForSpecialization(ctx, orderID, index)
	if err != nil {
		return nil, err
	}
	return s.applicationResponses(ctx, applications)
}

// UpdateApplicationStatus drives the application state machine. Accepting
// an application bound to a slot marks the slot occupied before flipping
// the status; rejecting a previously accepted application releases the
// slot first.
func (s *ApplicationService) UpdateApplicationStatus(ctx context.Context, applicationID, status string) (*ApplicationResponse, error) {
	switch status {
	case models.ApplicationPending, models.ApplicationAccepted, models.ApplicationRejected:
	default:
		return nil, &domain.ValidationError{Message: fmt.Sprintf("invalid application status %q", status)}
	}

	application, err := s.applications.GetByID(ctx, applicationID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.NotFoundError{Message: "Application not found"}
	}
	if err != nil {
		return nil, err
	}

	if !models.ValidStatusTransition(application.Status, status) {
		return nil, &domain.ConflictError{
			Message: fmt.Sprintf("cannot transition application from %s to %s", application.Status, status),
		}
	}

	if status == models.ApplicationAccepted && application.SpecializationIndex != nil {
		occupied, err := s.applications.IsSpecializationOccupied(ctx, application.OrderID, *application.SpecializationIndex)
		if err != nil {
			return nil, err
		}
		if occupied {
			return nil, &domain.ConflictError{Message: "This specialization is already occupied by another freelancer"}
		}
		if err := s.markSpecialization(ctx, application, true); err != nil {
			return nil, err
		}
	} else if status == models.ApplicationRejected && application.Status == models.ApplicationAccepted && application.SpecializationIndex != nil {
		if err := s.markSpecialization(ctx, application, false); err != nil {
			return nil, err
		}
	}

	updated, err := s.applications.UpdateStatus(ctx, applicationID, status)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.NotFoundError{Message: "Application not found"}
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("application status updated",
		"application_id", applicationID,
		"from", application.Status,
		"to", status,
	)
	return s.applicationResponse(ctx, updated)
}

// GetAvailableSpecializations reports the open slots of an order. Truth is
// derived live from the accepted application set, never from the slot's
// cached flag, so a crash between the slot write and the status write
// still reads conservatively.
func (s *ApplicationService) GetAvailableSpecializations(ctx context.Context, orderID string) ([]AvailableSpecialization, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, domain.ErrNotFound) {
		return []AvailableSpecialization{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(order.Specializations) == 0 {
		return []AvailableSpecialization{}, nil
	}

	occupied, err := s.applications.GetOccupiedSpecializationIndexes(ctx, orderID)
	if err != nil {
		return nil, err
	}

	available := make([]AvailableSpecialization, 0, len(order.Specializations))
	for idx, spec := range order.Specializations {
		if !occupied[idx] {
			available = append(available, AvailableSpecialization{Specialization: spec, Index: idx})
		}
	}
	return available, nil
}

// markSpecialization rewrites the slot list with the application's slot
// occupied or released. A stale index (order edited underneath) is ignored
// rather than failed, matching the cache-only nature of these fields.
func (s *ApplicationService) markSpecialization(ctx context.Context, application *models.OrderApplication, occupied bool) error {
	order, err := s.orders.GetByID(ctx, application.OrderID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	index := *application.SpecializationIndex
	if index < 0 || index >= len(order.Specializations) {
		return nil
	}

	specs := make([]models.Specialization, len(order.Specializations))
	copy(specs, order.Specializations)
	if occupied {
		specs[index].IsOccupied = true
		specs[index].OccupiedBy = application.FreelancerID
	} else {
		specs[index].IsOccupied = false
		specs[index].OccupiedBy = ""
	}

	if _, err := s.orders.SetSpecializations(ctx, application.OrderID, specs); err != nil {
		return err
	}
	return nil
}

// applicationResponse resolves the slot's vacancy id back from the order.
func (s *ApplicationService) applicationResponse(ctx context.Context, application *models.OrderApplication) (*ApplicationResponse, error) {
	resp := &ApplicationResponse{
		ID:                  application.ID,
		OrderID:             application.OrderID,
		FreelancerID:        application.FreelancerID,
		CompanyID:           application.CompanyID,
		Status:              application.Status,
		SpecializationIndex: application.SpecializationIndex,
		SpecializationName:  application.SpecializationName,
		CreatedAt:           application.CreatedAt,
		UpdatedAt:           application.UpdatedAt,
	}

	if application.SpecializationIndex != nil {
		order, err := s.orders.GetByID(ctx, application.OrderID)
		if err == nil && *application.SpecializationIndex < len(order.Specializations) {
			resp.VacancyID = order.Specializations[*application.SpecializationIndex].VacancyID
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	return resp, nil
}

func (s *ApplicationService) applicationResponses(ctx context.Context, applications []*models.OrderApplication) ([]*ApplicationResponse, error) {
	responses := make([]*ApplicationResponse, 0, len(applications))
	for _, application := range applications {
		resp, err := s.applicationResponse(ctx, application)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}
