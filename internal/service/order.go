package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"workmarket/internal/config"
	"workmarket/internal/domain"
	"workmarket/internal/models"
	"workmarket/internal/repository"
	"workmarket/internal/store"
)

// SpecializationInput is one slot as submitted by a client. VacancyID is
// optional: the service mints one when absent and preserves existing ids
// across edits.
type SpecializationInput struct {
	VacancyID      string `json:"vacancy_id,omitempty"`
	Specialization string `json:"specialization"`
	SkillLevel     string `json:"skill_level,omitempty"`
	Requirements   string `json:"requirements,omitempty"`
}

// CreateOrderRequest carries the order payload plus the profile fields the
// original onboarding flow collects alongside it.
type CreateOrderRequest struct {
	Name             string                `json:"name,omitempty"`
	Surname          string                `json:"surname,omitempty"`
	CompanyName      string                `json:"company_name,omitempty"`
	CompanyPosition  string                `json:"company_position,omitempty"`
	OrderTitle       string                `json:"order_title,omitempty"`
	OrderDescription string                `json:"order_description"`
	Requirements     string                `json:"requirements,omitempty"`
	ChatLink         string                `json:"chat_link,omitempty"`
	Specializations  []SpecializationInput `json:"order_specializations,omitempty"`
}

func (r CreateOrderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OrderTitle, validation.Length(0, config.MaxOrderTitleLength)),
		validation.Field(&r.OrderDescription, validation.Required, validation.Length(1, config.MaxOrderDescriptionLength)),
		validation.Field(&r.CompanyName, validation.Length(0, config.MaxCompanyNameLength)),
		validation.Field(&r.Requirements, validation.Length(0, config.MaxRequirementsLength)),
		validation.Field(&r.Specializations, validation.Each(validation.By(func(value interface{}) error {
			spec, _ := value.(SpecializationInput)
			return validation.ValidateStruct(&spec,
				validation.Field(&spec.Specialization, validation.Required, validation.Length(1, config.MaxSpecializationNameLength)),
				validation.Field(&spec.Requirements, validation.Length(0, config.MaxRequirementsLength)),
			)
		}))),
	)
}

// UpdateOrderRequest merges order fields. A nil Specializations slice
// leaves the slot list untouched.
type UpdateOrderRequest struct {
	OrderTitle       *string               `json:"order_title,omitempty"`
	OrderDescription *string               `json:"order_description,omitempty"`
	Requirements     *string               `json:"requirements,omitempty"`
	ChatLink         *string               `json:"chat_link,omitempty"`
	Specializations  []SpecializationInput `json:"order_specializations,omitempty"`
}

// OrderResponse is the external view of an order. Colleagues are the
// freelancers whose applications were accepted.
type OrderResponse struct {
	OrderID             string                  `json:"order_id"`
	CompanyID           string                  `json:"company_id"`
	OrderTitle          string                  `json:"order_title,omitempty"`
	OrderDescription    string                  `json:"order_description"`
	OrderStatus         string                  `json:"order_status"`
	OrderCompleteStatus string                  `json:"order_complete_status"`
	Requirements        string                  `json:"requirements,omitempty"`
	ChatLink            string                  `json:"chat_link,omitempty"`
	Specializations     []models.Specialization `json:"order_specializations,omitempty"`
	Colleagues          []string                `json:"order_colleagues"`
	CreatedAt           time.Time               `json:"created_at"`
	UpdatedAt           time.Time               `json:"updated_at"`
}

// OrderService owns order lifecycle: creation with company resolution,
// edits that keep vacancy ids stable, and status transitions.
type OrderService struct {
	orders       *repository.OrderRepository
	clients      *repository.ClientRepository
	companies    *repository.CompanyRepository
	users        *repository.UserRepository
	applications *repository.ApplicationRepository
	logger       *slog.Logger
}

func NewOrderService(
	orders *repository.OrderRepository,
	clients *repository.ClientRepository,
	companies *repository.CompanyRepository,
	users *repository.UserRepository,
	applications *repository.ApplicationRepository,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:       orders,
		clients:      clients,
		companies:    companies,
		users:        users,
		applications: applications,
		logger:       logger,
	}
}

// CreateOrder creates a pending order for the user's company, creating the
// client profile and company on the way when missing. Every slot gets a
// stable vacancy id and unoccupied defaults.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, req CreateOrderRequest) (*OrderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	if err := s.ensureUserProfile(ctx, userID, req.Name, req.Surname); err != nil {
		return nil, err
	}
	client, err := s.ensureClientProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	company, err := s.getOrCreateCompany(ctx, client.ClientID, req.CompanyName, req.CompanyPosition)
	if err != nil {
		return nil, err
	}

	payload := store.Document{
		"company_id":            company.CompanyID,
		"order_description":     req.OrderDescription,
		"order_status":          models.OrderPending,
		"order_complete_status": models.CompletePending,
	}
	if req.OrderTitle != "" {
		payload["order_title"] = req.OrderTitle
	}
	if req.Requirements != "" {
		payload["requirements"] = req.Requirements
	}
	if req.ChatLink != "" {
		payload["chat_link"] = req.ChatLink
	}
	if len(req.Specializations) > 0 {
		payload["order_specializations"] = buildSpecializations(req.Specializations, nil)
	}

	order, err := s.orders.Create(ctx, payload, "")
	if err != nil {
		return nil, err
	}
	if _, err := s.companies.AddOrder(ctx, company.CompanyID, order.OrderID); err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		"order_id", order.OrderID,
		"company_id", company.CompanyID,
		"slots", len(order.Specializations),
	)
	return s.orderResponse(ctx, order)
}

// GetOrder returns one order.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*OrderResponse, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.NotFoundError{Message: "Order not found"}
	}
	if err != nil {
		return nil, err
	}
	return s.orderResponse(ctx, order)
}

// GetApprovedOrders lists approved orders.
func (s *OrderService) GetApprovedOrders(ctx context.Context, offset, limit int) ([]*OrderResponse, error) {
	orders, err := s.orders.GetApprovedOrders(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return s.orderResponses(ctx, orders)
}

// GetPendingOrders lists orders awaiting approval.
func (s *OrderService) GetPendingOrders(ctx context.Context, offset, limit int) ([]*OrderResponse, error) {
	orders, err := s.orders.GetPendingOrders(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return s.orderResponses(ctx, orders)
}

// GetOrdersByCompany lists a company's orders.
func (s *OrderService) GetOrdersByCompany(ctx context.Context, companyID string, offset, limit int) ([]*OrderResponse, error) {
	orders, err := s.orders.GetByCompanyID(ctx, companyID, offset, limit)
	if err != nil {
		return nil, err
	}
	return s.orderResponses(ctx, orders)
}

// GetOrdersByClientUser lists every order across the companies of the
// user's client profile.
func (s *OrderService) GetOrdersByClientUser(ctx context.Context, userID string, offset, limit int) ([]*OrderResponse, error) {
	client, err := s.clients.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return []*OrderResponse{}, nil
	}

	companies, err := s.companies.GetByClientID(ctx, client.ClientID)
	if err != nil {
		return nil, err
	}

	var responses []*OrderResponse
	for _, company := range companies {
		orders, err := s.orders.GetByCompanyID(ctx, company.CompanyID, offset, limit)
		if err != nil {
			return nil, err
		}
		companyResponses, err := s.orderResponses(ctx, orders)
		if err != nil {
			return nil, err
		}
		responses = append(responses, companyResponses...)
	}
	if responses == nil {
		responses = []*OrderResponse{}
	}
	return responses, nil
}

// UpdateOrder merges fields into the order. Editing the slot list never
// mints a new vacancy id for a position that already had one: slot N keeps
// its identity even when its contents change.
func (s *OrderService) UpdateOrder(ctx context.Context, orderID string, req UpdateOrderRequest) (*OrderResponse, error) {
	fields := store.Document{}
	if req.OrderTitle != nil {
		fields["order_title"] = *req.OrderTitle
	}
	if req.OrderDescription != nil {
		fields["order_description"] = *req.OrderDescription
	}
	if req.Requirements != nil {
		fields["requirements"] = *req.Requirements
	}
	if req.ChatLink != nil {
		fields["chat_link"] = *req.ChatLink
	}

	if req.Specializations != nil {
		existing, err := s.orders.GetByID(ctx, orderID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.NotFoundError{Message: "Order not found"}
		}
		if err != nil {
			return nil, err
		}
		fields["order_specializations"] = buildSpecializations(req.Specializations, existing.Specializations)
	}

	order, err := s.orders.Update(ctx, orderID, fields)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.NotFoundError{Message: "Order not found"}
	}
	if err != nil {
		return nil, err
	}
	return s.orderResponse(ctx, order)
}

// ApproveOrder merges any final edits and moves the order to approved.
func (s *OrderService) ApproveOrder(ctx context.Context, orderID string, req UpdateOrderRequest) (*OrderResponse, error) {
	if _, err := s.UpdateOrder(ctx, orderID, req); err != nil {
		return nil, err
	}
	order, err := s.orders.UpdateStatus(ctx, orderID, models.OrderApproved, "")
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.NotFoundError{Message: "Order not found"}
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("order approved", "order_id", orderID)
	return s.orderResponse(ctx, order)
}

// UpdateOrderStatus sets approval and/or completion status.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID, orderStatus, completeStatus string) (*OrderResponse, error) {
	switch orderStatus {
	case "", models.OrderPending, models.OrderApproved:
	default:
		return nil, &domain.ValidationError{Message: "invalid order status"}
	}
	switch completeStatus {
	case "", models.CompletePending, models.CompleteInProcess, models.CompleteCompleted:
	default:
		return nil, &domain.ValidationError{Message: "invalid order complete status"}
	}

	order, err := s.orders.UpdateStatus(ctx, orderID, orderStatus, completeStatus)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.NotFoundError{Message: "Order not found"}
	}
	if err != nil {
		return nil, err
	}
	return s.orderResponse(ctx, order)
}

func (s *OrderService) ensureUserProfile(ctx context.Context, userID, name, surname string) error {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.NotFoundError{Message: "User not found"}
	}
	if err != nil {
		return err
	}

	fields := store.Document{}
	if name != "" && name != user.Name {
		fields["name"] = name
	}
	if surname != "" && surname != user.Surname {
		fields["surname"] = surname
	}
	if len(fields) > 0 {
		if _, err := s.users.Update(ctx, userID, fields); err != nil {
			return err
		}
	}
	return nil
}

func (s *OrderService) ensureClientProfile(ctx context.Context, userID string) (*models.Client, error) {
	client, err := s.clients.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if client != nil {
		return client, nil
	}

	client, err = s.clients.Create(ctx, store.Document{
		"user_id":     userID,
		"company_ids": []string{},
	}, "")
	if err != nil {
		return nil, err
	}
	if _, err := s.users.AddRole(ctx, userID, models.RoleClient); err != nil {
		return nil, err
	}
	return client, nil
}

// getOrCreateCompany resolves the company by normalized name, adopting the
// client as an owner of an existing match, or creates a fresh one.
func (s *OrderService) getOrCreateCompany(ctx context.Context, clientID, companyName, position string) (*models.Company, error) {
	normalized := models.NormalizeCompanyName(companyName)
	if normalized != "" {
		existing, err := s.companies.GetByNormalizedName(ctx, normalized)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if _, err := s.companies.AddOwner(ctx, existing.CompanyID, clientID); err != nil {
				return nil, err
			}
			if _, err := s.clients.AddCompany(ctx, clientID, existing.CompanyID); err != nil {
				return nil, err
			}
			return s.companies.GetByID(ctx, existing.CompanyID)
		}
	}

	payload := store.Document{
		"client_id":      clientID,
		"company_orders": []string{},
		"owner_ids":      []string{clientID},
	}
	if companyName != "" {
		payload["company_name"] = companyName
	}
	if position != "" {
		payload["client_position"] = position
	}

	company, err := s.companies.Create(ctx, payload, "")
	if err != nil {
		return nil, err
	}
	if _, err := s.clients.AddCompany(ctx, clientID, company.CompanyID); err != nil {
		return nil, err
	}
	return company, nil
}

// buildSpecializations converts submitted slots to their document form.
// Identity rules: a slot at index N inherits the existing slot N's vacancy
// id; an explicit id in the input wins only when position N had none; new
// positions get a fresh id. Occupancy fields carry over from the existing
// slot at the same position.
func buildSpecializations(inputs []SpecializationInput, existing []models.Specialization) []any {
	out := make([]any, len(inputs))
	for i, input := range inputs {
		vacancyID := input.VacancyID
		isOccupied := false
		occupiedBy := ""

		if i < len(existing) {
			if existing[i].VacancyID != "" {
				vacancyID = existing[i].VacancyID
			}
			isOccupied = existing[i].IsOccupied
			occupiedBy = existing[i].OccupiedBy
		}
		if vacancyID == "" {
			vacancyID = uuid.NewString()
		}

		doc := map[string]any{
			"vacancy_id":     vacancyID,
			"specialization": input.Specialization,
			"is_occupied":    isOccupied,
		}
		if input.SkillLevel != "" {
			doc["skill_level"] = input.SkillLevel
		}
		if input.Requirements != "" {
			doc["requirements"] = input.Requirements
		}
		if occupiedBy != "" {
			doc["occupied_by_freelancer_id"] = occupiedBy
		}
		out[i] = doc
	}
	return out
}

func (s *OrderService) orderResponse(ctx context.Context, order *models.Order) (*OrderResponse, error) {
	colleagues, err := s.applications.GetAcceptedFreelancersByOrder(ctx, order.OrderID)
	if err != nil {
		return nil, err
	}
	return &OrderResponse{
		OrderID:             order.OrderID,
		CompanyID:           order.CompanyID,
		OrderTitle:          order.OrderTitle,
		OrderDescription:    order.OrderDescription,
		OrderStatus:         order.OrderStatus,
		OrderCompleteStatus: order.OrderCompleteStatus,
		Requirements:        order.Requirements,
		ChatLink:            order.ChatLink,
		Specializations:     order.Specializations,
		Colleagues:          colleagues,
		CreatedAt:           order.CreatedAt,
		UpdatedAt:           order.UpdatedAt,
	}, nil
}

func (s *OrderService) orderResponses(ctx context.Context, orders []*models.Order) ([]*OrderResponse, error) {
	responses := make([]*OrderResponse, 0, len(orders))
	for _, order := range orders {
		resp, err := s.orderResponse(ctx, order)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}
