package seed

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"workmarket/internal/models"
	"workmarket/internal/repository"
	"workmarket/internal/store"
)

// Fixtures is the YAML shape of a seed file. Every section is optional;
// ids are required so repeated runs upsert instead of duplicating.
type Fixtures struct {
	Users        []UserFixture        `yaml:"users"`
	Clients      []ClientFixture      `yaml:"clients"`
	Companies    []CompanyFixture     `yaml:"companies"`
	Freelancers  []FreelancerFixture  `yaml:"freelancers"`
	Orders       []OrderFixture       `yaml:"orders"`
	Applications []ApplicationFixture `yaml:"applications"`
}

type UserFixture struct {
	UserID      string   `yaml:"user_id"`
	Name        string   `yaml:"name"`
	Surname     string   `yaml:"surname"`
	PhoneNumber string   `yaml:"phone_number"`
	Roles       []string `yaml:"roles"`
}

type ClientFixture struct {
	ClientID   string   `yaml:"client_id"`
	UserID     string   `yaml:"user_id"`
	CompanyIDs []string `yaml:"company_ids"`
}

type CompanyFixture struct {
	CompanyID   string   `yaml:"company_id"`
	ClientID    string   `yaml:"client_id"`
	CompanyName string   `yaml:"company_name"`
	Description string   `yaml:"description"`
	OwnerIDs    []string `yaml:"owner_ids"`
	OrderIDs    []string `yaml:"order_ids"`
}

type FreelancerFixture struct {
	FreelancerID    string               `yaml:"freelancer_id"`
	UserID          string               `yaml:"user_id"`
	IIN             string               `yaml:"iin"`
	City            string               `yaml:"city"`
	Email           string               `yaml:"email"`
	Status          string               `yaml:"status"`
	Specializations []SpecializationSkill `yaml:"specializations_with_levels"`
}

type SpecializationSkill struct {
	Specialization string `yaml:"specialization"`
	SkillLevel     string `yaml:"skill_level"`
}

type OrderFixture struct {
	OrderID             string        `yaml:"order_id"`
	CompanyID           string        `yaml:"company_id"`
	OrderName           string        `yaml:"order_name"`
	OrderDescription    string        `yaml:"order_description"`
	OrderStatus         string        `yaml:"order_status"`
	OrderCompleteStatus string        `yaml:"order_complete_status"`
	Specializations     []SlotFixture `yaml:"specializations"`
}

type SlotFixture struct {
	VacancyID      string `yaml:"vacancy_id"`
	Specialization string `yaml:"specialization"`
	SkillLevel     string `yaml:"skill_level"`
	Requirements   string `yaml:"requirements"`
}

type ApplicationFixture struct {
	ID                  string `yaml:"id"`
	OrderID             string `yaml:"order_id"`
	FreelancerID        string `yaml:"freelancer_id"`
	CompanyID           string `yaml:"company_id"`
	Status              string `yaml:"status"`
	SpecializationIndex *int   `yaml:"specialization_index"`
	SpecializationName  string `yaml:"specialization_name"`
}

// Parse decodes a YAML seed file.
func Parse(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

// Seeder loads fixtures into the document store through the repository
// layer, so seeded documents get the same id and timestamp treatment as
// documents written by the live service.
type Seeder struct {
	users        *repository.UserRepository
	clients      *repository.ClientRepository
	companies    *repository.CompanyRepository
	freelancers  *repository.FreelancerRepository
	orders       *repository.OrderRepository
	applications *repository.ApplicationRepository
	logger       *slog.Logger
}

func NewSeeder(st store.Store, logger *slog.Logger) *Seeder {
	return &Seeder{
		users:        repository.NewUserRepository(st, logger),
		clients:      repository.NewClientRepository(st, logger),
		companies:    repository.NewCompanyRepository(st, logger),
		freelancers:  repository.NewFreelancerRepository(st, logger),
		orders:       repository.NewOrderRepository(st, logger),
		applications: repository.NewApplicationRepository(st, logger),
		logger:       logger,
	}
}

// Apply upserts every fixture. Sections are written in dependency order
// (profiles before orders, orders before applications) so a freshly reset
// store ends up internally consistent.
func (s *Seeder) Apply(ctx context.Context, f *Fixtures) error {
	for _, u := range f.Users {
		if u.UserID == "" {
			return fmt.Errorf("user fixture missing user_id")
		}
		doc := store.Document{
			"name":         u.Name,
			"surname":      u.Surname,
			"phone_number": u.PhoneNumber,
			"roles":        u.Roles,
		}
		if _, err := s.users.Upsert(ctx, doc, u.UserID); err != nil {
			return fmt.Errorf("seed user %s: %w", u.UserID, err)
		}
	}
	s.logger.Info("seeded users", "count", len(f.Users))

	for _, c := range f.Clients {
		if c.ClientID == "" {
			return fmt.Errorf("client fixture missing client_id")
		}
		doc := store.Document{
			"user_id":     c.UserID,
			"company_ids": c.CompanyIDs,
		}
		if _, err := s.clients.Upsert(ctx, doc, c.ClientID); err != nil {
			return fmt.Errorf("seed client %s: %w", c.ClientID, err)
		}
	}
	s.logger.Info("seeded clients", "count", len(f.Clients))

	for _, c := range f.Companies {
		if c.CompanyID == "" {
			return fmt.Errorf("company fixture missing company_id")
		}
		doc := store.Document{
			"client_id":               c.ClientID,
			"company_name":            c.CompanyName,
			"normalized_company_name": models.NormalizeCompanyName(c.CompanyName),
			"company_description":     c.Description,
			"owner_ids":               c.OwnerIDs,
			"company_orders":          c.OrderIDs,
		}
		if _, err := s.companies.Upsert(ctx, doc, c.CompanyID); err != nil {
			return fmt.Errorf("seed company %s: %w", c.CompanyID, err)
		}
	}
	s.logger.Info("seeded companies", "count", len(f.Companies))

	for _, fr := range f.Freelancers {
		if fr.FreelancerID == "" {
			return fmt.Errorf("freelancer fixture missing freelancer_id")
		}
		skills := make([]map[string]any, 0, len(fr.Specializations))
		for _, sk := range fr.Specializations {
			skills = append(skills, map[string]any{
				"specialization": sk.Specialization,
				"skill_level":    sk.SkillLevel,
			})
		}
		status := fr.Status
		if status == "" {
			status = models.FreelancerPending
		}
		doc := store.Document{
			"user_id":                     fr.UserID,
			"iin":                         fr.IIN,
			"city":                        fr.City,
			"email":                       fr.Email,
			"status":                      status,
			"specializations_with_levels": skills,
		}
		if _, err := s.freelancers.Upsert(ctx, doc, fr.FreelancerID); err != nil {
			return fmt.Errorf("seed freelancer %s: %w", fr.FreelancerID, err)
		}
	}
	s.logger.Info("seeded freelancers", "count", len(f.Freelancers))

	for _, o := range f.Orders {
		if o.OrderID == "" {
			return fmt.Errorf("order fixture missing order_id")
		}
		slots := make([]map[string]any, 0, len(o.Specializations))
		for i, sp := range o.Specializations {
			if sp.VacancyID == "" {
				return fmt.Errorf("order %s: specialization %d missing vacancy_id", o.OrderID, i)
			}
			slots = append(slots, map[string]any{
				"vacancy_id":     sp.VacancyID,
				"specialization": sp.Specialization,
				"skill_level":    sp.SkillLevel,
				"requirements":   sp.Requirements,
				"is_occupied":    false,
			})
		}
		status := o.OrderStatus
		if status == "" {
			status = models.OrderPending
		}
		completeStatus := o.OrderCompleteStatus
		if completeStatus == "" {
			completeStatus = models.CompletePending
		}
		doc := store.Document{
			"company_id":            o.CompanyID,
			"order_name":            o.OrderName,
			"order_description":     o.OrderDescription,
			"order_status":          status,
			"order_complete_status": completeStatus,
			"order_specializations": slots,
		}
		if _, err := s.orders.Upsert(ctx, doc, o.OrderID); err != nil {
			return fmt.Errorf("seed order %s: %w", o.OrderID, err)
		}
	}
	s.logger.Info("seeded orders", "count", len(f.Orders))

	for _, a := range f.Applications {
		if a.ID == "" {
			return fmt.Errorf("application fixture missing id")
		}
		status := a.Status
		if status == "" {
			status = models.ApplicationPending
		}
		doc := store.Document{
			"order_id":      a.OrderID,
			"freelancer_id": a.FreelancerID,
			"company_id":    a.CompanyID,
			"status":        status,
		}
		if a.SpecializationIndex != nil {
			doc["specialization_index"] = *a.SpecializationIndex
		}
		if a.SpecializationName != "" {
			doc["specialization_name"] = a.SpecializationName
		}
		if _, err := s.applications.Upsert(ctx, doc, a.ID); err != nil {
			return fmt.Errorf("seed application %s: %w", a.ID, err)
		}
	}
	s.logger.Info("seeded applications", "count", len(f.Applications))

	// Accepted fixture applications must be reflected in slot occupancy,
	// same as an accept through the live service would.
	for _, a := range f.Applications {
		if a.Status != models.ApplicationAccepted || a.SpecializationIndex == nil {
			continue
		}
		order, err := s.orders.GetByID(ctx, a.OrderID)
		if err != nil {
			return fmt.Errorf("seed application %s: order %s: %w", a.ID, a.OrderID, err)
		}
		idx := *a.SpecializationIndex
		if idx < 0 || idx >= len(order.Specializations) {
			return fmt.Errorf("seed application %s: specialization index %d out of range", a.ID, idx)
		}
		slots := append([]models.Specialization{}, order.Specializations...)
		slots[idx].IsOccupied = true
		slots[idx].OccupiedBy = a.FreelancerID
		if _, err := s.orders.SetSpecializations(ctx, a.OrderID, slots); err != nil {
			return fmt.Errorf("seed application %s: mark slot occupied: %w", a.ID, err)
		}
	}

	return nil
}
