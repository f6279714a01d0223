package repository

import (
	"context"
	"log/slog"

	"workmarket/internal/domain"
	"workmarket/internal/models"
	"workmarket/internal/store"
)

// CompanyRepository wraps the companies collection and enforces
// normalized-name uniqueness.
type CompanyRepository struct {
	*Repository[*models.Company]
}

func NewCompanyRepository(st store.Store, logger *slog.Logger) *CompanyRepository {
	return &CompanyRepository{
		Repository: New(st, CollectionCompanies, "company_id", models.ParseCompany, logger),
	}
}

// Create persists a company after checking that no other company holds the
// same normalized name. The primary client is always among the owners.
func (r *CompanyRepository) Create(ctx context.Context, payload store.Document, id string) (*models.Company, error) {
	doc := copyPayload(payload)

	if name, _ := doc["company_name"].(string); name != "" {
		normalized := models.NormalizeCompanyName(name)
		existing, err := r.GetByNormalizedName(ctx, normalized)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, &domain.ConflictError{Message: "Company with this name already exists"}
		}
		doc["normalized_company_name"] = normalized
	}

	doc["owner_ids"] = mergeOwnerIDs(doc)
	return r.Repository.Create(ctx, doc, id)
}

// Update merges fields, re-validating the normalized name when it changes.
func (r *CompanyRepository) Update(ctx context.Context, id string, fields store.Document) (*models.Company, error) {
	doc := copyPayload(fields)

	if name, ok := doc["company_name"].(string); ok && name != "" {
		normalized := models.NormalizeCompanyName(name)
		existing, err := r.GetByNormalizedName(ctx, normalized)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.CompanyID != id {
			return nil, &domain.ConflictError{Message: "Company with this name already exists"}
		}
		doc["normalized_company_name"] = normalized
	}

	return r.Repository.Update(ctx, id, doc)
}

// GetByNormalizedName finds a company by its uniqueness key, or nil. Legacy
// records written before the normalized field existed are matched by
// normalizing their display name.
func (r *CompanyRepository) GetByNormalizedName(ctx context.Context, normalized string) (*models.Company, error) {
	companies, err := r.Query(ctx, store.QueryOptions{
		Filters: []store.Filter{{Field: "normalized_company_name", Op: store.OpEqual, Value: normalized}},
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(companies) > 0 {
		return companies[0], nil
	}

	all, err := r.Query(ctx, store.QueryOptions{})
	if err != nil {
		return nil, err
	}
	for _, company := range all {
		if models.NormalizeCompanyName(company.CompanyName) == normalized {
			return company, nil
		}
	}
	return nil, nil
}

// GetByClientID lists companies owned by a client.
func (r *CompanyRepository) GetByClientID(ctx context.Context, clientID string) ([]*models.Company, error) {
	return r.Query(ctx, store.QueryOptions{
		Filters: []store.Filter{{Field: "client_id", Op: store.OpEqual, Value: clientID}},
	})
}

// AddOrder links an order to the company.
func (r *CompanyRepository) AddOrder(ctx context.Context, companyID, orderID string) (*models.Company, error) {
	company, err := r.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	for _, id := range company.CompanyOrders {
		if id == orderID {
			return company, nil
		}
	}
	orders := append(append([]string{}, company.CompanyOrders...), orderID)
	return r.Repository.Update(ctx, companyID, store.Document{"company_orders": orders})
}

// AddOwner adds a client to the owner list, deduplicating.
func (r *CompanyRepository) AddOwner(ctx context.Context, companyID, clientID string) (*models.Company, error) {
	company, err := r.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	for _, id := range company.OwnerIDs {
		if id == clientID {
			return company, nil
		}
	}
	owners := append(append([]string{}, company.OwnerIDs...), clientID)
	return r.Repository.Update(ctx, companyID, store.Document{"owner_ids": owners})
}

// mergeOwnerIDs normalizes the owner list from a raw payload: drops empty
// entries, deduplicates, and guarantees the primary client is present.
func mergeOwnerIDs(doc store.Document) []string {
	var owners []string
	seen := make(map[string]bool)

	appendOwner := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			owners = append(owners, id)
		}
	}

	switch raw := doc["owner_ids"].(type) {
	case []string:
		for _, id := range raw {
			appendOwner(id)
		}
	case []any:
		for _, v := range raw {
			if id, ok := v.(string); ok {
				appendOwner(id)
			}
		}
	}

	if clientID, _ := doc["client_id"].(string); clientID != "" {
		appendOwner(clientID)
	}
	if owners == nil {
		owners = []string{}
	}
	return owners
}
