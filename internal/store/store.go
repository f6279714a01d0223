package store

import (
	"context"
	"fmt"
	"reflect"

	"workmarket/internal/domain"
)

// Document is a schemaless record: field names mapped to JSON-compatible
// values. Documents are identified by a string id unique per collection.
type Document map[string]any

// Filter operators supported by every backend.
const (
	OpEqual = "=="
	OpIn    = "in"
)

// Sort directions.
const (
	Ascending  = "asc"
	Descending = "desc"
)

// Filter is a single (field, operator, value) clause. Multiple filters
// combine as a logical AND.
type Filter struct {
	Field string
	Op    string
	Value any
}

// Sort orders results by a single field.
type Sort struct {
	Field     string
	Direction string
}

// QueryOptions describes a query uniformly across backends. Offset and
// Limit apply after filtering and ordering.
type QueryOptions struct {
	Filters []Filter
	Limit   int
	Offset  int
	OrderBy *Sort
}

// Store is the collection/document contract. Every backend must produce
// identical results for identical filter/order/pagination input, and must
// treat a collection that does not exist yet as empty.
type Store interface {
	// Get returns the document or nil if absent.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Set creates or replaces the document and returns the stored copy.
	Set(ctx context.Context, collection, id string, doc Document) (Document, error)

	// Update merges fields into an existing document and returns the
	// result, or nil if the document does not exist. Update never creates.
	Update(ctx context.Context, collection, id string, fields Document) (Document, error)

	// Delete removes the document. Deleting an absent document is not an
	// error.
	Delete(ctx context.Context, collection, id string) error

	// Query returns documents matching the options.
	Query(ctx context.Context, collection string, opts QueryOptions) ([]Document, error)

	// Reset clears every collection. Test/admin hook.
	Reset(ctx context.Context) error

	// Healthcheck verifies the backend is reachable.
	Healthcheck(ctx context.Context) error
}

// validateFilters rejects malformed clauses before they reach a backend.
// The "in" operator requires a slice value.
func validateFilters(filters []Filter) error {
	for _, f := range filters {
		switch f.Op {
		case OpEqual:
		case OpIn:
			kind := reflect.ValueOf(f.Value).Kind()
			if kind != reflect.Slice && kind != reflect.Array {
				return fmt.Errorf("value for 'in' operator on field %q must be a list: %w", f.Field, domain.ErrInvalidQuery)
			}
		default:
			return fmt.Errorf("unsupported filter operator %q: %w", f.Op, domain.ErrInvalidQuery)
		}
	}
	return nil
}

// copyDocument deep-copies a document so callers cannot mutate store
// internals by reference. Slot lists nest maps inside slices, so the copy
// must recurse.
func copyDocument(doc Document) Document {
	if doc == nil {
		return nil
	}
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = copyValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
