package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"workmarket/internal/domain"
	"workmarket/internal/store"
)

// Factory materializes a typed entity from a raw document. A factory error
// marks the document as malformed; collection-level reads skip such
// documents instead of failing the whole page.
type Factory[T any] func(store.Document) (T, error)

// Repository is a typed CRUD veneer over one collection. It assigns the
// identifying field, stamps created_at/updated_at, and converts raw
// documents to typed entities.
type Repository[T any] struct {
	store      store.Store
	collection string
	idField    string
	factory    Factory[T]
	logger     *slog.Logger
}

// New creates a repository for one collection and entity factory.
func New[T any](st store.Store, collection, idField string, factory Factory[T], logger *slog.Logger) *Repository[T] {
	return &Repository[T]{
		store:      st,
		collection: collection,
		idField:    idField,
		factory:    factory,
		logger:     logger,
	}
}

// Collection returns the backing collection name.
func (r *Repository[T]) Collection() string { return r.collection }

// Create persists a new entity. A fresh id is minted when none is given.
// Both timestamps are stamped here, never by callers.
func (r *Repository[T]) Create(ctx context.Context, payload store.Document, id string) (T, error) {
	var zero T
	if id == "" {
		id = uuid.NewString()
	}
	doc := copyPayload(payload)
	doc[r.idField] = id
	stampTimestamps(doc, true)

	if _, err := r.store.Set(ctx, r.collection, id, doc); err != nil {
		return zero, fmt.Errorf("create %s: %w", r.collection, err)
	}
	entity, err := r.factory(doc)
	if err != nil {
		return zero, fmt.Errorf("create %s: %w", r.collection, err)
	}
	return entity, nil
}

// Upsert creates or replaces the document under a known id, stamping only
// updated_at unless created_at is absent.
func (r *Repository[T]) Upsert(ctx context.Context, payload store.Document, id string) (T, error) {
	var zero T
	doc := copyPayload(payload)
	doc[r.idField] = id
	stampTimestamps(doc, false)

	if _, err := r.store.Set(ctx, r.collection, id, doc); err != nil {
		return zero, fmt.Errorf("upsert %s: %w", r.collection, err)
	}
	entity, err := r.factory(doc)
	if err != nil {
		return zero, fmt.Errorf("upsert %s: %w", r.collection, err)
	}
	return entity, nil
}

// GetByID returns the entity or an error wrapping domain.ErrNotFound when
// absent. A stored document that fails to deserialize is treated as not
// found for this read and logged; a hand-edited or legacy row must never
// surface a decode error to the caller.
func (r *Repository[T]) GetByID(ctx context.Context, id string) (T, error) {
	var zero T
	doc, err := r.store.Get(ctx, r.collection, id)
	if err != nil {
		return zero, fmt.Errorf("get %s/%s: %w", r.collection, id, err)
	}
	if doc == nil {
		return zero, fmt.Errorf("%s %s: %w", r.collection, id, domain.ErrNotFound)
	}
	if _, ok := doc[r.idField]; !ok {
		doc[r.idField] = id
	}
	entity, err := r.factory(doc)
	if err != nil {
		r.logger.Warn("skipping malformed document",
			"collection", r.collection,
			"id", id,
			"error", err,
		)
		return zero, fmt.Errorf("%s %s: %w", r.collection, id, domain.ErrNotFound)
	}
	return entity, nil
}

// Query returns all matching entities. Malformed documents are excluded
// from the result set, logged, and never fail the page.
func (r *Repository[T]) Query(ctx context.Context, opts store.QueryOptions) ([]T, error) {
	docs, err := r.store.Query(ctx, r.collection, opts)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.collection, err)
	}

	results := make([]T, 0, len(docs))
	for _, doc := range docs {
		if _, ok := doc[r.idField]; !ok {
			continue
		}
		entity, err := r.factory(doc)
		if err != nil {
			r.logger.Warn("skipping malformed document",
				"collection", r.collection,
				"id", doc[r.idField],
				"error", err,
			)
			continue
		}
		results = append(results, entity)
	}
	return results, nil
}

// Update merges fields into the document, restamps updated_at and returns
// the updated entity, or an error wrapping domain.ErrNotFound when the
// document does not exist. Update never creates.
func (r *Repository[T]) Update(ctx context.Context, id string, fields store.Document) (T, error) {
	var zero T
	doc := copyPayload(fields)
	stampTimestamps(doc, false)

	updated, err := r.store.Update(ctx, r.collection, id, doc)
	if err != nil {
		return zero, fmt.Errorf("update %s/%s: %w", r.collection, id, err)
	}
	if updated == nil {
		return zero, fmt.Errorf("%s %s: %w", r.collection, id, domain.ErrNotFound)
	}
	if _, ok := updated[r.idField]; !ok {
		updated[r.idField] = id
	}
	entity, err := r.factory(updated)
	if err != nil {
		return zero, fmt.Errorf("update %s/%s: %w", r.collection, id, err)
	}
	return entity, nil
}

// Delete removes the document. Absent documents are not an error.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, r.collection, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", r.collection, id, err)
	}
	return nil
}

func copyPayload(payload store.Document) store.Document {
	doc := make(store.Document, len(payload)+3)
	for k, v := range payload {
		doc[k] = v
	}
	return doc
}

// timestampLayout is RFC 3339 with fixed-width nanoseconds. Timestamps
// are compared as strings when ordering queries, so the width must not
// vary with trailing zeros.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// stampTimestamps writes RFC 3339 timestamps. created_at is only set on
// create and only when the payload did not carry one.
func stampTimestamps(doc store.Document, created bool) {
	now := time.Now().UTC().Format(timestampLayout)
	if created {
		if _, ok := doc["created_at"]; !ok {
			doc["created_at"] = now
		}
	}
	doc["updated_at"] = now
}
