package store

import (
	"context"
	"errors"
	"testing"

	"workmarket/internal/domain"
)

func seedOrders(t *testing.T, s *MemoryStore) {
	t.Helper()
	ctx := context.Background()
	docs := []Document{
		{"order_id": "o1", "rank": 1, "city": "almaty", "created_at": "2026-01-01T00:00:00Z"},
		{"order_id": "o2", "rank": 2, "city": "astana", "created_at": "2026-01-02T00:00:00Z"},
		{"order_id": "o3", "rank": 3, "city": "almaty", "created_at": "2026-01-03T00:00:00Z"},
		{"order_id": "o4", "rank": 4, "city": "astana", "created_at": "2026-01-04T00:00:00Z"},
	}
	for _, doc := range docs {
		if _, err := s.Set(ctx, "orders", doc["order_id"].(string), doc); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
}

func ids(docs []Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i], _ = d["order_id"].(string)
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMemoryStoreGetAbsent(t *testing.T) {
	s := NewMemoryStore()
	doc, err := s.Get(context.Background(), "orders", "missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc != nil {
		t.Errorf("expected nil for absent document, got %v", doc)
	}
}

func TestMemoryStoreUpdateNeverCreates(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	updated, err := s.Update(ctx, "orders", "missing", Document{"rank": 5})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated != nil {
		t.Errorf("expected nil for absent document, got %v", updated)
	}

	doc, err := s.Get(ctx, "orders", "missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc != nil {
		t.Errorf("update created a document: %v", doc)
	}
}

func TestMemoryStoreUpdateMerges(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.Set(ctx, "orders", "o1", Document{"order_id": "o1", "rank": 1, "city": "almaty"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	updated, err := s.Update(ctx, "orders", "o1", Document{"rank": 9})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated["rank"] != 9 {
		t.Errorf("rank = %v, want 9", updated["rank"])
	}
	if updated["city"] != "almaty" {
		t.Errorf("city = %v, untouched fields must survive a merge", updated["city"])
	}
}

func TestMemoryStoreDeleteIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Delete(ctx, "orders", "missing"); err != nil {
		t.Fatalf("Delete absent: %v", err)
	}
	if _, err := s.Set(ctx, "orders", "o1", Document{"order_id": "o1"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Delete(ctx, "orders", "o1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "orders", "o1"); err != nil {
		t.Fatalf("Delete twice: %v", err)
	}
}

func TestMemoryStoreCopyIsolation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	original := Document{
		"order_id": "o1",
		"order_specializations": []any{
			map[string]any{"vacancy_id": "v1", "is_occupied": false},
		},
	}
	if _, err := s.Set(ctx, "orders", "o1", original); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Mutating the caller's document after the write must not leak in.
	original["order_specializations"].([]any)[0].(map[string]any)["is_occupied"] = true

	got, err := s.Get(ctx, "orders", "o1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	slot := got["order_specializations"].([]any)[0].(map[string]any)
	if slot["is_occupied"] != false {
		t.Error("store shares memory with caller's document")
	}

	// Mutating a read result must not leak back either.
	slot["is_occupied"] = true
	again, err := s.Get(ctx, "orders", "o1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	slot = again["order_specializations"].([]any)[0].(map[string]any)
	if slot["is_occupied"] != false {
		t.Error("store shares memory with read results")
	}
}

func TestMemoryStoreQueryFilters(t *testing.T) {
	s := NewMemoryStore()
	seedOrders(t, s)
	ctx := context.Background()

	tests := []struct {
		name string
		opts QueryOptions
		want []string
	}{
		{
			name: "equality",
			opts: QueryOptions{
				Filters: []Filter{{Field: "city", Op: OpEqual, Value: "almaty"}},
				OrderBy: &Sort{Field: "rank", Direction: Ascending},
			},
			want: []string{"o1", "o3"},
		},
		{
			name: "in with descending order",
			opts: QueryOptions{
				Filters: []Filter{{Field: "rank", Op: OpIn, Value: []any{2, 4}}},
				OrderBy: &Sort{Field: "rank", Direction: Descending},
			},
			want: []string{"o4", "o2"},
		},
		{
			name: "filters combine as AND",
			opts: QueryOptions{
				Filters: []Filter{
					{Field: "city", Op: OpEqual, Value: "astana"},
					{Field: "rank", Op: OpIn, Value: []any{1, 2}},
				},
			},
			want: []string{"o2"},
		},
		{
			name: "no match",
			opts: QueryOptions{
				Filters: []Filter{{Field: "city", Op: OpEqual, Value: "karaganda"}},
			},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := s.Query(ctx, "orders", tt.opts)
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			if !equalIDs(ids(docs), tt.want) {
				t.Errorf("got %v, want %v", ids(docs), tt.want)
			}
		})
	}
}

func TestMemoryStoreQueryNumericNormalization(t *testing.T) {
	// A JSON round trip turns ints into float64; filters must still match.
	s := NewMemoryStore()
	ctx := context.Background()
	if _, err := s.Set(ctx, "orders", "o1", Document{"order_id": "o1", "rank": float64(2)}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	docs, err := s.Query(ctx, "orders", QueryOptions{
		Filters: []Filter{{Field: "rank", Op: OpEqual, Value: 2}},
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("int filter did not match float64 field, got %d docs", len(docs))
	}
}

func TestMemoryStoreQueryInvalidFilters(t *testing.T) {
	s := NewMemoryStore()
	seedOrders(t, s)
	ctx := context.Background()

	tests := []struct {
		name    string
		filters []Filter
	}{
		{
			name:    "in with scalar value",
			filters: []Filter{{Field: "rank", Op: OpIn, Value: 2}},
		},
		{
			name:    "unknown operator",
			filters: []Filter{{Field: "rank", Op: ">", Value: 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Query(ctx, "orders", QueryOptions{Filters: tt.filters})
			if !errors.Is(err, domain.ErrInvalidQuery) {
				t.Errorf("err = %v, want ErrInvalidQuery", err)
			}
		})
	}
}

func TestMemoryStoreQueryPagination(t *testing.T) {
	s := NewMemoryStore()
	seedOrders(t, s)
	ctx := context.Background()

	tests := []struct {
		name   string
		offset int
		limit  int
		want   []string
	}{
		{name: "offset then limit", offset: 1, limit: 2, want: []string{"o2", "o3"}},
		{name: "limit only", offset: 0, limit: 3, want: []string{"o1", "o2", "o3"}},
		{name: "offset beyond end", offset: 10, limit: 2, want: []string{}},
		{name: "zero limit means unbounded", offset: 2, limit: 0, want: []string{"o3", "o4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := s.Query(ctx, "orders", QueryOptions{
				OrderBy: &Sort{Field: "created_at", Direction: Ascending},
				Offset:  tt.offset,
				Limit:   tt.limit,
			})
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			if !equalIDs(ids(docs), tt.want) {
				t.Errorf("got %v, want %v", ids(docs), tt.want)
			}
		})
	}
}

func TestMemoryStoreQueryMissingCollection(t *testing.T) {
	s := NewMemoryStore()
	docs, err := s.Query(context.Background(), "nothing_here", QueryOptions{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected empty result, got %d docs", len(docs))
	}
}

func TestMemoryStoreReset(t *testing.T) {
	s := NewMemoryStore()
	seedOrders(t, s)
	ctx := context.Background()

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	docs, err := s.Query(ctx, "orders", QueryOptions{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected empty store after reset, got %d docs", len(docs))
	}
}
