package store

import (
	"context"
	"reflect"
	"sort"
	"sync"
)

// MemoryStore is the in-process backend: a single mutex guarding nested
// maps. Every operation is a critical section, which makes read-modify-write
// sequences atomic within this backend. Documents are defensively copied on
// the way in and out.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]map[string]Document
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Document),
	}
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, nil
	}
	return copyDocument(doc), nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, doc Document) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]Document)
		s.collections[collection] = docs
	}
	docs[id] = copyDocument(doc)
	return copyDocument(docs[id]), nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields Document) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, nil
	}
	for k, v := range fields {
		doc[k] = copyValue(v)
	}
	return copyDocument(doc), nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if docs, ok := s.collections[collection]; ok {
		delete(docs, id)
	}
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, collection string, opts QueryOptions) ([]Document, error) {
	if err := validateFilters(opts.Filters); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []Document
	for _, doc := range s.collections[collection] {
		ok, err := matches(doc, opts.Filters)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, doc)
		}
	}

	if opts.OrderBy != nil {
		field := opts.OrderBy.Field
		desc := opts.OrderBy.Direction == Descending
		sort.SliceStable(matched, func(i, j int) bool {
			c := compareValues(matched[i][field], matched[j][field])
			if desc {
				return c > 0
			}
			return c < 0
		})
	}

	matched = paginate(matched, opts.Offset, opts.Limit)

	out := make([]Document, len(matched))
	for i, doc := range matched {
		out[i] = copyDocument(doc)
	}
	return out, nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collections = make(map[string]map[string]Document)
	return nil
}

func (s *MemoryStore) Healthcheck(ctx context.Context) error {
	return nil
}

// matches evaluates the filter clauses as a logical AND.
func matches(doc Document, filters []Filter) (bool, error) {
	for _, f := range filters {
		current := doc[f.Field]
		switch f.Op {
		case OpEqual:
			if !equalValues(current, f.Value) {
				return false, nil
			}
		case OpIn:
			values := reflect.ValueOf(f.Value)
			found := false
			for i := 0; i < values.Len(); i++ {
				if equalValues(current, values.Index(i).Interface()) {
					found = true
					break
				}
			}
			if !found {
				return false, nil
			}
		}
	}
	return true, nil
}

// paginate applies offset then limit, after filtering and ordering.
func paginate(docs []Document, offset, limit int) []Document {
	if offset > 0 {
		if offset >= len(docs) {
			return nil
		}
		docs = docs[offset:]
	}
	if limit > 0 && limit < len(docs) {
		docs = docs[:limit]
	}
	return docs
}

// equalValues compares two JSON-compatible values, normalizing numeric
// types so that an int written by Go code matches a float64 read back from
// a JSON round trip.
func equalValues(a, b any) bool {
	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		return bok && af == bf
	}
	return reflect.DeepEqual(a, b)
}

// compareValues imposes the natural ordering of the field's value. Callers
// only ever order by a timestamp or a single scalar, so mixed-type
// collections are not supported: values of different kinds compare by
// stringified form as a last resort.
func compareValues(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}

	if as, aok := a.(string); aok {
		if bs, bok := b.(string); bok {
			switch {
			case as < bs:
				return -1
			case as > bs:
				return 1
			default:
				return 0
			}
		}
	}

	if ab, aok := a.(bool); aok {
		if bb, bok := b.(bool); bok {
			switch {
			case ab == bb:
				return 0
			case bb:
				return -1
			default:
				return 1
			}
		}
	}

	as := reflect.ValueOf(a).String()
	bs := reflect.ValueOf(b).String()
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
