package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps every collection in a single jsonb-backed table, so
// the store stays schemaless while riding on a relational backend. Filters
// and ordering are translated to jsonb operators; offset/limit pagination
// is native.
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresStore wraps an existing connection pool. Call EnsureSchema
// before first use.
func NewPostgresStore(pool *pgxpool.Pool, table string) *PostgresStore {
	if table == "" {
		table = "documents"
	}
	return &PostgresStore{pool: pool, table: table}
}

// EnsureSchema creates the backing table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			collection TEXT NOT NULL,
			doc_id     TEXT NOT NULL,
			data       JSONB NOT NULL,
			PRIMARY KEY (collection, doc_id)
		)
	`, s.table)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	query := fmt.Sprintf(`
		SELECT data FROM %s
		WHERE collection = $1 AND doc_id = $2
	`, s.table)

	var raw []byte
	err := s.pool.QueryRow(ctx, query, collection, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s/%s: %w", collection, id, err)
	}
	return decodeDocument(raw, collection)
}

func (s *PostgresStore) Set(ctx context.Context, collection, id string, doc Document) (Document, error) {
	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document %s/%s: %w", collection, id, err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (collection, doc_id, data)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, doc_id) DO UPDATE SET data = EXCLUDED.data
	`, s.table)

	if _, err := s.pool.Exec(ctx, query, collection, id, string(encoded)); err != nil {
		return nil, fmt.Errorf("set document %s/%s: %w", collection, id, err)
	}
	return copyDocument(doc), nil
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields Document) (Document, error) {
	encoded, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode document %s/%s: %w", collection, id, err)
	}

	query := fmt.Sprintf(`
		UPDATE %s SET data = data || $3::jsonb
		WHERE collection = $1 AND doc_id = $2
		RETURNING data
	`, s.table)

	var raw []byte
	err = s.pool.QueryRow(ctx, query, collection, id, string(encoded)).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update document %s/%s: %w", collection, id, err)
	}
	return decodeDocument(raw, collection)
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE collection = $1 AND doc_id = $2
	`, s.table)

	if _, err := s.pool.Exec(ctx, query, collection, id); err != nil {
		return fmt.Errorf("delete document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *PostgresStore) Query(ctx context.Context, collection string, opts QueryOptions) ([]Document, error) {
	if err := validateFilters(opts.Filters); err != nil {
		return nil, err
	}

	var sb strings.Builder
	args := []any{collection}
	fmt.Fprintf(&sb, "SELECT data FROM %s WHERE collection = $1", s.table)

	for _, f := range opts.Filters {
		switch f.Op {
		case OpEqual:
			encoded, err := json.Marshal(f.Value)
			if err != nil {
				return nil, fmt.Errorf("encode filter value for %s: %w", f.Field, err)
			}
			args = append(args, f.Field, string(encoded))
			fmt.Fprintf(&sb, " AND data -> $%d = $%d::jsonb", len(args)-1, len(args))
		case OpIn:
			values := reflect.ValueOf(f.Value)
			list := make([]any, values.Len())
			for i := 0; i < values.Len(); i++ {
				list[i] = values.Index(i).Interface()
			}
			encoded, err := json.Marshal(list)
			if err != nil {
				return nil, fmt.Errorf("encode filter values for %s: %w", f.Field, err)
			}
			args = append(args, f.Field, string(encoded))
			fmt.Fprintf(&sb, " AND data -> $%d IN (SELECT jsonb_array_elements($%d::jsonb))", len(args)-1, len(args))
		}
	}

	if opts.OrderBy != nil {
		// Documents missing the sort field sort before documents that have
		// it, under either direction, matching the other backends.
		direction := "ASC NULLS FIRST"
		if opts.OrderBy.Direction == Descending {
			direction = "DESC NULLS LAST"
		}
		args = append(args, opts.OrderBy.Field)
		fmt.Fprintf(&sb, " ORDER BY data -> $%d %s", len(args), direction)
	}
	if opts.Offset > 0 {
		fmt.Fprintf(&sb, " OFFSET %d", opts.Offset)
	}
	if opts.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", opts.Limit)
	}

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query collection %s: %w", collection, err)
	}
	defer rows.Close()

	var results []Document
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan document in %s: %w", collection, err)
		}
		doc, err := decodeDocument(raw, collection)
		if err != nil {
			return nil, err
		}
		results = append(results, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collection %s: %w", collection, err)
	}
	return results, nil
}

func (s *PostgresStore) Reset(ctx context.Context) error {
	query := fmt.Sprintf(`DELETE FROM %s`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	return nil
}

func (s *PostgresStore) Healthcheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func decodeDocument(raw []byte, collection string) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document in %s: %w", collection, err)
	}
	return doc, nil
}
