package repository

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"workmarket/internal/domain"
	"workmarket/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateMintsID(t *testing.T) {
	st := store.NewMemoryStore()
	repo := NewUserRepository(st, testLogger())
	ctx := context.Background()

	user, err := repo.Create(ctx, store.Document{"name": "Askar", "roles": []string{"freelancer"}}, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.UserID == "" {
		t.Fatal("expected a minted id")
	}

	again, err := repo.GetByID(ctx, user.UserID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if again.Name != "Askar" {
		t.Errorf("Name = %q, want Askar", again.Name)
	}
}

func TestCreateKeepsGivenID(t *testing.T) {
	st := store.NewMemoryStore()
	repo := NewUserRepository(st, testLogger())

	user, err := repo.Create(context.Background(), store.Document{"name": "Dana"}, "user-dana")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.UserID != "user-dana" {
		t.Errorf("UserID = %q, want user-dana", user.UserID)
	}
}

func TestCreateStampsTimestamps(t *testing.T) {
	st := store.NewMemoryStore()
	repo := NewUserRepository(st, testLogger())
	ctx := context.Background()

	before := time.Now().Add(-time.Second)
	user, err := repo.Create(ctx, store.Document{"name": "Ivan"}, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.CreatedAt.Before(before) {
		t.Errorf("CreatedAt = %v, not stamped", user.CreatedAt)
	}
	if user.UpdatedAt.Before(before) {
		t.Errorf("UpdatedAt = %v, not stamped", user.UpdatedAt)
	}
}

func TestCreatePreservesCallerCreatedAt(t *testing.T) {
	st := store.NewMemoryStore()
	repo := NewUserRepository(st, testLogger())

	user, err := repo.Create(context.Background(), store.Document{
		"name":       "Ivan",
		"created_at": "2024-03-01T10:00:00Z",
	}, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	want := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if !user.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", user.CreatedAt, want)
	}
}

func TestTimestampLexicalOrderIsChronological(t *testing.T) {
	// Stored timestamps are ordered as strings by the query layer, so the
	// layout must produce fixed-width output even when nanoseconds end in
	// zeros. RFC3339Nano trims them and breaks this property.
	times := []time.Time{
		time.Date(2024, 3, 1, 10, 0, 0, 500000000, time.UTC),
		time.Date(2024, 3, 1, 10, 0, 0, 520000000, time.UTC),
		time.Date(2024, 3, 1, 10, 0, 1, 0, time.UTC),
		time.Date(2024, 3, 1, 10, 0, 1, 7, time.UTC),
	}
	width := len(times[0].Format(timestampLayout))
	for i := 1; i < len(times); i++ {
		prev := times[i-1].Format(timestampLayout)
		next := times[i].Format(timestampLayout)
		if len(next) != width {
			t.Errorf("timestamp width varies: %q vs %q", prev, next)
		}
		if prev >= next {
			t.Errorf("lexical order broken: %q >= %q", prev, next)
		}
	}
}

func TestGetByIDAbsent(t *testing.T) {
	st := store.NewMemoryStore()
	repo := NewUserRepository(st, testLogger())

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetByIDMalformedDocument(t *testing.T) {
	st := store.NewMemoryStore()
	repo := NewUserRepository(st, testLogger())
	ctx := context.Background()

	// Hand-written document with a field of the wrong type. The read must
	// report not found, never a decode error.
	if _, err := st.Set(ctx, CollectionUsers, "broken", store.Document{
		"user_id": "broken",
		"roles":   "not-a-list",
	}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	_, err := repo.GetByID(ctx, "broken")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestQuerySkipsMalformedDocuments(t *testing.T) {
	st := store.NewMemoryStore()
	repo := NewUserRepository(st, testLogger())
	ctx := context.Background()

	if _, err := repo.Create(ctx, store.Document{"name": "Good", "phone_number": "+7"}, "user-good"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := st.Set(ctx, CollectionUsers, "user-broken", store.Document{
		"user_id":      "user-broken",
		"phone_number": "+7",
		"roles":        42,
	}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	// No id field at all; also skipped.
	if _, err := st.Set(ctx, CollectionUsers, "user-anon", store.Document{
		"phone_number": "+7",
	}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	users, err := repo.Query(ctx, store.QueryOptions{
		Filters: []store.Filter{{Field: "phone_number", Op: store.OpEqual, Value: "+7"}},
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(users) != 1 || users[0].UserID != "user-good" {
		t.Errorf("got %d users, want only user-good", len(users))
	}
}

func TestUpdateAbsent(t *testing.T) {
	st := store.NewMemoryStore()
	repo := NewUserRepository(st, testLogger())

	_, err := repo.Update(context.Background(), "missing", store.Document{"name": "x"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateRestampsUpdatedAt(t *testing.T) {
	st := store.NewMemoryStore()
	repo := NewUserRepository(st, testLogger())
	ctx := context.Background()

	user, err := repo.Create(ctx, store.Document{"name": "Ivan"}, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	updated, err := repo.Update(ctx, user.UserID, store.Document{"name": "Ivan Jr"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.UpdatedAt.After(user.UpdatedAt) {
		t.Errorf("UpdatedAt not advanced: %v -> %v", user.UpdatedAt, updated.UpdatedAt)
	}
	if !updated.CreatedAt.Equal(user.CreatedAt) {
		t.Errorf("CreatedAt changed on update: %v -> %v", user.CreatedAt, updated.CreatedAt)
	}
}

func TestAddRoleDeduplicates(t *testing.T) {
	st := store.NewMemoryStore()
	repo := NewUserRepository(st, testLogger())
	ctx := context.Background()

	user, err := repo.Create(ctx, store.Document{"roles": []string{"client"}}, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	user, err = repo.AddRole(ctx, user.UserID, "freelancer")
	if err != nil {
		t.Fatalf("AddRole: %v", err)
	}
	user, err = repo.AddRole(ctx, user.UserID, "freelancer")
	if err != nil {
		t.Fatalf("AddRole twice: %v", err)
	}
	if len(user.Roles) != 2 {
		t.Errorf("Roles = %v, want [client freelancer]", user.Roles)
	}
}

func TestGetByPhoneNumberAbsent(t *testing.T) {
	st := store.NewMemoryStore()
	repo := NewUserRepository(st, testLogger())

	user, err := repo.GetByPhoneNumber(context.Background(), "+70000000000")
	if err != nil {
		t.Fatalf("GetByPhoneNumber: %v", err)
	}
	if user != nil {
		t.Errorf("expected nil for unknown phone, got %v", user)
	}
}
