package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/example/coursewizard/internal/domain"
	"github.com/example/coursewizard/internal/observability"
	"github.com/example/coursewizard/internal/storage"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewWithMetrics(filepath.Join(t.TempDir(), "wizard.db"), observability.NewMetrics())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return store
}

func createDraft(t *testing.T, store *SQLiteStorage, d *domain.Draft) *domain.Draft {
	t.Helper()
	ctx := context.Background()

	uow, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer uow.Rollback()

	if err := uow.Drafts().Create(ctx, d); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	return d
}

func loadDraft(t *testing.T, store *SQLiteStorage, id int64) (*domain.Draft, error) {
	t.Helper()
	ctx := context.Background()

	uow, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer uow.Rollback()
	return uow.Drafts().Get(ctx, id)
}

func updateDraft(t *testing.T, store *SQLiteStorage, d *domain.Draft) error {
	t.Helper()
	ctx := context.Background()

	uow, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer uow.Rollback()

	if err := uow.Drafts().Update(ctx, d); err != nil {
		return err
	}
	return uow.Commit()
}

func TestDraftCreateAndGet(t *testing.T) {
	store := newTestStorage(t)

	d := domain.NewDraft(7, 42, 1)
	d.Payload["title"] = domain.StringValue("x")
	d.Payload["attachments"] = domain.FilesValue("a", "b")
	createDraft(t, store, d)

	if d.ID == 0 {
		t.Fatal("expected an ID to be assigned")
	}

	got, err := loadDraft(t, store, d.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Owner != 7 || got.Scope != 42 || got.Status != domain.DraftStatusDraft || got.CurrentStep != 1 {
		t.Errorf("unexpected draft: %+v", got)
	}
	if got.Version != 1 {
		t.Errorf("Version = %d, want 1", got.Version)
	}
	if !got.Payload["title"].Equal(domain.StringValue("x")) || !got.Payload["attachments"].Equal(domain.FilesValue("a", "b")) {
		t.Errorf("payload = %v", got.Payload)
	}
	if !got.CreatedAt.Equal(d.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, d.CreatedAt)
	}
}

func TestDraftGetMissing(t *testing.T) {
	store := newTestStorage(t)

	_, err := loadDraft(t, store, 999)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDraftUpdateOverwritesMutableFields(t *testing.T) {
	store := newTestStorage(t)
	d := createDraft(t, store, domain.NewDraft(7, 42, 1))

	d.Payload["b"] = domain.IntValue(2)
	d.CurrentStep = 3
	d.Status = domain.DraftStatusSubmitted
	d.Owner = 99 // immutable; must not be written
	d.Touch()
	if err := updateDraft(t, store, d); err != nil {
		t.Fatalf("update: %v", err)
	}
	if d.Version != 2 {
		t.Errorf("in-memory Version = %d, want 2", d.Version)
	}

	got, err := loadDraft(t, store, d.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CurrentStep != 3 || got.Status != domain.DraftStatusSubmitted || got.Version != 2 {
		t.Errorf("unexpected draft after update: %+v", got)
	}
	if got.Owner != 7 {
		t.Errorf("Owner changed to %d", got.Owner)
	}
	if !got.Payload["b"].Equal(domain.IntValue(2)) {
		t.Errorf("payload = %v", got.Payload)
	}
}

func TestDraftUpdateStaleVersion(t *testing.T) {
	store := newTestStorage(t)
	d := createDraft(t, store, domain.NewDraft(7, 42, 1))

	first, err := loadDraft(t, store, d.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	second, err := loadDraft(t, store, d.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	first.Payload["a"] = domain.IntValue(1)
	if err := updateDraft(t, store, first); err != nil {
		t.Fatalf("first update: %v", err)
	}

	second.Payload["b"] = domain.IntValue(2)
	err = updateDraft(t, store, second)
	if !errors.Is(err, domain.ErrConcurrentModify) {
		t.Fatalf("expected ErrConcurrentModify, got %v", err)
	}

	got, _ := loadDraft(t, store, d.ID)
	if _, ok := got.Payload["b"]; ok {
		t.Error("stale update was applied")
	}
	if !got.Payload["a"].Equal(domain.IntValue(1)) {
		t.Error("first update was lost")
	}
}

func TestDraftUpdateMissing(t *testing.T) {
	store := newTestStorage(t)

	d := domain.NewDraft(7, 42, 1)
	d.ID = 12345
	if err := updateDraft(t, store, d); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDraftListAndDelete(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	createDraft(t, store, domain.NewDraft(1, 10, 1))
	createDraft(t, store, domain.NewDraft(1, 20, 1))
	submitted := domain.NewDraft(2, 10, 3)
	submitted.Status = domain.DraftStatusSubmitted
	createDraft(t, store, submitted)

	tests := []struct {
		name string
		opts storage.ListOptions
		want int
	}{
		{"all", storage.ListOptions{}, 3},
		{"owner", storage.ListOptions{Owner: 1}, 2},
		{"owner and scope", storage.ListOptions{Owner: 1, Scope: 20}, 1},
		{"scope", storage.ListOptions{Scope: 10}, 2},
		{"status", storage.ListOptions{Statuses: []domain.DraftStatus{domain.DraftStatusSubmitted}}, 1},
		{"limit", storage.ListOptions{Limit: 2}, 2},
		{"offset", storage.ListOptions{Limit: 2, Offset: 2}, 1},
	}

	uow, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	for _, tt := range tests {
		got, err := uow.Drafts().List(ctx, tt.opts)
		if err != nil {
			t.Fatalf("%s: list: %v", tt.name, err)
		}
		if len(got) != tt.want {
			t.Errorf("%s: got %d drafts, want %d", tt.name, len(got), tt.want)
		}
	}

	n, err := uow.Drafts().DeleteByOwner(ctx, 1, 20)
	if err != nil || n != 1 {
		t.Fatalf("DeleteByOwner = %d, %v", n, err)
	}
	n, err = uow.Drafts().DeleteByScope(ctx, 10)
	if err != nil || n != 2 {
		t.Fatalf("DeleteByScope = %d, %v", n, err)
	}
	left, err := uow.Drafts().List(ctx, storage.ListOptions{})
	if err != nil || len(left) != 0 {
		t.Fatalf("remaining drafts = %d, %v", len(left), err)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestTransactionMetrics(t *testing.T) {
	metrics := observability.NewMetrics()
	store, err := NewWithMetrics(filepath.Join(t.TempDir(), "metrics.db"), metrics)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	uow, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if got := metrics.DBActiveTransactions().Get(); got != 1 {
		t.Errorf("active transactions = %d, want 1", got)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	uow.Rollback()

	if got := metrics.DBActiveTransactions().Get(); got != 0 {
		t.Errorf("active transactions = %d, want 0", got)
	}
	if got := metrics.DBTransactionCommit().Snapshot().Count; got != 1 {
		t.Errorf("commit observations = %d, want 1", got)
	}
}
