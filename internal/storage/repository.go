package storage

import (
	"context"

	"github.com/example/coursewizard/internal/domain"
)

// ListOptions provides filtering options for list operations.
type ListOptions struct {
	// Owner and Scope filter when non-zero.
	Owner int64
	Scope int64

	// Statuses to filter by (empty = all)
	Statuses []domain.DraftStatus

	// Pagination
	Limit  int
	Offset int
}

// DraftRepository provides access to Draft storage.
type DraftRepository interface {
	// Create inserts a new Draft and assigns its ID.
	Create(ctx context.Context, draft *domain.Draft) error

	// Get retrieves a Draft by ID.
	Get(ctx context.Context, id int64) (*domain.Draft, error)

	// Update overwrites the mutable fields of a Draft. It fails with
	// domain.ErrConcurrentModify when the stored version differs from
	// draft.Version.
	Update(ctx context.Context, draft *domain.Draft) error

	// List lists Drafts with optional filtering, oldest first.
	List(ctx context.Context, opts ListOptions) ([]*domain.Draft, error)

	// DeleteByScope deletes every Draft in a scope.
	DeleteByScope(ctx context.Context, scope int64) (int64, error)

	// DeleteByOwner deletes the Drafts of an owner, limited to scope when
	// scope is non-zero.
	DeleteByOwner(ctx context.Context, owner, scope int64) (int64, error)
}

// UnitOfWork provides transactional access to all repositories.
type UnitOfWork interface {
	Drafts() DraftRepository

	// Transaction control
	Commit() error
	Rollback() error
}

// Storage provides the main entry point for storage operations.
type Storage interface {
	// Begin starts a new transaction and returns a UnitOfWork. Transactions
	// take the write lock on begin, so a load followed by an update inside
	// one UnitOfWork is serialised against other writers.
	Begin(ctx context.Context) (UnitOfWork, error)

	// Close closes the storage connection.
	Close() error

	// Migrate runs database migrations.
	Migrate(ctx context.Context) error
}
