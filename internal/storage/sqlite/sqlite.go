package sqlite

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/coursewizard/internal/observability"
	"github.com/example/coursewizard/internal/storage"
)

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db      *sql.DB
	metrics *observability.Metrics
}

// New creates a new SQLite storage instance.
func New(path string) (*SQLiteStorage, error) {
	return NewWithMetrics(path, nil)
}

// NewWithMetrics creates a new SQLite storage instance that records
// transaction timings into metrics. A nil metrics disables recording.
func NewWithMetrics(path string, metrics *observability.Metrics) (*SQLiteStorage, error) {
	// _txlock=immediate takes the write lock at BEGIN so that a draft load and
	// its update cannot interleave with another writer.
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON&_txlock=immediate")
	if err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single connection for writes
	db.SetMaxIdleConns(1)

	return &SQLiteStorage{db: db, metrics: metrics}, nil
}

// Begin starts a new transaction.
func (s *SQLiteStorage) Begin(ctx context.Context) (storage.UnitOfWork, error) {
	start := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.DBTransactionBegin().Observe(time.Since(start))
		s.metrics.DBActiveTransactions().Inc()
	}
	return newUnitOfWork(tx, s.metrics), nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Migrate runs database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	return Migrate(ctx, s.db)
}

// unitOfWork implements the UnitOfWork interface.
type unitOfWork struct {
	tx      *sql.Tx
	drafts  *draftRepo
	metrics *observability.Metrics
	done    bool
}

func newUnitOfWork(tx *sql.Tx, metrics *observability.Metrics) *unitOfWork {
	return &unitOfWork{
		tx:      tx,
		drafts:  &draftRepo{tx: tx},
		metrics: metrics,
	}
}

func (u *unitOfWork) Drafts() storage.DraftRepository {
	return u.drafts
}

func (u *unitOfWork) Commit() error {
	start := time.Now()
	err := u.tx.Commit()
	if u.metrics != nil {
		u.metrics.DBTransactionCommit().Observe(time.Since(start))
	}
	u.finish()
	return err
}

// Rollback is safe to defer after Commit; it then returns sql.ErrTxDone.
func (u *unitOfWork) Rollback() error {
	err := u.tx.Rollback()
	u.finish()
	return err
}

func (u *unitOfWork) finish() {
	if u.done {
		return
	}
	u.done = true
	if u.metrics != nil {
		u.metrics.DBActiveTransactions().Dec()
	}
}
