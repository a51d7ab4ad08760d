package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/coursewizard/internal/domain"
	"github.com/example/coursewizard/internal/storage"
)

const draftColumns = `id, owner_id, scope_id, status, current_step, payload_json, created_at, modified_at, version`

type draftRepo struct {
	tx *sql.Tx
}

func (r *draftRepo) Create(ctx context.Context, d *domain.Draft) error {
	payloadJSON, err := domain.MarshalPayload(d.Payload)
	if err != nil {
		return err
	}

	result, err := r.tx.ExecContext(ctx, `
		INSERT INTO drafts (owner_id, scope_id, status, current_step, payload_json, created_at, modified_at, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, d.Owner, d.Scope, string(d.Status), d.CurrentStep, payloadJSON, d.CreatedAt, d.ModifiedAt, d.Version)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = id
	return nil
}

func (r *draftRepo) Get(ctx context.Context, id int64) (*domain.Draft, error) {
	row := r.tx.QueryRowContext(ctx, `SELECT `+draftColumns+` FROM drafts WHERE id = ?`, id)

	d, err := scanDraft(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraft(row rowScanner) (*domain.Draft, error) {
	d := &domain.Draft{}
	var status string
	var payloadJSON sql.NullString

	err := row.Scan(&d.ID, &d.Owner, &d.Scope, &status, &d.CurrentStep, &payloadJSON,
		&d.CreatedAt, &d.ModifiedAt, &d.Version)
	if err != nil {
		return nil, err
	}
	d.Status = domain.DraftStatus(status)

	d.Payload, err = domain.UnmarshalPayload(payloadJSON.String)
	if err != nil {
		return nil, fmt.Errorf("draft %d: %w", d.ID, err)
	}
	return d, nil
}

func (r *draftRepo) Update(ctx context.Context, d *domain.Draft) error {
	payloadJSON, err := domain.MarshalPayload(d.Payload)
	if err != nil {
		return err
	}

	result, err := r.tx.ExecContext(ctx, `
		UPDATE drafts
		SET payload_json = ?, current_step = ?, status = ?, modified_at = ?, version = version + 1
		WHERE id = ? AND version = ?
	`, payloadJSON, d.CurrentStep, string(d.Status), d.ModifiedAt, d.ID, d.Version)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var exists int
		err := r.tx.QueryRowContext(ctx, `SELECT 1 FROM drafts WHERE id = ?`, d.ID).Scan(&exists)
		if err == sql.ErrNoRows {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		return domain.ErrConcurrentModify
	}

	d.Version++
	return nil
}

func (r *draftRepo) List(ctx context.Context, opts storage.ListOptions) ([]*domain.Draft, error) {
	query := `SELECT ` + draftColumns + ` FROM drafts WHERE 1=1`
	var args []any

	if opts.Owner != 0 {
		query += ` AND owner_id = ?`
		args = append(args, opts.Owner)
	}
	if opts.Scope != 0 {
		query += ` AND scope_id = ?`
		args = append(args, opts.Scope)
	}
	if len(opts.Statuses) > 0 {
		placeholders := make([]string, len(opts.Statuses))
		for i, s := range opts.Statuses {
			placeholders[i] = "?"
			args = append(args, string(s))
		}
		query += ` AND status IN (` + strings.Join(placeholders, ",") + `)`
	}

	query += ` ORDER BY id`

	if opts.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, opts.Limit, opts.Offset)
	}

	rows, err := r.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drafts []*domain.Draft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

func (r *draftRepo) DeleteByScope(ctx context.Context, scope int64) (int64, error) {
	result, err := r.tx.ExecContext(ctx, `DELETE FROM drafts WHERE scope_id = ?`, scope)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *draftRepo) DeleteByOwner(ctx context.Context, owner, scope int64) (int64, error) {
	query := `DELETE FROM drafts WHERE owner_id = ?`
	args := []any{owner}
	if scope != 0 {
		query += ` AND scope_id = ?`
		args = append(args, scope)
	}

	result, err := r.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
