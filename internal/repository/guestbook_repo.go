package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"portfolio/internal/models"
)

type GuestbookSQLite struct {
	db *sql.DB
}

func NewGuestbookSQLite(db *sql.DB) *GuestbookSQLite { return &GuestbookSQLite{db: db} }

const (
	insertGuestbookSQL = `INSERT INTO guestbook_entries (id, name, message, user_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`
	selectGuestbookSQL = `SELECT id, name, message, user_id, created_at, updated_at FROM guestbook_entries`

	selectGuestbookByIDSQL = selectGuestbookSQL + ` WHERE id = ?`
	listGuestbookSQL       = selectGuestbookSQL + ` ORDER BY created_at DESC, id DESC LIMIT ?`
	listGuestbookNewerSQL  = selectGuestbookSQL + ` WHERE created_at > ? ORDER BY created_at ASC, id ASC LIMIT ?`

	updateGuestbookSQL = `UPDATE guestbook_entries SET name = ?, message = ?, updated_at = ? WHERE id = ?`
	deleteGuestbookSQL = `DELETE FROM guestbook_entries WHERE id = ?`
	countGuestbookSQL  = `SELECT COUNT(*) FROM guestbook_entries`
)

func (r *GuestbookSQLite) Create(ctx context.Context, e models.GuestbookEntry) error {
	var userID sql.NullInt64
	if e.UserID != 0 {
		userID = sql.NullInt64{Int64: int64(e.UserID), Valid: true}
	}
	created := utcOrNow(e.CreatedAt)
	updated := e.UpdatedAt
	if updated.IsZero() {
		updated = created
	}
	if _, err := r.db.ExecContext(ctx, insertGuestbookSQL, e.ID, e.Name, e.Message, userID, created, updated.UTC()); err != nil {
		return fmt.Errorf("insert guestbook entry %q: %w", e.ID, err)
	}
	return nil
}

// Get returns (nil, nil) if the entry does not exist.
func (r *GuestbookSQLite) Get(ctx context.Context, id string) (*models.GuestbookEntry, error) {
	e, err := scanGuestbookEntry(r.db.QueryRowContext(ctx, selectGuestbookByIDSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select guestbook entry %q: %w", id, err)
	}
	return &e, nil
}

// List returns the newest entries first.
func (r *GuestbookSQLite) List(ctx context.Context, limit int) ([]models.GuestbookEntry, error) {
	return r.query(ctx, listGuestbookSQL, limit)
}

// ListNewer returns the oldest limit entries created strictly after since,
// ordered newest first. Paging forward from the newest returned entry
// therefore never skips a row.
func (r *GuestbookSQLite) ListNewer(ctx context.Context, since time.Time, limit int) ([]models.GuestbookEntry, error) {
	out, err := r.query(ctx, listGuestbookNewerSQL, since.UTC(), limit)
	if err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

func (r *GuestbookSQLite) Update(ctx context.Context, e models.GuestbookEntry) error {
	res, err := r.db.ExecContext(ctx, updateGuestbookSQL, e.Name, e.Message, utcOrNow(e.UpdatedAt), e.ID)
	if err != nil {
		return fmt.Errorf("update guestbook entry %q: %w", e.ID, err)
	}
	return expectAffected(res)
}

func (r *GuestbookSQLite) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deleteGuestbookSQL, id)
	if err != nil {
		return fmt.Errorf("delete guestbook entry %q: %w", id, err)
	}
	return expectAffected(res)
}

func (r *GuestbookSQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countGuestbookSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count guestbook entries: %w", err)
	}
	return n, nil
}

func (r *GuestbookSQLite) query(ctx context.Context, q string, args ...any) ([]models.GuestbookEntry, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list guestbook entries: %w", err)
	}
	defer rows.Close()

	out := make([]models.GuestbookEntry, 0, 32)
	for rows.Next() {
		e, err := scanGuestbookEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan guestbook entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanGuestbookEntry(row rowScanner) (models.GuestbookEntry, error) {
	var (
		e      models.GuestbookEntry
		userID sql.NullInt64
	)
	if err := row.Scan(&e.ID, &e.Name, &e.Message, &userID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return models.GuestbookEntry{}, err
	}
	if userID.Valid {
		e.UserID = int(userID.Int64)
	}
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return e, nil
}
