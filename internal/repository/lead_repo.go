package repository

import (
	"context"
	"database/sql"
	"fmt"

	"portfolio/internal/models"
)

type LeadSQLite struct {
	db *sql.DB
}

func NewLeadSQLite(db *sql.DB) *LeadSQLite { return &LeadSQLite{db: db} }

const (
	insertLeadSQL       = `INSERT INTO leads (id, name, email, company, message, source, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	listLeadsSQL        = `SELECT id, name, email, company, message, source, status, created_at FROM leads WHERE (? = '' OR status = ?) ORDER BY created_at DESC`
	updateLeadStatusSQL = `UPDATE leads SET status = ? WHERE id = ?`
	deleteLeadSQL       = `DELETE FROM leads WHERE id = ?`
	countLeadsSQL       = `SELECT COUNT(*) FROM leads WHERE (? = '' OR status = ?)`
)

func (r *LeadSQLite) Create(ctx context.Context, l models.Lead) error {
	_, err := r.db.ExecContext(ctx, insertLeadSQL,
		l.ID, l.Name, l.Email, l.Company, l.Message, l.Source, l.Status, utcOrNow(l.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert lead %q: %w", l.ID, err)
	}
	return nil
}

// List returns leads newest first, optionally filtered by status.
func (r *LeadSQLite) List(ctx context.Context, status string) ([]models.Lead, error) {
	rows, err := r.db.QueryContext(ctx, listLeadsSQL, status, status)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	out := make([]models.Lead, 0, 16)
	for rows.Next() {
		var (
			l                        models.Lead
			company, message, source sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.Name, &l.Email, &company, &message, &source, &l.Status, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		l.Company, l.Message, l.Source = company.String, message.String, source.String
		l.CreatedAt = l.CreatedAt.UTC()
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LeadSQLite) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, updateLeadStatusSQL, status, id)
	if err != nil {
		return fmt.Errorf("update lead %q: %w", id, err)
	}
	return expectAffected(res)
}

func (r *LeadSQLite) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deleteLeadSQL, id)
	if err != nil {
		return fmt.Errorf("delete lead %q: %w", id, err)
	}
	return expectAffected(res)
}

func (r *LeadSQLite) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countLeadsSQL, status, status).Scan(&n); err != nil {
		return 0, fmt.Errorf("count leads: %w", err)
	}
	return n, nil
}
