package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"portfolio/internal/models"
)

type ReportSQLite struct {
	db *sql.DB
}

func NewReportSQLite(db *sql.DB) *ReportSQLite { return &ReportSQLite{db: db} }

const (
	insertReportSQL       = `INSERT INTO reports (id, type, description, page, reporter_email, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	listReportsSQL        = `SELECT id, type, description, page, reporter_email, status, created_at, updated_at FROM reports WHERE (? = '' OR status = ?) ORDER BY created_at DESC`
	updateReportStatusSQL = `UPDATE reports SET status = ?, updated_at = ? WHERE id = ?`
	deleteReportSQL       = `DELETE FROM reports WHERE id = ?`
	countReportsSQL       = `SELECT COUNT(*) FROM reports WHERE (? = '' OR status = ?)`
)

func (r *ReportSQLite) Create(ctx context.Context, rep models.Report) error {
	created := utcOrNow(rep.CreatedAt)
	_, err := r.db.ExecContext(ctx, insertReportSQL,
		rep.ID, rep.Type, rep.Description, rep.Page, rep.ReporterEmail, rep.Status, created, created)
	if err != nil {
		return fmt.Errorf("insert report %q: %w", rep.ID, err)
	}
	return nil
}

func (r *ReportSQLite) List(ctx context.Context, status string) ([]models.Report, error) {
	rows, err := r.db.QueryContext(ctx, listReportsSQL, status, status)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	out := make([]models.Report, 0, 16)
	for rows.Next() {
		var (
			rep         models.Report
			page, email sql.NullString
		)
		if err := rows.Scan(&rep.ID, &rep.Type, &rep.Description, &page, &email, &rep.Status, &rep.CreatedAt, &rep.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		rep.Page, rep.ReporterEmail = page.String, email.String
		rep.CreatedAt, rep.UpdatedAt = rep.CreatedAt.UTC(), rep.UpdatedAt.UTC()
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReportSQLite) UpdateStatus(ctx context.Context, id, status string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, updateReportStatusSQL, status, utcOrNow(at), id)
	if err != nil {
		return fmt.Errorf("update report %q: %w", id, err)
	}
	return expectAffected(res)
}

func (r *ReportSQLite) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deleteReportSQL, id)
	if err != nil {
		return fmt.Errorf("delete report %q: %w", id, err)
	}
	return expectAffected(res)
}

func (r *ReportSQLite) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countReportsSQL, status, status).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return n, nil
}
