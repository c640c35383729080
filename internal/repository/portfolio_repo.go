package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"portfolio/internal/models"
)

type PortfolioSQLite struct {
	db *sql.DB
}

func NewPortfolioSQLite(db *sql.DB) *PortfolioSQLite {
	return &PortfolioSQLite{db: db}
}

const (
	portfolioRowID = 1

	upsertPortfolioSQL = `
		INSERT INTO portfolio (id, doc, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			doc=excluded.doc,
			updated_at=excluded.updated_at
	`

	selectPortfolioSQL = `SELECT doc, updated_at FROM portfolio WHERE id=?`
)

// Save replaces the portfolio document (row id always 1).
func (r *PortfolioSQLite) Save(ctx context.Context, p models.PortfolioData) error {
	p.UpdatedAt = utcOrNow(p.UpdatedAt)

	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal portfolio: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, upsertPortfolioSQL, portfolioRowID, string(doc), p.UpdatedAt); err != nil {
		return fmt.Errorf("save portfolio: %w", err)
	}
	return nil
}

// Load fetches the portfolio document. A missing row yields a zero value.
func (r *PortfolioSQLite) Load(ctx context.Context) (models.PortfolioData, error) {
	var (
		doc string
		p   models.PortfolioData
	)
	if err := r.db.QueryRowContext(ctx, selectPortfolioSQL, portfolioRowID).Scan(&doc, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PortfolioData{}, nil // nothing saved yet
		}
		return models.PortfolioData{}, fmt.Errorf("load portfolio: %w", err)
	}

	updatedAt := p.UpdatedAt.UTC()
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return models.PortfolioData{}, fmt.Errorf("decode portfolio: %w", err)
	}
	// column is authoritative over whatever the document carried
	p.UpdatedAt = updatedAt
	return p, nil
}
