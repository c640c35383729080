package models

import "time"

const (
	ReportTypeBug     = "bug"
	ReportTypeContent = "content"
	ReportTypeAbuse   = "abuse"
	ReportTypeOther   = "other"

	ReportStatusOpen     = "open"
	ReportStatusResolved = "resolved"
)

// Report is a visitor-submitted problem report.
type Report struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Description   string    `json:"description"`
	Page          string    `json:"page,omitempty"`
	ReporterEmail string    `json:"reporter_email,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
