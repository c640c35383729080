package service

import (
	"time"

	"portfolio/internal/models"
)

// Identity is the caller resolved from a bearer token. The zero value is an anonymous visitor.
type Identity struct {
	UserID int
	Role   string
}

func (i Identity) IsAdmin() bool       { return i.Role == models.RoleAdmin }
func (i Identity) Authenticated() bool { return i.UserID != 0 }

type SignUpInput struct {
	Username string
	Email    string
	Password string
}

// UserUpdate carries optional changes; nil fields are left untouched.
type UserUpdate struct {
	Email    *string
	Role     *string
	Password *string
}

type GuestbookInput struct {
	Name    string
	Message string
}

type LeadInput struct {
	Name    string
	Email   string
	Company string
	Message string
	Source  string
}

type ReportInput struct {
	Type          string
	Description   string
	Page          string
	ReporterEmail string
}

// LogFilter supports activity filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "LEAD_CREATE", "GUESTBOOK_POST", ...
}

// Options carries the tunables NewService needs from configuration.
type Options struct {
	SigningKey        string
	TokenTTL          time.Duration
	ChatHistoryLimit  int
	ChatRetention     time.Duration
	ActivityRetention time.Duration
}
