package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"portfolio/internal/models"
)

// ErrNotFound is returned by update/delete operations that matched no row.
var ErrNotFound = errors.New("record not found")

type Authorization interface {
	Create(ctx context.Context, u models.User) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, u models.User) error
	Delete(ctx context.Context, id int) error
	CountByRole(ctx context.Context, role string) (int, error)
}

type PortfolioRepo interface {
	Save(ctx context.Context, p models.PortfolioData) error
	Load(ctx context.Context) (models.PortfolioData, error)
}

type GuestbookRepo interface {
	Create(ctx context.Context, e models.GuestbookEntry) error
	Get(ctx context.Context, id string) (*models.GuestbookEntry, error)
	List(ctx context.Context, limit int) ([]models.GuestbookEntry, error)
	ListNewer(ctx context.Context, since time.Time, limit int) ([]models.GuestbookEntry, error)
	Update(ctx context.Context, e models.GuestbookEntry) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type LeadRepo interface {
	Create(ctx context.Context, l models.Lead) error
	List(ctx context.Context, status string) ([]models.Lead, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, status string) (int, error)
}

type ReportRepo interface {
	Create(ctx context.Context, r models.Report) error
	List(ctx context.Context, status string) ([]models.Report, error)
	UpdateStatus(ctx context.Context, id, status string, at time.Time) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, status string) (int, error)
}

type ChatRepo interface {
	CreateRoom(ctx context.Context, r models.ChatRoom) error
	GetRoom(ctx context.Context, id string) (*models.ChatRoom, error)
	ListRooms(ctx context.Context) ([]models.ChatRoom, error)
	AppendMessage(ctx context.Context, m models.ChatMessage) error
	ListMessages(ctx context.Context, roomID string, limit int) ([]models.ChatMessage, error)
	MarkRead(ctx context.Context, roomID, sender string, ids []string, at time.Time) (int64, error)
	DeleteMessagesBefore(ctx context.Context, before time.Time) (int64, error)
	CountUnreadRooms(ctx context.Context) (int, error)
}

type ActivityRepo interface {
	Append(ctx context.Context, e models.ActivityEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.ActivityEvent, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

type Repository struct {
	Auth      Authorization
	Portfolio PortfolioRepo
	Guestbook GuestbookRepo
	Leads     LeadRepo
	Reports   ReportRepo
	Chat      ChatRepo
	Activity  ActivityRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Auth:      NewUserRepository(db),
		Portfolio: NewPortfolioSQLite(db),
		Guestbook: NewGuestbookSQLite(db),
		Leads:     NewLeadSQLite(db),
		Reports:   NewReportSQLite(db),
		Chat:      NewChatSQLite(db),
		Activity:  NewActivitySQLite(db),
	}
}

// expectAffected maps a zero-row UPDATE/DELETE to ErrNotFound.
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// utcOrNow normalizes t to UTC, substituting the current time for zero values.
func utcOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
