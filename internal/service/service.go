package service

import (
	"context"
	"time"

	"portfolio/internal/logger"
	"portfolio/internal/models"
	"portfolio/internal/repository"
)

type Authorization interface {
	SignUp(ctx context.Context, in SignUpInput) (models.User, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (Identity, error)
	Authenticate(ctx context.Context, accessToken string) (Identity, error)
	GetUser(ctx context.Context, id int) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id int, in UserUpdate) (models.User, error)
	DeleteUser(ctx context.Context, id int) error
}

// Portfolio reads and replaces the single site-content document.
type Portfolio interface {
	Get(ctx context.Context) (models.PortfolioData, error)
	Save(ctx context.Context, p models.PortfolioData) (models.PortfolioData, error)
}

type Guestbook interface {
	List(ctx context.Context, limit int) ([]models.GuestbookEntry, error)
	ListNewer(ctx context.Context, since time.Time, limit int) ([]models.GuestbookEntry, error)
	Create(ctx context.Context, in GuestbookInput, author Identity) (models.GuestbookEntry, error)
	Update(ctx context.Context, id string, in GuestbookInput, actor Identity) (models.GuestbookEntry, error)
	Delete(ctx context.Context, id string, actor Identity) error
}

type Leads interface {
	Create(ctx context.Context, in LeadInput) (models.Lead, error)
	List(ctx context.Context, status string) ([]models.Lead, error)
	SetStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

type Reports interface {
	Create(ctx context.Context, in ReportInput) (models.Report, error)
	List(ctx context.Context, status string) ([]models.Report, error)
	SetStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

// Chat persists rooms and messages; fan-out lives in the chat hub.
type Chat interface {
	OpenRoom(ctx context.Context, roomID, visitorName string) (models.ChatRoom, error)
	GetRoom(ctx context.Context, roomID string) (models.ChatRoom, error)
	ListRooms(ctx context.Context) ([]models.ChatRoom, error)
	History(ctx context.Context, roomID string) ([]models.ChatMessage, error)
	PostMessage(ctx context.Context, roomID, sender, body string) (models.ChatMessage, error)
	MarkRead(ctx context.Context, roomID, reader string, ids []string) (time.Time, int64, error)
}

// ActivityLog exposes the append-only audit trail with filtering access.
type ActivityLog interface {
	Record(ctx context.Context, typ, description string, meta any)
	List(ctx context.Context, f LogFilter) ([]models.ActivityEvent, error)
}

type Stats interface {
	Dashboard(ctx context.Context) (models.DashboardStats, error)
}

// Janitor runs the background retention loop.
// Stop via context cancellation in main() for graceful shutdown.
type Janitor interface {
	Run(ctx context.Context, tick time.Duration)
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Authorization
	Portfolio
	Guestbook
	Leads
	Reports
	Chat
	ActivityLog
	Stats
	Janitor
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository, opts Options, log *logger.Logger) *Service {
	activity := NewActivityService(repos.Activity, log)
	return &Service{
		Authorization: NewAuthService(repos.Auth, activity, opts.SigningKey, opts.TokenTTL),
		Portfolio:     NewPortfolioService(repos.Portfolio, activity),
		Guestbook:     NewGuestbookService(repos.Guestbook, activity),
		Leads:         NewLeadService(repos.Leads, activity),
		Reports:       NewReportService(repos.Reports, activity),
		Chat:          NewChatService(repos.Chat, activity, opts.ChatHistoryLimit),
		ActivityLog:   activity,
		Stats:         NewStatsService(repos),
		Janitor:       NewJanitorService(repos.Chat, repos.Activity, opts.ChatRetention, opts.ActivityRetention, log),
	}
}
