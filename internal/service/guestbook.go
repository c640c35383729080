package service

import (
	"context"
	"time"

	"portfolio/internal/models"
	"portfolio/internal/repository"

	"github.com/google/uuid"
)

const (
	DefaultGuestbookLimit = 50
	MaxGuestbookLimit     = 200

	maxGuestbookNameLen    = 80
	maxGuestbookMessageLen = 1000
)

type GuestbookService struct {
	guestbookRepo repository.GuestbookRepo
	activity      ActivityLog
}

func NewGuestbookService(repo repository.GuestbookRepo, activity ActivityLog) *GuestbookService {
	return &GuestbookService{guestbookRepo: repo, activity: activity}
}

// clampLimit applies the default for non-positive values and caps the maximum.
func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultGuestbookLimit
	case limit > MaxGuestbookLimit:
		return MaxGuestbookLimit
	default:
		return limit
	}
}

// List returns entries newest first.
func (s *GuestbookService) List(ctx context.Context, limit int) ([]models.GuestbookEntry, error) {
	return s.guestbookRepo.List(ctx, clampLimit(limit))
}

// ListNewer returns the oldest page of entries created strictly after since, newest first.
func (s *GuestbookService) ListNewer(ctx context.Context, since time.Time, limit int) ([]models.GuestbookEntry, error) {
	return s.guestbookRepo.ListNewer(ctx, since.UTC(), clampLimit(limit))
}

// Create stores a new entry; authenticated callers get it attributed to them.
func (s *GuestbookService) Create(ctx context.Context, in GuestbookInput, author Identity) (models.GuestbookEntry, error) {
	name, err := cleanText("name", in.Name, 1, maxGuestbookNameLen)
	if err != nil {
		return models.GuestbookEntry{}, err
	}
	message, err := cleanText("message", in.Message, 1, maxGuestbookMessageLen)
	if err != nil {
		return models.GuestbookEntry{}, err
	}

	now := time.Now().UTC()
	e := models.GuestbookEntry{
		ID:        uuid.NewString(),
		Name:      name,
		Message:   message,
		UserID:    author.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.guestbookRepo.Create(ctx, e); err != nil {
		return models.GuestbookEntry{}, err
	}

	s.activity.Record(ctx, EventGuestbookPost, "guestbook entry posted", map[string]any{"id": e.ID, "name": e.Name})
	return e, nil
}

// Update edits an entry. Authors may change their message; admins may also rename.
func (s *GuestbookService) Update(ctx context.Context, id string, in GuestbookInput, actor Identity) (models.GuestbookEntry, error) {
	e, err := s.get(ctx, id)
	if err != nil {
		return models.GuestbookEntry{}, err
	}
	if !canModify(e, actor) {
		return models.GuestbookEntry{}, ErrForbidden
	}

	message, err := cleanText("message", in.Message, 1, maxGuestbookMessageLen)
	if err != nil {
		return models.GuestbookEntry{}, err
	}
	e.Message = message

	if actor.IsAdmin() && in.Name != "" {
		name, err := cleanText("name", in.Name, 1, maxGuestbookNameLen)
		if err != nil {
			return models.GuestbookEntry{}, err
		}
		e.Name = name
	}
	e.UpdatedAt = time.Now().UTC()

	if err := s.guestbookRepo.Update(ctx, e); err != nil {
		return models.GuestbookEntry{}, err
	}
	s.activity.Record(ctx, EventGuestbookUpdate, "guestbook entry updated", map[string]any{"id": id, "by": actor.UserID})
	return e, nil
}

func (s *GuestbookService) Delete(ctx context.Context, id string, actor Identity) error {
	e, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(e, actor) {
		return ErrForbidden
	}
	if err := s.guestbookRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.activity.Record(ctx, EventGuestbookDelete, "guestbook entry deleted", map[string]any{"id": id, "by": actor.UserID})
	return nil
}

func (s *GuestbookService) get(ctx context.Context, id string) (models.GuestbookEntry, error) {
	e, err := s.guestbookRepo.Get(ctx, id)
	if err != nil {
		return models.GuestbookEntry{}, err
	}
	if e == nil {
		return models.GuestbookEntry{}, ErrNotFound
	}
	return *e, nil
}

// canModify: admins always; authors only for their own attributed entries.
func canModify(e models.GuestbookEntry, actor Identity) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.Authenticated() && e.UserID != 0 && e.UserID == actor.UserID
}
