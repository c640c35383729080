package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"portfolio/internal/logger"
	"portfolio/internal/models"
	"portfolio/internal/repository"
)

// Activity event types.
const (
	EventGuestbookPost   = "GUESTBOOK_POST"
	EventGuestbookUpdate = "GUESTBOOK_UPDATE"
	EventGuestbookDelete = "GUESTBOOK_DELETE"
	EventLeadCreate      = "LEAD_CREATE"
	EventLeadStatus      = "LEAD_STATUS"
	EventLeadDelete      = "LEAD_DELETE"
	EventReportCreate    = "REPORT_CREATE"
	EventReportStatus    = "REPORT_STATUS"
	EventReportDelete    = "REPORT_DELETE"
	EventPortfolioSave   = "PORTFOLIO_SAVE"
	EventUserSignup      = "USER_SIGNUP"
	EventUserUpdate      = "USER_UPDATE"
	EventUserDelete      = "USER_DELETE"
	EventChatRoomOpen    = "CHAT_ROOM_OPEN"
)

type ActivityService struct {
	activityRepo repository.ActivityRepo
	log          *logger.Logger
}

func NewActivityService(activityRepo repository.ActivityRepo, log *logger.Logger) *ActivityService {
	return &ActivityService{activityRepo: activityRepo, log: log}
}

var (
	errInvalidTimeRange = fmt.Errorf("%w: invalid time range: from must be <= to", ErrInvalidInput)
)

// Record appends an event. Failures are logged and swallowed so the caller's
// operation never fails because of the audit trail.
func (s *ActivityService) Record(ctx context.Context, typ, description string, meta any) {
	err := s.activityRepo.Append(ctx, models.ActivityEvent{
		OccurredAt:  time.Now().UTC(),
		Type:        normalizeEventType(typ),
		Description: description,
		Metadata:    meta,
	})
	if err != nil && s.log != nil {
		s.log.Warnw("activity_record_failed", "type", typ, "err", err)
	}
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeEventType trims spaces and uppercases the event type filter.
func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", errInvalidTimeRange
	}

	eventType := normalizeEventType(f.Type)
	return from, to, eventType, nil
}

func (s *ActivityService) List(ctx context.Context, f LogFilter) ([]models.ActivityEvent, error) {
	from, to, typ, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.activityRepo.List(ctx, from, to, typ)
}
