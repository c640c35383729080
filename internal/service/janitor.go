package service

import (
	"context"
	"time"

	"portfolio/internal/logger"
	"portfolio/internal/repository"
)

// JanitorService prunes old chat messages and activity events on a ticker.
type JanitorService struct {
	chatRepo          repository.ChatRepo
	activityRepo      repository.ActivityRepo
	chatRetention     time.Duration
	activityRetention time.Duration
	log               *logger.Logger
}

func NewJanitorService(chatRepo repository.ChatRepo, activityRepo repository.ActivityRepo, chatRetention, activityRetention time.Duration, log *logger.Logger) *JanitorService {
	return &JanitorService{
		chatRepo:          chatRepo,
		activityRepo:      activityRepo,
		chatRetention:     chatRetention,
		activityRetention: activityRetention,
		log:               log,
	}
}

// Run ticks at the given interval until ctx is canceled.
func (s *JanitorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.Sweep(ctx, now)
		}
	}
}

// Sweep performs one pruning pass. A zero retention disables that sweep.
func (s *JanitorService) Sweep(ctx context.Context, now time.Time) {
	if s.chatRetention > 0 {
		n, err := s.chatRepo.DeleteMessagesBefore(ctx, now.Add(-s.chatRetention))
		s.report("chat_messages", n, err)
	}
	if s.activityRetention > 0 {
		n, err := s.activityRepo.DeleteBefore(ctx, now.Add(-s.activityRetention))
		s.report("activity_events", n, err)
	}
}

func (s *JanitorService) report(what string, n int64, err error) {
	if s.log == nil {
		return
	}
	if err != nil {
		s.log.Errorw("janitor_sweep_failed", "target", what, "err", err)
		return
	}
	if n > 0 {
		s.log.Infow("janitor_sweep", "target", what, "deleted", n)
	}
}
