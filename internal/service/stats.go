package service

import (
	"context"

	"portfolio/internal/models"
	"portfolio/internal/repository"
)

type StatsService struct {
	repos *repository.Repository
}

func NewStatsService(repos *repository.Repository) *StatsService {
	return &StatsService{repos: repos}
}

// Dashboard collects the admin overview counters.
func (s *StatsService) Dashboard(ctx context.Context) (models.DashboardStats, error) {
	var (
		st  models.DashboardStats
		err error
	)
	if st.Users, err = s.repos.Auth.CountByRole(ctx, ""); err != nil {
		return models.DashboardStats{}, err
	}
	if st.GuestbookEntries, err = s.repos.Guestbook.Count(ctx); err != nil {
		return models.DashboardStats{}, err
	}
	if st.NewLeads, err = s.repos.Leads.CountByStatus(ctx, models.LeadStatusNew); err != nil {
		return models.DashboardStats{}, err
	}
	if st.OpenReports, err = s.repos.Reports.CountByStatus(ctx, models.ReportStatusOpen); err != nil {
		return models.DashboardStats{}, err
	}
	if st.UnreadChatRooms, err = s.repos.Chat.CountUnreadRooms(ctx); err != nil {
		return models.DashboardStats{}, err
	}
	p, err := s.repos.Portfolio.Load(ctx)
	if err != nil {
		return models.DashboardStats{}, err
	}
	st.PortfolioUpdatedAt = normalizeToUTC(p.UpdatedAt)
	return st, nil
}
