package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/internal/models"
	"portfolio/internal/repository"
)

func TestStats_DashboardAggregatesCounters(t *testing.T) {
	leads := newMemLeads()
	leads.leads["a"] = models.Lead{ID: "a", Status: models.LeadStatusNew}
	leads.leads["b"] = models.Lead{ID: "b", Status: models.LeadStatusClosed}

	reports := newMemReports()
	reports.reports["r"] = models.Report{ID: "r", Status: models.ReportStatusOpen}

	gb := newMemGuestbook()
	gb.entries["g1"] = models.GuestbookEntry{ID: "g1"}
	gb.entries["g2"] = models.GuestbookEntry{ID: "g2"}

	saved := time.Date(2025, 4, 1, 8, 0, 0, 0, time.FixedZone("X", 3600))
	repos := &repository.Repository{
		Auth: &mockAuthRepo{users: map[int]models.User{
			1: {ID: 1, Role: models.RoleAdmin},
			2: {ID: 2, Role: models.RoleUser},
			3: {ID: 3, Role: models.RoleUser},
		}},
		Portfolio: &memPortfolio{doc: models.PortfolioData{UpdatedAt: saved}},
		Guestbook: gb,
		Leads:     leads,
		Reports:   reports,
		Chat:      newMemChat(),
		Activity:  &memActivity{},
	}

	st, err := NewStatsService(repos).Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, st.Users)
	assert.Equal(t, 2, st.GuestbookEntries)
	assert.Equal(t, 1, st.NewLeads)
	assert.Equal(t, 1, st.OpenReports)
	assert.Zero(t, st.UnreadChatRooms)
	assert.Equal(t, time.UTC, st.PortfolioUpdatedAt.Location())
	assert.True(t, st.PortfolioUpdatedAt.Equal(saved))
}
