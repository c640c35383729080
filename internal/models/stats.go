package models

import "time"

// DashboardStats is the summary returned to the admin dashboard.
type DashboardStats struct {
	Users              int       `json:"users"`
	GuestbookEntries   int       `json:"guestbook_entries"`
	NewLeads           int       `json:"new_leads"`
	OpenReports        int       `json:"open_reports"`
	UnreadChatRooms    int       `json:"unread_chat_rooms"`
	PortfolioUpdatedAt time.Time `json:"portfolio_updated_at,omitempty"`
}
