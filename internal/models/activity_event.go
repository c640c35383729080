package models

import "time"

// ActivityEvent is a single audit log entry shown on the admin dashboard.
type ActivityEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // GUESTBOOK_POST | LEAD_CREATE | ...
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
