package models

import "time"

// GuestbookEntry is a single public guestbook message.
type GuestbookEntry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	UserID    int       `json:"user_id,omitempty"` // 0 for anonymous visitors
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
