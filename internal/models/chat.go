package models

import "time"

// Chat message senders.
const (
	SenderVisitor = "visitor"
	SenderAdmin   = "admin"
)

type ChatRoom struct {
	ID               string    `json:"id"`
	VisitorName      string    `json:"visitor_name"`
	CreatedAt        time.Time `json:"created_at"`
	LastMessageAt    time.Time `json:"last_message_at"`
	UnreadForAdmin   int       `json:"unread_for_admin"`
	UnreadForVisitor int       `json:"unread_for_visitor"`
}

type ChatMessage struct {
	ID        string     `json:"id"`
	RoomID    string     `json:"room_id"`
	Sender    string     `json:"sender"` // visitor | admin
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}
