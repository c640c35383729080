package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"portfolio/internal/models"
)

type ChatSQLite struct {
	db *sql.DB
}

func NewChatSQLite(db *sql.DB) *ChatSQLite { return &ChatSQLite{db: db} }

const (
	insertChatRoomSQL = `INSERT INTO chat_rooms (id, visitor_name, created_at, last_message_at) VALUES (?, ?, ?, ?)`
	selectChatRoomSQL = `SELECT id, visitor_name, created_at, last_message_at FROM chat_rooms WHERE id = ?`

	listChatRoomsSQL = `
		SELECT r.id, r.visitor_name, r.created_at, r.last_message_at,
			(SELECT COUNT(*) FROM chat_messages m WHERE m.room_id = r.id AND m.sender = 'visitor' AND m.read_at IS NULL),
			(SELECT COUNT(*) FROM chat_messages m WHERE m.room_id = r.id AND m.sender = 'admin' AND m.read_at IS NULL)
		FROM chat_rooms r
		ORDER BY r.last_message_at DESC
	`

	insertChatMessageSQL = `INSERT INTO chat_messages (id, room_id, sender, body, created_at) VALUES (?, ?, ?, ?, ?)`
	touchChatRoomSQL     = `UPDATE chat_rooms SET last_message_at = ? WHERE id = ?`
	listChatMessagesSQL  = `SELECT id, room_id, sender, body, created_at, read_at FROM chat_messages WHERE room_id = ? ORDER BY created_at DESC LIMIT ?`

	markReadBaseSQL     = `UPDATE chat_messages SET read_at = ? WHERE room_id = ? AND sender = ? AND read_at IS NULL`
	deleteChatBeforeSQL = `DELETE FROM chat_messages WHERE created_at < ?`
	countUnreadRoomsSQL = `SELECT COUNT(DISTINCT room_id) FROM chat_messages WHERE sender = 'visitor' AND read_at IS NULL`
)

func (r *ChatSQLite) CreateRoom(ctx context.Context, room models.ChatRoom) error {
	created := utcOrNow(room.CreatedAt)
	last := room.LastMessageAt
	if last.IsZero() {
		last = created
	}
	if _, err := r.db.ExecContext(ctx, insertChatRoomSQL, room.ID, room.VisitorName, created, last.UTC()); err != nil {
		return fmt.Errorf("insert chat room %q: %w", room.ID, err)
	}
	return nil
}

// GetRoom returns (nil, nil) if the room does not exist.
func (r *ChatSQLite) GetRoom(ctx context.Context, id string) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := r.db.QueryRowContext(ctx, selectChatRoomSQL, id).Scan(&room.ID, &room.VisitorName, &room.CreatedAt, &room.LastMessageAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select chat room %q: %w", id, err)
	}
	room.CreatedAt, room.LastMessageAt = room.CreatedAt.UTC(), room.LastMessageAt.UTC()
	return &room, nil
}

// ListRooms returns rooms with unread counters, most recently active first.
func (r *ChatSQLite) ListRooms(ctx context.Context) ([]models.ChatRoom, error) {
	rows, err := r.db.QueryContext(ctx, listChatRoomsSQL)
	if err != nil {
		return nil, fmt.Errorf("list chat rooms: %w", err)
	}
	defer rows.Close()

	out := make([]models.ChatRoom, 0, 16)
	for rows.Next() {
		var room models.ChatRoom
		if err := rows.Scan(&room.ID, &room.VisitorName, &room.CreatedAt, &room.LastMessageAt,
			&room.UnreadForAdmin, &room.UnreadForVisitor); err != nil {
			return nil, fmt.Errorf("scan chat room: %w", err)
		}
		room.CreatedAt, room.LastMessageAt = room.CreatedAt.UTC(), room.LastMessageAt.UTC()
		out = append(out, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// AppendMessage stores a message and bumps the room's last_message_at in one transaction.
func (r *ChatSQLite) AppendMessage(ctx context.Context, m models.ChatMessage) error {
	at := utcOrNow(m.CreatedAt)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chat message tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, insertChatMessageSQL, m.ID, m.RoomID, m.Sender, m.Body, at); err != nil {
		return fmt.Errorf("insert chat message %q: %w", m.ID, err)
	}
	res, err := tx.ExecContext(ctx, touchChatRoomSQL, at, m.RoomID)
	if err != nil {
		return fmt.Errorf("touch chat room %q: %w", m.RoomID, err)
	}
	if err := expectAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

// ListMessages returns up to limit most recent messages of a room in chronological order.
func (r *ChatSQLite) ListMessages(ctx context.Context, roomID string, limit int) ([]models.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx, listChatMessagesSQL, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	out := make([]models.ChatMessage, 0, limit)
	for rows.Next() {
		var (
			m      models.ChatMessage
			readAt sql.NullTime
		)
		if err := rows.Scan(&m.ID, &m.RoomID, &m.Sender, &m.Body, &m.CreatedAt, &readAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		m.CreatedAt = m.CreatedAt.UTC()
		if readAt.Valid {
			t := readAt.Time.UTC()
			m.ReadAt = &t
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// query is newest-first so LIMIT keeps the tail; flip to chronological
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// MarkRead stamps unread messages written by sender. Empty ids marks the whole room.
func (r *ChatSQLite) MarkRead(ctx context.Context, roomID, sender string, ids []string, at time.Time) (int64, error) {
	q := markReadBaseSQL
	args := []any{utcOrNow(at), roomID, sender}
	if len(ids) > 0 {
		q += " AND id IN (?" + strings.Repeat(", ?", len(ids)-1) + ")"
		for _, id := range ids {
			args = append(args, id)
		}
	}

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("mark chat messages read in %q: %w", roomID, err)
	}
	return res.RowsAffected()
}

func (r *ChatSQLite) DeleteMessagesBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteChatBeforeSQL, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete chat messages: %w", err)
	}
	return res.RowsAffected()
}

func (r *ChatSQLite) CountUnreadRooms(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countUnreadRoomsSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unread chat rooms: %w", err)
	}
	return n, nil
}
