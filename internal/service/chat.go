package service

import (
	"context"
	"time"

	"portfolio/internal/models"
	"portfolio/internal/repository"

	"github.com/google/uuid"
)

const (
	defaultChatHistory = 200
	defaultVisitorName = "Visitor"
	maxVisitorNameLen  = 80
	maxChatMessageLen  = 2000
)

type ChatService struct {
	chatRepo     repository.ChatRepo
	activity     ActivityLog
	historyLimit int
}

func NewChatService(repo repository.ChatRepo, activity ActivityLog, historyLimit int) *ChatService {
	if historyLimit <= 0 {
		historyLimit = defaultChatHistory
	}
	return &ChatService{chatRepo: repo, activity: activity, historyLimit: historyLimit}
}

// OpenRoom returns the visitor's room, creating it when roomID is empty or unknown.
func (s *ChatService) OpenRoom(ctx context.Context, roomID, visitorName string) (models.ChatRoom, error) {
	if roomID != "" {
		room, err := s.chatRepo.GetRoom(ctx, roomID)
		if err != nil {
			return models.ChatRoom{}, err
		}
		if room != nil {
			return *room, nil
		}
	} else {
		roomID = uuid.NewString()
	}

	name, err := cleanText("name", visitorName, 0, maxVisitorNameLen)
	if err != nil {
		return models.ChatRoom{}, err
	}
	if name == "" {
		name = defaultVisitorName
	}

	now := time.Now().UTC()
	room := models.ChatRoom{ID: roomID, VisitorName: name, CreatedAt: now, LastMessageAt: now}
	if err := s.chatRepo.CreateRoom(ctx, room); err != nil {
		return models.ChatRoom{}, err
	}
	s.activity.Record(ctx, EventChatRoomOpen, "chat room opened", map[string]any{"room_id": roomID, "visitor": name})
	return room, nil
}

func (s *ChatService) GetRoom(ctx context.Context, roomID string) (models.ChatRoom, error) {
	room, err := s.chatRepo.GetRoom(ctx, roomID)
	if err != nil {
		return models.ChatRoom{}, err
	}
	if room == nil {
		return models.ChatRoom{}, ErrNotFound
	}
	return *room, nil
}

func (s *ChatService) ListRooms(ctx context.Context) ([]models.ChatRoom, error) {
	return s.chatRepo.ListRooms(ctx)
}

// History returns the most recent messages of a room in chronological order.
func (s *ChatService) History(ctx context.Context, roomID string) ([]models.ChatMessage, error) {
	if _, err := s.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}
	return s.chatRepo.ListMessages(ctx, roomID, s.historyLimit)
}

// PostMessage persists a message from sender (visitor or admin) into the room.
func (s *ChatService) PostMessage(ctx context.Context, roomID, sender, body string) (models.ChatMessage, error) {
	if sender != models.SenderVisitor && sender != models.SenderAdmin {
		return models.ChatMessage{}, invalidf("unknown sender %q", sender)
	}
	text, err := cleanText("message", body, 1, maxChatMessageLen)
	if err != nil {
		return models.ChatMessage{}, err
	}
	if _, err := s.GetRoom(ctx, roomID); err != nil {
		return models.ChatMessage{}, err
	}

	m := models.ChatMessage{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		Sender:    sender,
		Body:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.chatRepo.AppendMessage(ctx, m); err != nil {
		return models.ChatMessage{}, err
	}
	return m, nil
}

// MarkRead marks the other side's messages as read by reader. Empty ids marks everything.
func (s *ChatService) MarkRead(ctx context.Context, roomID, reader string, ids []string) (time.Time, int64, error) {
	var author string
	switch reader {
	case models.SenderAdmin:
		author = models.SenderVisitor
	case models.SenderVisitor:
		author = models.SenderAdmin
	default:
		return time.Time{}, 0, invalidf("unknown reader %q", reader)
	}

	at := time.Now().UTC()
	n, err := s.chatRepo.MarkRead(ctx, roomID, author, ids, at)
	if err != nil {
		return time.Time{}, 0, err
	}
	return at, n, nil
}
