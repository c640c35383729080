package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/internal/models"
)

func TestChat_OpenRoomCreatesOnceAndReuses(t *testing.T) {
	repo := newMemChat()
	act := &fakeActivity{}
	svc := NewChatService(repo, act, 0)
	ctx := context.Background()

	room, err := svc.OpenRoom(ctx, "", "  ")
	require.NoError(t, err)
	assert.NotEmpty(t, room.ID)
	assert.Equal(t, defaultVisitorName, room.VisitorName)

	again, err := svc.OpenRoom(ctx, room.ID, "Someone else")
	require.NoError(t, err)
	assert.Equal(t, room.ID, again.ID)
	assert.Equal(t, defaultVisitorName, again.VisitorName)

	named, err := svc.OpenRoom(ctx, "client-chosen", "Kim")
	require.NoError(t, err)
	assert.Equal(t, "client-chosen", named.ID)
	assert.Equal(t, "Kim", named.VisitorName)

	assert.Len(t, repo.rooms, 2)
	assert.Equal(t, []string{EventChatRoomOpen, EventChatRoomOpen}, act.types())
}

func TestChat_PostMessageValidation(t *testing.T) {
	repo := newMemChat()
	svc := NewChatService(repo, &fakeActivity{}, 0)
	ctx := context.Background()
	room, err := svc.OpenRoom(ctx, "r1", "Kim")
	require.NoError(t, err)

	m, err := svc.PostMessage(ctx, room.ID, models.SenderVisitor, "  hi there ")
	require.NoError(t, err)
	assert.Equal(t, "hi there", m.Body)
	assert.Equal(t, room.ID, m.RoomID)
	assert.Nil(t, m.ReadAt)

	_, err = svc.PostMessage(ctx, room.ID, "bot", "hi")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.PostMessage(ctx, room.ID, models.SenderAdmin, "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.PostMessage(ctx, room.ID, models.SenderAdmin, strings.Repeat("x", maxChatMessageLen+1))
	assert.ErrorIs(t, err, ErrInvalidInput)
	// unknown rooms are reported before the insert reaches the room foreign key
	_, err = svc.PostMessage(ctx, "nope", models.SenderAdmin, "hi")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Len(t, repo.messages, 1)
}

func TestChat_HistoryHonoursLimit(t *testing.T) {
	repo := newMemChat()
	svc := NewChatService(repo, &fakeActivity{}, 2)
	ctx := context.Background()
	_, err := svc.OpenRoom(ctx, "r1", "Kim")
	require.NoError(t, err)

	for _, body := range []string{"one", "two", "three"} {
		_, err := svc.PostMessage(ctx, "r1", models.SenderVisitor, body)
		require.NoError(t, err)
	}

	h, err := svc.History(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, "two", h[0].Body)
	assert.Equal(t, "three", h[1].Body)

	_, err = svc.History(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChat_MarkReadTargetsOtherSide(t *testing.T) {
	repo := newMemChat()
	svc := NewChatService(repo, &fakeActivity{}, 0)
	ctx := context.Background()
	_, err := svc.OpenRoom(ctx, "r1", "Kim")
	require.NoError(t, err)
	_, err = svc.PostMessage(ctx, "r1", models.SenderVisitor, "hello")
	require.NoError(t, err)
	_, err = svc.PostMessage(ctx, "r1", models.SenderAdmin, "hi!")
	require.NoError(t, err)

	at, n, err := svc.MarkRead(ctx, "r1", models.SenderAdmin, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.False(t, at.IsZero())
	assert.Equal(t, models.SenderVisitor, repo.markReadArgs.sender)

	_, _, err = svc.MarkRead(ctx, "r1", "robot", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
