package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"portfolio/internal/chat"
	"portfolio/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// wsOpTimeout bounds each store call made on behalf of a socket message.
const wsOpTimeout = 5 * time.Second

func (h *Handler) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{CheckOrigin: h.checkOrigin}
}

// checkOrigin accepts non-browser clients and the configured CORS origins.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.opts.AllowedOrigins) == 0 {
		return true
	}
	for _, o := range h.opts.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// @Summary  Visitor chat socket
// @Tags     chat
// @Param    room  query  string  false  "existing room id; omitted opens a new room"
// @Param    name  query  string  false  "visitor display name"
// @Success  101
// @Router   /ws/chat [get]
func (h *Handler) wsVisitor(c *gin.Context) {
	ctx := c.Request.Context()
	room, err := h.services.Chat.OpenRoom(ctx, c.Query("room"), c.Query("name"))
	if err != nil {
		h.respondError(c, "chat_open_room_failed", err)
		return
	}
	history, err := h.services.Chat.History(ctx, room.ID)
	if err != nil {
		h.respondError(c, "chat_history_failed", err, "room_id", room.ID)
		return
	}

	conn, err := h.upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}

	client := chat.NewClient(h.hub, conn, room.ID, false)
	h.hub.Register(client, room.ID)
	go client.WritePump()

	h.hub.SendTo(client, chat.Outbound{Type: chat.TypeJoined, Data: room})
	h.hub.SendTo(client, chat.Outbound{Type: chat.TypeHistory, Data: history})
	h.pushRooms()

	client.ReadPump(h.dispatch)
}

// @Summary  Admin chat socket (sees every room)
// @Tags     chat
// @Param    token  query  string  true  "admin JWT"
// @Success  101
// @Failure  401  {object}  map[string]string
// @Failure  403  {object}  map[string]string
// @Router   /ws/chat/admin [get]
func (h *Handler) wsAdmin(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token, _ = bearerToken(c.GetHeader("Authorization"))
	}
	id, err := h.services.Authenticate(c.Request.Context(), token)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			h.respondError(c, "auth_lookup_failed", err)
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}
	if !id.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin only"})
		return
	}
	rooms, err := h.services.Chat.ListRooms(c.Request.Context())
	if err != nil {
		h.respondError(c, "chat_rooms_failed", err)
		return
	}

	conn, err := h.upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}

	client := chat.NewClient(h.hub, conn, "", true)
	h.hub.Register(client, "")
	go client.WritePump()

	h.hub.SendTo(client, chat.Outbound{Type: chat.TypeRooms, Data: rooms})

	client.ReadPump(h.dispatch)
}

// dispatch handles one inbound envelope. Visitors are pinned to their room; admins name it.
func (h *Handler) dispatch(client *chat.Client, in chat.Inbound) {
	ctx, cancel := context.WithTimeout(context.Background(), wsOpTimeout)
	defer cancel()

	sender := models.SenderVisitor
	roomID := client.RoomID()
	if client.IsAdmin() {
		sender = models.SenderAdmin
		roomID = in.RoomID
		if roomID == "" {
			h.hub.SendTo(client, chat.Outbound{Type: chat.TypeError, Error: "room_id is required"})
			return
		}
	}

	switch in.Type {
	case chat.TypeJoin:
		room, err := h.services.Chat.GetRoom(ctx, roomID)
		if err != nil {
			h.wsError(client, "chat_join_failed", err)
			return
		}
		history, err := h.services.Chat.History(ctx, roomID)
		if err != nil {
			h.wsError(client, "chat_history_failed", err)
			return
		}
		h.hub.SendTo(client, chat.Outbound{Type: chat.TypeJoined, Data: room})
		h.hub.SendTo(client, chat.Outbound{Type: chat.TypeHistory, Data: history})

	case chat.TypeMessage:
		msg, err := h.services.Chat.PostMessage(ctx, roomID, sender, in.Body)
		if err != nil {
			h.wsError(client, "chat_post_failed", err)
			return
		}
		h.hub.Broadcast(roomID, chat.Outbound{Type: chat.TypeMessage, Data: msg})
		h.pushRooms()

	case chat.TypeRead:
		at, n, err := h.services.Chat.MarkRead(ctx, roomID, sender, in.MessageIDs)
		if err != nil {
			h.wsError(client, "chat_read_failed", err)
			return
		}
		h.hub.Broadcast(roomID, chat.Outbound{Type: chat.TypeRead, Data: chat.ReadReceipt{
			RoomID:     roomID,
			Reader:     sender,
			MessageIDs: in.MessageIDs,
			ReadAt:     at.Format(time.RFC3339Nano),
			Count:      n,
		}})

	case chat.TypeTyping:
		h.hub.BroadcastExcept(roomID, client, chat.Outbound{Type: chat.TypeTyping, Data: chat.TypingNotice{
			RoomID: roomID,
			Sender: sender,
		}})

	default:
		h.hub.SendTo(client, chat.Outbound{Type: chat.TypeError, Error: "unknown type " + in.Type})
	}
}

// wsError reports a failure to the socket, hiding internal errors.
func (h *Handler) wsError(client *chat.Client, logKey string, err error) {
	msg := err.Error()
	if statusFor(err) == http.StatusInternalServerError {
		if h.log != nil {
			h.log.Errorw(logKey, "room_id", client.RoomID(), "err", err)
		}
		msg = errInternal
	}
	h.hub.SendTo(client, chat.Outbound{Type: chat.TypeError, Error: msg})
}

// pushRooms refreshes the room list on every admin socket.
func (h *Handler) pushRooms() {
	ctx, cancel := context.WithTimeout(context.Background(), wsOpTimeout)
	defer cancel()
	rooms, err := h.services.Chat.ListRooms(ctx)
	if err != nil {
		if h.log != nil && !errors.Is(err, context.Canceled) {
			h.log.Errorw("chat_rooms_failed", "err", err)
		}
		return
	}
	h.hub.BroadcastAdmins(chat.Outbound{Type: chat.TypeRooms, Data: rooms})
}

// @Summary   List chat rooms
// @Tags      chat
// @Produce   json
// @Success   200  {array}   models.ChatRoom
// @Router    /api/chat/rooms [get]
// @Security  BearerAuth
func (h *Handler) listChatRooms(c *gin.Context) {
	rooms, err := h.services.Chat.ListRooms(c.Request.Context())
	if err != nil {
		h.respondError(c, "chat_rooms_failed", err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// @Summary  Messages of a room
// @Tags     chat
// @Produce  json
// @Param    id   path      string  true  "room id"
// @Success  200  {array}   models.ChatMessage
// @Failure  404  {object}  map[string]string
// @Router   /api/chat/rooms/{id}/messages [get]
func (h *Handler) listChatMessages(c *gin.Context) {
	id := c.Param("id")
	msgs, err := h.services.Chat.History(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "chat_messages_failed", err, "room_id", id)
		return
	}
	c.JSON(http.StatusOK, msgs)
}
