package chat

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB
	sendBuffer = 32
)

// Client is one websocket attached to the hub.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	roomID string
	admin  bool
}

// NewClient wraps conn. Visitors are bound to roomID; admins pass "".
func NewClient(hub *Hub, conn *websocket.Conn, roomID string, admin bool) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		roomID: roomID,
		admin:  admin,
	}
}

func (c *Client) RoomID() string { return c.roomID }
func (c *Client) IsAdmin() bool  { return c.admin }

// ReadPump decodes inbound envelopes and hands them to handle until the socket closes.
// It unregisters the client on exit.
func (c *Client) ReadPump(handle func(*Client, Inbound)) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if c.hub.log != nil && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
		var in Inbound
		if err := json.Unmarshal(raw, &in); err != nil {
			c.hub.SendTo(c, errorEnvelope("malformed envelope"))
			continue
		}
		handle(c, in)
	}
}

// WritePump drains the send buffer and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				if c.hub.log != nil {
					c.hub.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if c.hub.log != nil {
					c.hub.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		}
	}
}
