package chat

import (
	"context"
	"encoding/json"

	"portfolio/internal/logger"
)

// delivery is one payload routed by the hub.
type delivery struct {
	roomID     string // "" with adminsOnly for admin-wide notices
	adminsOnly bool
	target     *Client // non-nil for a direct reply
	except     *Client
	payload    []byte
}

type subscription struct {
	client *Client
	roomID string
}

// Hub owns room membership. All maps are touched only by the Run goroutine.
type Hub struct {
	register   chan subscription
	unregister chan *Client
	deliver    chan delivery
	done       chan struct{}

	clients map[*Client]bool
	rooms   map[string]map[*Client]bool
	admins  map[*Client]bool

	log   *logger.Logger
	gauge func(delta float64)
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		register:   make(chan subscription),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, 64),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		admins:     make(map[*Client]bool),
		log:        log,
	}
}

// OnConnections installs a callback fed with +1/-1 as sockets come and go.
// Must be called before Run.
func (h *Hub) OnConnections(fn func(delta float64)) {
	h.gauge = fn
}

// Run processes hub events until ctx is canceled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return
		case s := <-h.register:
			h.add(s.client, s.roomID)
		case c := <-h.unregister:
			h.drop(c)
		case d := <-h.deliver:
			h.route(d)
		}
	}
}

// Register attaches a client. Visitors join roomID; admins see every room.
func (h *Hub) Register(c *Client, roomID string) {
	select {
	case h.register <- subscription{client: c, roomID: roomID}:
	case <-h.done:
		close(c.send)
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast sends out to every socket of the room and to every admin.
func (h *Hub) Broadcast(roomID string, out Outbound) {
	h.enqueue(delivery{roomID: roomID}, out)
}

// BroadcastExcept is Broadcast without echoing back to the origin socket.
func (h *Hub) BroadcastExcept(roomID string, origin *Client, out Outbound) {
	h.enqueue(delivery{roomID: roomID, except: origin}, out)
}

// BroadcastAdmins notifies admin sockets only.
func (h *Hub) BroadcastAdmins(out Outbound) {
	h.enqueue(delivery{adminsOnly: true}, out)
}

// SendTo replies to a single client.
func (h *Hub) SendTo(c *Client, out Outbound) {
	h.enqueue(delivery{target: c}, out)
}

func (h *Hub) enqueue(d delivery, out Outbound) {
	payload, err := json.Marshal(out)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("chat_marshal_failed", "type", out.Type, "err", err)
		}
		return
	}
	d.payload = payload
	select {
	case h.deliver <- d:
	case <-h.done:
	}
}

func (h *Hub) add(c *Client, roomID string) {
	h.clients[c] = true
	if c.admin {
		h.admins[c] = true
	} else {
		members := h.rooms[roomID]
		if members == nil {
			members = make(map[*Client]bool)
			h.rooms[roomID] = members
		}
		members[c] = true
	}
	if h.gauge != nil {
		h.gauge(1)
	}
}

func (h *Hub) drop(c *Client) {
	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	delete(h.admins, c)
	if members := h.rooms[c.roomID]; members != nil {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, c.roomID)
		}
	}
	close(c.send)
	if h.gauge != nil {
		h.gauge(-1)
	}
}

func (h *Hub) route(d delivery) {
	if d.target != nil {
		h.push(d.target, d.payload)
		return
	}
	if !d.adminsOnly {
		for c := range h.rooms[d.roomID] {
			if c != d.except {
				h.push(c, d.payload)
			}
		}
	}
	for c := range h.admins {
		if c != d.except {
			h.push(c, d.payload)
		}
	}
}

// push never blocks: a client whose buffer is full is dropped.
func (h *Hub) push(c *Client, payload []byte) {
	if !h.clients[c] {
		return
	}
	select {
	case c.send <- payload:
	default:
		if h.log != nil {
			h.log.Warnw("chat_slow_client_dropped", "room_id", c.roomID, "admin", c.admin)
		}
		h.drop(c)
	}
}
