package chat

// Client → server envelope types.
const (
	TypeJoin    = "join"
	TypeMessage = "message"
	TypeRead    = "read"
	TypeTyping  = "typing"
)

// Server → client envelope types.
const (
	TypeJoined  = "joined"
	TypeHistory = "history"
	TypeRooms   = "rooms"
	TypeError   = "error"
)

// Inbound is what a socket sends to the server.
type Inbound struct {
	Type       string   `json:"type"`
	RoomID     string   `json:"room_id,omitempty"`
	Body       string   `json:"body,omitempty"`
	MessageIDs []string `json:"message_ids,omitempty"`
}

// Outbound is what the server pushes to a socket.
type Outbound struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// ReadReceipt is the payload of a "read" broadcast.
type ReadReceipt struct {
	RoomID     string   `json:"room_id"`
	Reader     string   `json:"reader"`
	MessageIDs []string `json:"message_ids,omitempty"`
	ReadAt     string   `json:"read_at"`
	Count      int64    `json:"count"`
}

// TypingNotice is the payload of a relayed "typing" event.
type TypingNotice struct {
	RoomID string `json:"room_id"`
	Sender string `json:"sender"`
}

func errorEnvelope(msg string) Outbound {
	return Outbound{Type: TypeError, Error: msg}
}
