package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"portfolio/internal/chat"
	"portfolio/internal/models"
	"portfolio/internal/service"

	"github.com/gorilla/websocket"
)

type envelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func wsURL(t *testing.T, srv *httptest.Server, path string, q url.Values) string {
	t.Helper()
	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = path
	u.RawQuery = q.Encode()
	return u.String()
}

func dial(t *testing.T, rawURL string) *websocket.Conn {
	t.Helper()
	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(rawURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", rawURL, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readUntil skips envelopes until one of type want arrives.
func readUntil(t *testing.T, conn *websocket.Conn, want string) envelope {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		_ = conn.SetReadDeadline(deadline)
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("waiting for %q: %v", want, err)
		}
		if env.Type == want {
			return env
		}
	}
}

func newChatServer(t *testing.T) (*httptest.Server, *mockChat) {
	t.Helper()
	mc := newMockChat()
	s := &service.Service{Authorization: testTokens(), Chat: mc}
	r, stop := newHubRouter(s)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		stop()
	})
	return srv, mc
}

func TestChatWS_VisitorMessageReachesAdmin(t *testing.T) {
	srv, mc := newChatServer(t)

	admin := dial(t, wsURL(t, srv, "/ws/chat/admin", url.Values{"token": {adminToken}}))
	readUntil(t, admin, chat.TypeRooms)

	visitor := dial(t, wsURL(t, srv, "/ws/chat", url.Values{"room": {"room-x"}, "name": {"Kim"}}))
	joined := readUntil(t, visitor, chat.TypeJoined)
	var room models.ChatRoom
	if err := json.Unmarshal(joined.Data, &room); err != nil || room.ID != "room-x" {
		t.Fatalf("joined payload: %s (%v)", joined.Data, err)
	}
	readUntil(t, visitor, chat.TypeHistory)

	if err := visitor.WriteJSON(chat.Inbound{Type: chat.TypeMessage, Body: "hello owner"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	got := readUntil(t, admin, chat.TypeMessage)
	var msg models.ChatMessage
	if err := json.Unmarshal(got.Data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Body != "hello owner" || msg.Sender != models.SenderVisitor || msg.RoomID != "room-x" {
		t.Fatalf("unexpected message %+v", msg)
	}

	// echo back to the visitor as well
	readUntil(t, visitor, chat.TypeMessage)

	// admin replies and marks read; the visitor sees both
	if err := admin.WriteJSON(chat.Inbound{Type: chat.TypeMessage, RoomID: "room-x", Body: "hi!"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	reply := readUntil(t, visitor, chat.TypeMessage)
	if !strings.Contains(string(reply.Data), `"sender":"admin"`) {
		t.Fatalf("unexpected reply %s", reply.Data)
	}

	if err := admin.WriteJSON(chat.Inbound{Type: chat.TypeRead, RoomID: "room-x", MessageIDs: []string{msg.ID}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	receipt := readUntil(t, visitor, chat.TypeRead)
	var rr chat.ReadReceipt
	if err := json.Unmarshal(receipt.Data, &rr); err != nil || rr.Reader != models.SenderAdmin || rr.Count != 1 {
		t.Fatalf("unexpected receipt %s (%v)", receipt.Data, err)
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()
	if len(mc.messages) != 2 || len(mc.reads) != 1 || mc.reads[0] != "room-x:admin" {
		t.Fatalf("store state: messages=%d reads=%v", len(mc.messages), mc.reads)
	}
}

func TestChatWS_ErrorsAreReportedOnSocket(t *testing.T) {
	srv, _ := newChatServer(t)

	visitor := dial(t, wsURL(t, srv, "/ws/chat", url.Values{"name": {"Kim"}}))
	readUntil(t, visitor, chat.TypeHistory)

	_ = visitor.WriteJSON(chat.Inbound{Type: chat.TypeMessage, Body: ""})
	if env := readUntil(t, visitor, chat.TypeError); env.Error == "" {
		t.Fatalf("expected error text")
	}

	_ = visitor.WriteJSON(chat.Inbound{Type: "dance"})
	if env := readUntil(t, visitor, chat.TypeError); !strings.Contains(env.Error, "unknown type") {
		t.Fatalf("unexpected error %q", env.Error)
	}

	_ = visitor.WriteMessage(websocket.TextMessage, []byte("{not json"))
	if env := readUntil(t, visitor, chat.TypeError); env.Error != "malformed envelope" {
		t.Fatalf("unexpected error %q", env.Error)
	}

	admin := dial(t, wsURL(t, srv, "/ws/chat/admin", url.Values{"token": {adminToken}}))
	readUntil(t, admin, chat.TypeRooms)
	_ = admin.WriteJSON(chat.Inbound{Type: chat.TypeJoin})
	if env := readUntil(t, admin, chat.TypeError); env.Error != "room_id is required" {
		t.Fatalf("unexpected error %q", env.Error)
	}
	_ = admin.WriteJSON(chat.Inbound{Type: chat.TypeJoin, RoomID: "missing"})
	readUntil(t, admin, chat.TypeError)
}

func TestChatWS_AdminSocketRequiresAdminToken(t *testing.T) {
	srv, _ := newChatServer(t)
	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}

	cases := map[string]int{
		"":        http.StatusUnauthorized,
		"bogus":   http.StatusUnauthorized,
		userToken: http.StatusForbidden,
	}
	for token, want := range cases {
		_, resp, err := dialer.Dial(wsURL(t, srv, "/ws/chat/admin", url.Values{"token": {token}}), nil)
		if err == nil {
			t.Fatalf("token %q: expected handshake failure", token)
		}
		if resp == nil || resp.StatusCode != want {
			t.Fatalf("token %q: got %v, want %d", token, resp, want)
		}
	}
}

func TestChatRest_RoomsAndMessages(t *testing.T) {
	srv, mc := newChatServer(t)
	mc.rooms["r1"] = models.ChatRoom{ID: "r1", VisitorName: "Kim"}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/chat/rooms", nil)
	req.Header = authHeader(adminToken)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("rooms: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rooms status %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/chat/rooms/r1/messages")
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("messages status %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/chat/rooms/nope/messages")
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing room status %d", resp.StatusCode)
	}
}
