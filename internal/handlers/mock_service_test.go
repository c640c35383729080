package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"portfolio/internal/chat"
	"portfolio/internal/models"
	"portfolio/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpUser    models.User
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       service.Identity
	parseErr      error
	user          models.User
	userErr       error
	updateErr     error
	deleteErr     error

	lastSignUp      service.SignUpInput
	lastGenUsername string
	lastGenPassword string
	lastParseToken  string
	lastUpdate      service.UserUpdate
	lastUserID      int
}

func (m *mockAuth) SignUp(_ context.Context, in service.SignUpInput) (models.User, error) {
	m.lastSignUp = in
	return m.signUpUser, m.signUpErr
}
func (m *mockAuth) GenerateToken(_ context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (service.Identity, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}
func (m *mockAuth) Authenticate(_ context.Context, token string) (service.Identity, error) {
	return m.ParseToken(token)
}
func (m *mockAuth) GetUser(_ context.Context, id int) (models.User, error) {
	m.lastUserID = id
	return m.user, m.userErr
}
func (m *mockAuth) ListUsers(context.Context) ([]models.User, error) {
	return []models.User{m.user}, m.userErr
}
func (m *mockAuth) UpdateUser(_ context.Context, id int, in service.UserUpdate) (models.User, error) {
	m.lastUserID = id
	m.lastUpdate = in
	return m.user, m.updateErr
}
func (m *mockAuth) DeleteUser(_ context.Context, id int) error {
	m.lastUserID = id
	return m.deleteErr
}

// tokens maps bearer tokens to identities for route-level tests.
type tokenAuth struct {
	mockAuth
	tokens map[string]service.Identity
}

func (m *tokenAuth) ParseToken(token string) (service.Identity, error) {
	id, ok := m.tokens[token]
	if !ok {
		return service.Identity{}, service.ErrInvalidToken
	}
	return id, nil
}

func (m *tokenAuth) Authenticate(_ context.Context, token string) (service.Identity, error) {
	return m.ParseToken(token)
}

type mockPortfolio struct {
	doc     models.PortfolioData
	err     error
	saved   models.PortfolioData
	saveErr error
}

func (m *mockPortfolio) Get(context.Context) (models.PortfolioData, error) { return m.doc, m.err }
func (m *mockPortfolio) Save(_ context.Context, p models.PortfolioData) (models.PortfolioData, error) {
	m.saved = p
	return p, m.saveErr
}

type mockGuestbook struct {
	entries   []models.GuestbookEntry
	err       error
	lastLimit int
	lastSince time.Time
	lastInput service.GuestbookInput
	lastActor service.Identity
	lastID    string
}

func (m *mockGuestbook) List(_ context.Context, limit int) ([]models.GuestbookEntry, error) {
	m.lastLimit = limit
	return m.entries, m.err
}
func (m *mockGuestbook) ListNewer(_ context.Context, since time.Time, limit int) ([]models.GuestbookEntry, error) {
	m.lastSince = since
	m.lastLimit = limit
	return m.entries, m.err
}
func (m *mockGuestbook) Create(_ context.Context, in service.GuestbookInput, author service.Identity) (models.GuestbookEntry, error) {
	m.lastInput = in
	m.lastActor = author
	return models.GuestbookEntry{ID: "g1", Name: in.Name, Message: in.Message, UserID: author.UserID}, m.err
}
func (m *mockGuestbook) Update(_ context.Context, id string, in service.GuestbookInput, actor service.Identity) (models.GuestbookEntry, error) {
	m.lastID = id
	m.lastInput = in
	m.lastActor = actor
	return models.GuestbookEntry{ID: id, Message: in.Message}, m.err
}
func (m *mockGuestbook) Delete(_ context.Context, id string, actor service.Identity) error {
	m.lastID = id
	m.lastActor = actor
	return m.err
}

type mockLeads struct {
	err        error
	lastInput  service.LeadInput
	lastStatus string
	lastID     string
}

func (m *mockLeads) Create(_ context.Context, in service.LeadInput) (models.Lead, error) {
	m.lastInput = in
	return models.Lead{ID: "l1", Name: in.Name, Email: in.Email, Status: models.LeadStatusNew}, m.err
}
func (m *mockLeads) List(_ context.Context, status string) ([]models.Lead, error) {
	m.lastStatus = status
	return []models.Lead{{ID: "l1"}}, m.err
}
func (m *mockLeads) SetStatus(_ context.Context, id, status string) error {
	m.lastID, m.lastStatus = id, status
	return m.err
}
func (m *mockLeads) Delete(_ context.Context, id string) error {
	m.lastID = id
	return m.err
}

type mockReports struct {
	err        error
	lastInput  service.ReportInput
	lastStatus string
	lastID     string
}

func (m *mockReports) Create(_ context.Context, in service.ReportInput) (models.Report, error) {
	m.lastInput = in
	return models.Report{ID: "r1", Type: in.Type, Status: models.ReportStatusOpen}, m.err
}
func (m *mockReports) List(_ context.Context, status string) ([]models.Report, error) {
	m.lastStatus = status
	return []models.Report{{ID: "r1"}}, m.err
}
func (m *mockReports) SetStatus(_ context.Context, id, status string) error {
	m.lastID, m.lastStatus = id, status
	return m.err
}
func (m *mockReports) Delete(_ context.Context, id string) error {
	m.lastID = id
	return m.err
}

// mockChat keeps rooms and messages in memory, guarded for use from socket goroutines.
type mockChat struct {
	mu       sync.Mutex
	rooms    map[string]models.ChatRoom
	messages []models.ChatMessage
	reads    []string
}

func newMockChat() *mockChat { return &mockChat{rooms: map[string]models.ChatRoom{}} }

func (m *mockChat) OpenRoom(_ context.Context, roomID, name string) (models.ChatRoom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rooms[roomID]; ok {
		return r, nil
	}
	if roomID == "" {
		roomID = "room-1"
	}
	r := models.ChatRoom{ID: roomID, VisitorName: name}
	m.rooms[roomID] = r
	return r, nil
}
func (m *mockChat) GetRoom(_ context.Context, roomID string) (models.ChatRoom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[roomID]
	if !ok {
		return models.ChatRoom{}, service.ErrNotFound
	}
	return r, nil
}
func (m *mockChat) ListRooms(context.Context) ([]models.ChatRoom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ChatRoom, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	return out, nil
}
func (m *mockChat) History(_ context.Context, roomID string) ([]models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[roomID]; !ok {
		return nil, service.ErrNotFound
	}
	out := []models.ChatMessage{}
	for _, msg := range m.messages {
		if msg.RoomID == roomID {
			out = append(out, msg)
		}
	}
	return out, nil
}
func (m *mockChat) PostMessage(_ context.Context, roomID, sender, body string) (models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if body == "" {
		return models.ChatMessage{}, service.ErrInvalidInput
	}
	msg := models.ChatMessage{ID: "m" + string(rune('0'+len(m.messages))), RoomID: roomID, Sender: sender, Body: body}
	m.messages = append(m.messages, msg)
	return msg, nil
}
func (m *mockChat) MarkRead(_ context.Context, roomID, reader string, ids []string) (time.Time, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads = append(m.reads, roomID+":"+reader)
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), int64(len(ids)), nil
}

type mockActivity struct {
	resp     []models.ActivityEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockActivity) Record(context.Context, string, string, any) {}
func (m *mockActivity) List(_ context.Context, f service.LogFilter) ([]models.ActivityEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

type mockStats struct {
	stats models.DashboardStats
	err   error
}

func (m *mockStats) Dashboard(context.Context) (models.DashboardStats, error) { return m.stats, m.err }

// ---- Shared Test Helpers ----

const (
	adminToken = "admin-token"
	userToken  = "user-token"
)

// testTokens is the identity table shared by route-level tests.
func testTokens() *tokenAuth {
	return &tokenAuth{tokens: map[string]service.Identity{
		adminToken: {UserID: 1, Role: models.RoleAdmin},
		userToken:  {UserID: 2, Role: models.RoleUser},
	}}
}

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, nil, Options{})
	return h.InitRoutes()
}

// newHubRouter also runs a chat hub for websocket tests.
func newHubRouter(s *service.Service) (*gin.Engine, func()) {
	gin.SetMode(gin.TestMode)
	hub := chat.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	h := NewHandler(s, hub, nil, Options{})
	return h.InitRoutes(), cancel
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
