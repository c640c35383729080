package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"portfolio/internal/models"
	"portfolio/internal/repository"
)

// recordedEvent captures one ActivityLog.Record call.
type recordedEvent struct {
	typ  string
	desc string
	meta any
}

// fakeActivity is an ActivityLog that only remembers what was recorded.
type fakeActivity struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeActivity) Record(_ context.Context, typ, desc string, meta any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{typ: typ, desc: desc, meta: meta})
}

func (f *fakeActivity) List(context.Context, LogFilter) ([]models.ActivityEvent, error) {
	return nil, nil
}

func (f *fakeActivity) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.typ)
	}
	return out
}

// memGuestbook is an in-memory repository.GuestbookRepo.
type memGuestbook struct {
	entries   map[string]models.GuestbookEntry
	lastLimit int
}

func newMemGuestbook() *memGuestbook {
	return &memGuestbook{entries: map[string]models.GuestbookEntry{}}
}

func (m *memGuestbook) Create(_ context.Context, e models.GuestbookEntry) error {
	m.entries[e.ID] = e
	return nil
}

func (m *memGuestbook) Get(_ context.Context, id string) (*models.GuestbookEntry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *memGuestbook) sorted() []models.GuestbookEntry {
	out := make([]models.GuestbookEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memGuestbook) List(_ context.Context, limit int) ([]models.GuestbookEntry, error) {
	m.lastLimit = limit
	out := m.sorted()
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memGuestbook) ListNewer(_ context.Context, since time.Time, limit int) ([]models.GuestbookEntry, error) {
	m.lastLimit = limit
	var out []models.GuestbookEntry
	for _, e := range m.sorted() {
		if e.CreatedAt.After(since) {
			out = append(out, e)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memGuestbook) Update(_ context.Context, e models.GuestbookEntry) error {
	if _, ok := m.entries[e.ID]; !ok {
		return repository.ErrNotFound
	}
	m.entries[e.ID] = e
	return nil
}

func (m *memGuestbook) Delete(_ context.Context, id string) error {
	if _, ok := m.entries[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *memGuestbook) Count(context.Context) (int, error) { return len(m.entries), nil }

// memPortfolio is an in-memory repository.PortfolioRepo.
type memPortfolio struct {
	doc   models.PortfolioData
	saves int
}

func (m *memPortfolio) Save(_ context.Context, p models.PortfolioData) error {
	m.doc = p
	m.saves++
	return nil
}

func (m *memPortfolio) Load(context.Context) (models.PortfolioData, error) { return m.doc, nil }

// memLeads is an in-memory repository.LeadRepo.
type memLeads struct {
	leads map[string]models.Lead
}

func newMemLeads() *memLeads { return &memLeads{leads: map[string]models.Lead{}} }

func (m *memLeads) Create(_ context.Context, l models.Lead) error {
	m.leads[l.ID] = l
	return nil
}

func (m *memLeads) List(_ context.Context, status string) ([]models.Lead, error) {
	var out []models.Lead
	for _, l := range m.leads {
		if status == "" || l.Status == status {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memLeads) UpdateStatus(_ context.Context, id, status string) error {
	l, ok := m.leads[id]
	if !ok {
		return repository.ErrNotFound
	}
	l.Status = status
	m.leads[id] = l
	return nil
}

func (m *memLeads) Delete(_ context.Context, id string) error {
	if _, ok := m.leads[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.leads, id)
	return nil
}

func (m *memLeads) CountByStatus(_ context.Context, status string) (int, error) {
	n := 0
	for _, l := range m.leads {
		if status == "" || l.Status == status {
			n++
		}
	}
	return n, nil
}

// memReports is an in-memory repository.ReportRepo.
type memReports struct {
	reports map[string]models.Report
}

func newMemReports() *memReports { return &memReports{reports: map[string]models.Report{}} }

func (m *memReports) Create(_ context.Context, r models.Report) error {
	m.reports[r.ID] = r
	return nil
}

func (m *memReports) List(_ context.Context, status string) ([]models.Report, error) {
	var out []models.Report
	for _, r := range m.reports {
		if status == "" || r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memReports) UpdateStatus(_ context.Context, id, status string, at time.Time) error {
	r, ok := m.reports[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.Status = status
	r.UpdatedAt = at
	m.reports[id] = r
	return nil
}

func (m *memReports) Delete(_ context.Context, id string) error {
	if _, ok := m.reports[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.reports, id)
	return nil
}

func (m *memReports) CountByStatus(_ context.Context, status string) (int, error) {
	n := 0
	for _, r := range m.reports {
		if status == "" || r.Status == status {
			n++
		}
	}
	return n, nil
}

// memChat is an in-memory repository.ChatRepo.
type memChat struct {
	rooms    map[string]models.ChatRoom
	messages []models.ChatMessage

	markReadArgs struct {
		roomID, sender string
		ids            []string
	}
	deletedBefore time.Time
	deleteCalls   int
}

func newMemChat() *memChat { return &memChat{rooms: map[string]models.ChatRoom{}} }

func (m *memChat) CreateRoom(_ context.Context, r models.ChatRoom) error {
	m.rooms[r.ID] = r
	return nil
}

func (m *memChat) GetRoom(_ context.Context, id string) (*models.ChatRoom, error) {
	r, ok := m.rooms[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *memChat) ListRooms(context.Context) ([]models.ChatRoom, error) {
	out := make([]models.ChatRoom, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	return out, nil
}

func (m *memChat) AppendMessage(_ context.Context, msg models.ChatMessage) error {
	r, ok := m.rooms[msg.RoomID]
	if !ok {
		// sqlite rejects the insert on the room foreign key
		return errors.New("insert chat message: FOREIGN KEY constraint failed")
	}
	r.LastMessageAt = msg.CreatedAt
	m.rooms[msg.RoomID] = r
	m.messages = append(m.messages, msg)
	return nil
}

func (m *memChat) ListMessages(_ context.Context, roomID string, limit int) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	for _, msg := range m.messages {
		if msg.RoomID == roomID {
			out = append(out, msg)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (m *memChat) MarkRead(_ context.Context, roomID, sender string, ids []string, at time.Time) (int64, error) {
	m.markReadArgs.roomID, m.markReadArgs.sender, m.markReadArgs.ids = roomID, sender, ids
	var n int64
	for i := range m.messages {
		msg := &m.messages[i]
		if msg.RoomID == roomID && msg.Sender == sender && msg.ReadAt == nil {
			t := at
			msg.ReadAt = &t
			n++
		}
	}
	return n, nil
}

func (m *memChat) DeleteMessagesBefore(_ context.Context, before time.Time) (int64, error) {
	m.deleteCalls++
	m.deletedBefore = before
	return 0, nil
}

func (m *memChat) CountUnreadRooms(context.Context) (int, error) { return 0, nil }

// memActivity is an in-memory repository.ActivityRepo.
type memActivity struct {
	gotFrom, gotTo time.Time
	gotType        string
	events         []models.ActivityEvent
	err            error
	listCalls      int
	appended       []models.ActivityEvent

	deletedBefore time.Time
	deleteCalls   int
}

func (m *memActivity) Append(_ context.Context, e models.ActivityEvent) error {
	if m.err != nil {
		return m.err
	}
	m.appended = append(m.appended, e)
	return nil
}

func (m *memActivity) List(_ context.Context, from, to time.Time, typ string) ([]models.ActivityEvent, error) {
	m.listCalls++
	m.gotFrom, m.gotTo, m.gotType = from, to, typ
	return m.events, m.err
}

func (m *memActivity) DeleteBefore(_ context.Context, before time.Time) (int64, error) {
	m.deleteCalls++
	m.deletedBefore = before
	return 3, nil
}
