package client

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"portfolio/internal/logger"
	"portfolio/internal/models"
)

const (
	tempPrefix = "temp-"

	// DefaultFullSyncEvery is how many poll ticks pass between full list syncs.
	DefaultFullSyncEvery = 10

	// NewerPageSize matches the server's default listing limit.
	NewerPageSize = 50
)

// Source is what a Feed reads from. *Client satisfies it.
type Source interface {
	ListGuestbook(ctx context.Context, limit int) ([]models.GuestbookEntry, error)
	ListGuestbookNewer(ctx context.Context, since time.Time, limit int) ([]models.GuestbookEntry, error)
}

// Feed is a locally held guestbook list kept in sync with the server.
// Entries whose id starts with "temp-" were added optimistically and are
// not yet confirmed.
type Feed struct {
	src           Source
	log           *logger.Logger
	fullSyncEvery int

	mu      sync.Mutex
	entries []models.GuestbookEntry
}

// NewFeed builds an empty feed. fullSyncEvery <= 0 uses DefaultFullSyncEvery.
func NewFeed(src Source, fullSyncEvery int, log *logger.Logger) *Feed {
	if fullSyncEvery <= 0 {
		fullSyncEvery = DefaultFullSyncEvery
	}
	return &Feed{src: src, log: log, fullSyncEvery: fullSyncEvery}
}

// IsTemp reports whether id belongs to an unconfirmed entry.
func IsTemp(id string) bool {
	return strings.HasPrefix(id, tempPrefix)
}

// Entries returns a copy of the visible list.
func (f *Feed) Entries() []models.GuestbookEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.GuestbookEntry, len(f.entries))
	copy(out, f.entries)
	return out
}

// AddOptimistic shows an entry before the server has accepted it.
func (f *Feed) AddOptimistic(name, message string) models.GuestbookEntry {
	now := time.Now().UTC()
	e := models.GuestbookEntry{
		ID:        tempPrefix + uuid.NewString(),
		Name:      name,
		Message:   message,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.mu.Lock()
	f.entries = append(f.entries, e)
	sortEntries(f.entries)
	f.mu.Unlock()
	return e
}

// Confirm replaces the temporary entry with the one the server stored.
// If polling already delivered the server entry it is not duplicated.
func (f *Feed) Confirm(tempID string, entry models.GuestbookEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = removeID(f.entries, tempID)
	f.entries = removeID(f.entries, entry.ID)
	f.entries = append(f.entries, entry)
	sortEntries(f.entries)
}

// Rollback drops a temporary entry after a failed post.
func (f *Feed) Rollback(tempID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.entries)
	f.entries = removeID(f.entries, tempID)
	return len(f.entries) != n
}

// Merge applies a full server listing. Entries missing from it are dropped,
// except temporary ones which stay until confirmed or rolled back.
func (f *Feed) Merge(server []models.GuestbookEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()

	seen := make(map[string]struct{}, len(server))
	merged := make([]models.GuestbookEntry, 0, len(server)+len(f.entries))
	for _, e := range server {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		merged = append(merged, e)
	}
	for _, e := range f.entries {
		if IsTemp(e.ID) {
			merged = append(merged, e)
		}
	}
	sortEntries(merged)
	f.entries = merged
}

// MergeNewer adds entries not yet present and never removes anything.
func (f *Feed) MergeNewer(server []models.GuestbookEntry) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	have := make(map[string]struct{}, len(f.entries))
	for _, e := range f.entries {
		have[e.ID] = struct{}{}
	}
	added := 0
	for _, e := range server {
		if _, ok := have[e.ID]; ok {
			continue
		}
		have[e.ID] = struct{}{}
		f.entries = append(f.entries, e)
		added++
	}
	if added > 0 {
		sortEntries(f.entries)
	}
	return added
}

// Latest is the newest created_at among confirmed entries, zero if none.
func (f *Feed) Latest() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest time.Time
	for _, e := range f.entries {
		if !IsTemp(e.ID) && e.CreatedAt.After(latest) {
			latest = e.CreatedAt
		}
	}
	return latest
}

// Sync runs a full listing and merges it.
func (f *Feed) Sync(ctx context.Context) error {
	entries, err := f.src.ListGuestbook(ctx, 0)
	if err != nil {
		return err
	}
	f.Merge(entries)
	return nil
}

// Poll fetches newer entries every interval until ctx is cancelled. Every
// fullSyncEvery ticks, and whenever the feed holds no confirmed entry, it
// runs a full sync instead so deletions are picked up. Fetch errors are
// logged and polling continues.
func (f *Feed) Poll(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for tick := 1; ; tick++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := f.pollOnce(ctx, tick); err != nil && ctx.Err() == nil && f.log != nil {
				f.log.Warnw("guestbook_poll_failed", "tick", tick, "err", err)
			}
		}
	}
}

func (f *Feed) pollOnce(ctx context.Context, tick int) error {
	latest := f.Latest()
	if latest.IsZero() || tick%f.fullSyncEvery == 0 {
		return f.Sync(ctx)
	}
	return f.fetchNewer(ctx, latest)
}

// fetchNewer pages forward from since until the server returns a short page.
func (f *Feed) fetchNewer(ctx context.Context, since time.Time) error {
	for {
		entries, err := f.src.ListGuestbookNewer(ctx, since, NewerPageSize)
		if err != nil {
			return err
		}
		f.MergeNewer(entries)
		if len(entries) < NewerPageSize {
			return nil
		}
		next := newest(entries)
		if !next.After(since) {
			return nil
		}
		since = next
	}
}

func newest(entries []models.GuestbookEntry) time.Time {
	var t time.Time
	for _, e := range entries {
		if e.CreatedAt.After(t) {
			t = e.CreatedAt
		}
	}
	return t
}

func removeID(entries []models.GuestbookEntry, id string) []models.GuestbookEntry {
	out := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

// sortEntries orders newest first, with id descending as the tiebreak.
func sortEntries(entries []models.GuestbookEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].ID > entries[j].ID
	})
}
