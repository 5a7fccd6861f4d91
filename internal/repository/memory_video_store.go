package repository

import (
    "context"
    "sort"
    "sync"
    "time"

    "github.com/musicbares/video-queue/internal/model"
    "github.com/musicbares/video-queue/internal/scheduler"
)

// MemoryVideoStore is an in-memory scheduler.QueueStore with the same
// conditional-update semantics as VideoRepo.  It backs the service
// tests, including the concurrent ones: every state change goes through
// the same compare-and-swap discipline as the MySQL implementation, so
// races observable against MySQL are observable here too.
type MemoryVideoStore struct {
    mu     sync.Mutex
    nextID uint64
    items  map[uint64]*model.QueueItem
}

// NewMemoryVideoStore returns an empty in-memory store.
func NewMemoryVideoStore() *MemoryVideoStore {
    return &MemoryVideoStore{items: make(map[uint64]*model.QueueItem)}
}

// Append assigns the next ID and a UTC submission timestamp.  IDs are
// monotonic, which keeps per-table submission order total even when two
// appends share a wall-clock instant.
func (s *MemoryVideoStore) Append(_ context.Context, item *model.QueueItem) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.nextID++
    item.ID = s.nextID
    if item.SubmittedAt.IsZero() {
        item.SubmittedAt = time.Now().UTC()
    }
    cp := *item
    s.items[item.ID] = &cp
    return nil
}

// GetByID returns a copy of the item or scheduler.ErrItemNotFound.
func (s *MemoryVideoStore) GetByID(_ context.Context, id uint64) (*model.QueueItem, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    it, ok := s.items[id]
    if !ok {
        return nil, scheduler.ErrItemNotFound
    }
    cp := *it
    return &cp, nil
}

// ListActive returns copies of the venue's Pending and Playing items
// ordered by submission time, then ID.
func (s *MemoryVideoStore) ListActive(_ context.Context, venueID uint64) ([]model.QueueItem, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := make([]model.QueueItem, 0)
    for _, it := range s.items {
        if it.VenueID == venueID && (it.State == model.StatePending || it.State == model.StatePlaying) {
            out = append(out, *it)
        }
    }
    sortBySubmission(out)
    return out, nil
}

// ListByTable returns copies of everything the table submitted.
func (s *MemoryVideoStore) ListByTable(_ context.Context, tableID uint64) ([]model.QueueItem, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := make([]model.QueueItem, 0)
    for _, it := range s.items {
        if it.TableID == tableID {
            out = append(out, *it)
        }
    }
    sortBySubmission(out)
    return out, nil
}

// StartPlayback mirrors VideoRepo.StartPlayback: finish the venue's
// current Playing item, then promote the target only if still Pending.
func (s *MemoryVideoStore) StartPlayback(_ context.Context, venueID, itemID uint64) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    target, ok := s.items[itemID]
    if !ok {
        return scheduler.ErrItemNotFound
    }
    if target.State != model.StatePending {
        return scheduler.ErrConflict
    }
    for _, it := range s.items {
        if it.VenueID == venueID && it.State == model.StatePlaying && it.ID != itemID {
            it.State = model.StateFinished
        }
    }
    target.State = model.StatePlaying
    return nil
}

// UpdateState swaps the state only when it still matches `from`.
func (s *MemoryVideoStore) UpdateState(_ context.Context, id uint64, from, to model.State) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    it, ok := s.items[id]
    if !ok {
        return scheduler.ErrItemNotFound
    }
    if it.State != from {
        return scheduler.ErrConflict
    }
    it.State = to
    return nil
}

func sortBySubmission(items []model.QueueItem) {
    sort.SliceStable(items, func(i, j int) bool {
        if !items[i].SubmittedAt.Equal(items[j].SubmittedAt) {
            return items[i].SubmittedAt.Before(items[j].SubmittedAt)
        }
        return items[i].ID < items[j].ID
    })
}
