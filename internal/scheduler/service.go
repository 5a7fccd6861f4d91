package scheduler

import (
    "context"
    "errors"
    "fmt"

    "github.com/musicbares/video-queue/internal/model"
)

// maxAttempts bounds how often an operation is retried after a store
// reports ErrConflict.  Conflicts come from benign races between
// concurrent callers, so a fresh snapshot usually succeeds on the next
// try; anything that still conflicts after this many rounds is
// surfaced to the caller.
const maxAttempts = 3

// Service orchestrates submissions and playback transitions against the
// queue store, the venue/table directory and the link validator.  It is
// safe for concurrent use from any number of goroutines or server
// instances sharing one store: the serialization point is the store's
// conditional updates, not an in-process lock.
type Service struct {
    store QueueStore
    dir   Directory
    links LinkValidator
}

// New constructs a Service.  All collaborators must be non-nil.
func New(store QueueStore, dir Directory, links LinkValidator) *Service {
    if store == nil || dir == nil || links == nil {
        panic("nil collaborator passed to scheduler.New")
    }
    return &Service{store: store, dir: dir, links: links}
}

// Submit validates the link, resolves the venue owning the table and
// appends a Pending item to the queue.  The returned item carries the
// IDs and timestamp assigned by the store.  Nothing is appended when
// validation or the table lookup fails.
func (s *Service) Submit(ctx context.Context, tableID uint64, link string) (*model.QueueItem, error) {
    videoID, err := s.links.Validate(link)
    if err != nil {
        return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
    }
    venueID, err := s.dir.ResolveVenueForTable(ctx, tableID)
    if err != nil {
        return nil, err
    }
    item := &model.QueueItem{
        TableID:   tableID,
        VenueID:   venueID,
        Link:      link,
        YouTubeID: videoID,
        State:     model.StatePending,
    }
    if err := s.store.Append(ctx, item); err != nil {
        return nil, err
    }
    return item, nil
}

// TakeNext picks the venue's fair next video and transitions it to
// Playing in one atomic step, finishing whatever was playing before.
// Two concurrent calls can never both receive the same item: the loser
// of the conditional update gets ErrConflict from the store and retries
// against a freshly recomputed selection.  An empty queue yields
// ErrNoneAvailable rather than waiting.
func (s *Service) TakeNext(ctx context.Context, venueID uint64) (*model.QueueItem, error) {
    if err := s.requireVenue(ctx, venueID); err != nil {
        return nil, err
    }
    for attempt := 0; attempt < maxAttempts; attempt++ {
        // The snapshot includes the Playing item so the table it came
        // from keeps its turn occupied until playback ends.
        active, err := s.store.ListActive(ctx, venueID)
        if err != nil {
            return nil, err
        }
        next, ok := SelectNext(active)
        if !ok {
            return nil, ErrNoneAvailable
        }
        err = s.store.StartPlayback(ctx, venueID, next.ID)
        if errors.Is(err, ErrConflict) {
            continue // someone else took it; reselect
        }
        if err != nil {
            return nil, err
        }
        next.State = model.StatePlaying
        return &next, nil
    }
    return nil, ErrConflict
}

// PeekQueue returns the venue's full fairness-ordered pending queue,
// the "what's coming up" view.  It is read-only; repeated calls with no
// interleaved mutation return the same order.
func (s *Service) PeekQueue(ctx context.Context, venueID uint64) ([]model.QueueItem, error) {
    if err := s.requireVenue(ctx, venueID); err != nil {
        return nil, err
    }
    active, err := s.store.ListActive(ctx, venueID)
    if err != nil {
        return nil, err
    }
    return Rank(active), nil
}

// MarkPlaying forces a specific item onto the venue's output, out of
// fairness order.  Calling it on an item that is already Playing is a
// no-op success, so a retrying caller cannot double-count a play; on a
// Finished or Removed item it fails with ErrInvalidTransition.
func (s *Service) MarkPlaying(ctx context.Context, itemID uint64) error {
    for attempt := 0; attempt < maxAttempts; attempt++ {
        item, err := s.store.GetByID(ctx, itemID)
        if err != nil {
            return err
        }
        if item.State == model.StatePlaying {
            return nil
        }
        if !CanTransition(item.State, model.StatePlaying) {
            return ErrInvalidTransition
        }
        err = s.store.StartPlayback(ctx, item.VenueID, item.ID)
        if errors.Is(err, ErrConflict) {
            continue
        }
        return err
    }
    return ErrConflict
}

// Complete records that the Playing item finished, freeing the venue's
// output without starting another video.
func (s *Service) Complete(ctx context.Context, itemID uint64) error {
    return s.transitionTo(ctx, itemID, model.StateFinished)
}

// Remove deletes an item from the queue.  Pending items vanish from the
// fairness computation; removing the Playing item cancels active
// playback.  Removing an already-terminal item is rejected.
func (s *Service) Remove(ctx context.Context, itemID uint64) error {
    return s.transitionTo(ctx, itemID, model.StateRemoved)
}

// Get loads a single queue item by ID.
func (s *Service) Get(ctx context.Context, itemID uint64) (*model.QueueItem, error) {
    return s.store.GetByID(ctx, itemID)
}

// ListByTable returns everything a table has submitted, in submission
// order, across all states.  Unknown tables fail with ErrTableNotFound
// so an empty history is distinguishable from a bad table ID.
func (s *Service) ListByTable(ctx context.Context, tableID uint64) ([]model.QueueItem, error) {
    if _, err := s.dir.ResolveVenueForTable(ctx, tableID); err != nil {
        return nil, err
    }
    return s.store.ListByTable(ctx, tableID)
}

// transitionTo moves an item to a terminal state through a conditional
// update, retrying when a concurrent caller changed the row between the
// read and the swap.
func (s *Service) transitionTo(ctx context.Context, itemID uint64, to model.State) error {
    for attempt := 0; attempt < maxAttempts; attempt++ {
        item, err := s.store.GetByID(ctx, itemID)
        if err != nil {
            return err
        }
        if !CanTransition(item.State, to) {
            return ErrInvalidTransition
        }
        err = s.store.UpdateState(ctx, item.ID, item.State, to)
        if errors.Is(err, ErrConflict) {
            continue
        }
        return err
    }
    return ErrConflict
}

func (s *Service) requireVenue(ctx context.Context, venueID uint64) error {
    ok, err := s.dir.VenueExists(ctx, venueID)
    if err != nil {
        return err
    }
    if !ok {
        return ErrVenueNotFound
    }
    return nil
}
