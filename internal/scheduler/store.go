package scheduler

import (
    "context"

    "github.com/musicbares/video-queue/internal/model"
)

// QueueStore is the durable storage collaborator for queue items.  The
// scheduler never mutates state unconditionally: StartPlayback and
// UpdateState are compare-and-swap operations that fail with
// ErrConflict when the row no longer holds the expected state, which is
// what makes concurrent TakeNext calls on a stale snapshot safe without
// any in-process lock.
type QueueStore interface {
    // Append persists a new item and populates its ID and SubmittedAt.
    Append(ctx context.Context, item *model.QueueItem) error

    // GetByID loads a single item or returns ErrItemNotFound.
    GetByID(ctx context.Context, id uint64) (*model.QueueItem, error)

    // ListActive returns the venue's Pending and Playing items.  This
    // is the snapshot the selector ranks: the Playing item still
    // occupies its table's turn, so the table that was just served
    // waits a round before being served again.  Order is not
    // significant; the selector ranks the snapshot itself.
    ListActive(ctx context.Context, venueID uint64) ([]model.QueueItem, error)

    // ListByTable returns every item ever submitted from the table in
    // submission order, regardless of state.
    ListByTable(ctx context.Context, tableID uint64) ([]model.QueueItem, error)

    // StartPlayback performs the playback handover for a venue in one
    // atomic step: the venue's currently Playing item (if any) becomes
    // Finished, and the given item moves Pending→Playing.  It returns
    // ErrConflict when the item is no longer Pending and
    // ErrItemNotFound when it does not exist.
    StartPlayback(ctx context.Context, venueID, itemID uint64) error

    // UpdateState transitions the item from exactly `from` to `to`.
    // It returns ErrConflict when the current state differs from
    // `from` and ErrItemNotFound when the item does not exist.
    UpdateState(ctx context.Context, id uint64, from, to model.State) error
}

// Directory is the external venue/table lookup collaborator.  The
// scheduler consumes only "table belongs to venue X" and "venue exists"
// facts from it; creating venues and tables is someone else's job.
type Directory interface {
    // ResolveVenueForTable returns the venue owning the table or
    // ErrTableNotFound.  Inactive tables resolve like missing ones.
    ResolveVenueForTable(ctx context.Context, tableID uint64) (uint64, error)

    // VenueExists reports whether the venue is known and active.
    VenueExists(ctx context.Context, venueID uint64) (bool, error)
}

// LinkValidator checks a submitted link and extracts the provider video
// identifier that gets denormalized onto the queue item.  Any returned
// error is surfaced by Submit as ErrInvalidPayload.
type LinkValidator interface {
    Validate(link string) (videoID string, err error)
}
