package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/musicbares/video-queue/internal/model"
    "github.com/musicbares/video-queue/internal/scheduler"
)

// DirectoryRepo answers venue/table lookups against the venues and
// tables tables.  It satisfies scheduler.Directory and additionally
// resolves tables by their QR submission code for the patron surface.
// Venue and table management itself lives outside this service; the
// scheduler only ever asks "does this exist" and "who owns it".
type DirectoryRepo struct {
    db *sql.DB
}

// NewDirectoryRepo returns a DirectoryRepo bound to the given database.
func NewDirectoryRepo(db *sql.DB) *DirectoryRepo { return &DirectoryRepo{db: db} }

// ResolveVenueForTable returns the venue owning an active table.
// Inactive or unknown tables fail with scheduler.ErrTableNotFound so
// that disabling a table immediately stops submissions from it.
func (r *DirectoryRepo) ResolveVenueForTable(ctx context.Context, tableID uint64) (uint64, error) {
    const q = `SELECT venue_id FROM tables WHERE id = ? AND is_active = 1`
    var venueID uint64
    err := r.db.QueryRowContext(ctx, q, tableID).Scan(&venueID)
    if errors.Is(err, sql.ErrNoRows) {
        return 0, scheduler.ErrTableNotFound
    }
    if err != nil {
        return 0, err
    }
    return venueID, nil
}

// VenueExists reports whether the venue is known and active.
func (r *DirectoryRepo) VenueExists(ctx context.Context, venueID uint64) (bool, error) {
    const q = `SELECT EXISTS(SELECT 1 FROM venues WHERE id = ? AND is_active = 1)`
    var exists bool
    if err := r.db.QueryRowContext(ctx, q, venueID).Scan(&exists); err != nil {
        return false, err
    }
    return exists, nil
}

// GetTableByCode looks an active table up by the opaque code from its
// QR sticker.  Patron clients never see raw table IDs; the code is the
// only credential a submission carries.
func (r *DirectoryRepo) GetTableByCode(ctx context.Context, code string) (*model.Table, error) {
    const q = `SELECT id, venue_id, number, code, is_active FROM tables WHERE code = ? AND is_active = 1`
    var t model.Table
    err := r.db.QueryRowContext(ctx, q, code).Scan(&t.ID, &t.VenueID, &t.Number, &t.Code, &t.Active)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, scheduler.ErrTableNotFound
    }
    if err != nil {
        return nil, err
    }
    return &t, nil
}
