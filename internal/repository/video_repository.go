// Package repository implements the scheduler's storage and directory
// collaborators on MySQL.  State changes are written as conditional
// updates ("set Playing only if still Pending") so that concurrent
// callers racing on a stale snapshot lose cleanly with a conflict
// instead of double-serving a video; there is deliberately no
// unconditional UPDATE of a queue item's state anywhere in this file.
package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/musicbares/video-queue/internal/model"
    "github.com/musicbares/video-queue/internal/scheduler"
)

// VideoRepo provides access to the videos table.  It satisfies
// scheduler.QueueStore.  All timestamps are stored in UTC with
// microsecond precision; together with the auto-increment ID this
// keeps the per-table submission order total even when two inserts
// land on the same microsecond.
type VideoRepo struct {
    db *sql.DB
}

// NewVideoRepo returns a VideoRepo bound to the given database.
func NewVideoRepo(db *sql.DB) *VideoRepo { return &VideoRepo{db: db} }

const videoColumns = `id, table_id, venue_id, link, youtube_id, submitted_at, state`

// Append inserts a new Pending row and reads it back so the caller
// gets the generated ID and the database-assigned submission time.
func (r *VideoRepo) Append(ctx context.Context, item *model.QueueItem) error {
    const q = `INSERT INTO videos (table_id, venue_id, link, youtube_id, state) VALUES (?, ?, ?, ?, ?)`
    result, err := r.db.ExecContext(ctx, q, item.TableID, item.VenueID, item.Link, item.YouTubeID, string(item.State))
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    item.ID = uint64(id)
    // Query back the full row to populate the DB-assigned timestamp.
    const sel = `SELECT ` + videoColumns + ` FROM videos WHERE id = ?`
    stored, err := scanVideo(r.db.QueryRowContext(ctx, sel, item.ID))
    if err != nil {
        return err
    }
    *item = *stored
    return nil
}

// GetByID loads one row or returns scheduler.ErrItemNotFound.
func (r *VideoRepo) GetByID(ctx context.Context, id uint64) (*model.QueueItem, error) {
    const q = `SELECT ` + videoColumns + ` FROM videos WHERE id = ?`
    item, err := scanVideo(r.db.QueryRowContext(ctx, q, id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, scheduler.ErrItemNotFound
    }
    if err != nil {
        return nil, err
    }
    return item, nil
}

// ListActive returns the venue's Pending and Playing rows, the
// snapshot the selector ranks.  The Playing row keeps its table's turn
// occupied even though it cannot be selected again.  The ORDER BY only
// provides deterministic output; the selector re-ranks the snapshot.
func (r *VideoRepo) ListActive(ctx context.Context, venueID uint64) ([]model.QueueItem, error) {
    const q = `SELECT ` + videoColumns + ` FROM videos
               WHERE venue_id = ? AND state IN ('Pending', 'Playing')
               ORDER BY submitted_at, id`
    return r.queryVideos(ctx, q, venueID)
}

// ListByTable returns everything the table has submitted, all states,
// oldest first.
func (r *VideoRepo) ListByTable(ctx context.Context, tableID uint64) ([]model.QueueItem, error) {
    const q = `SELECT ` + videoColumns + ` FROM videos
               WHERE table_id = ?
               ORDER BY submitted_at, id`
    return r.queryVideos(ctx, q, tableID)
}

// StartPlayback hands the venue's output over to the given item inside
// one transaction: whatever is Playing for the venue becomes Finished,
// then the item is promoted Pending→Playing with a conditional update.
// Zero affected rows on the promotion means a concurrent caller won the
// race (scheduler.ErrConflict) or the row never existed
// (scheduler.ErrItemNotFound).
func (r *VideoRepo) StartPlayback(ctx context.Context, venueID, itemID uint64) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    // Finish the current playback first so the venue never holds two
    // Playing rows, not even transiently inside the transaction.
    const finish = `UPDATE videos SET state = 'Finished' WHERE venue_id = ? AND state = 'Playing' AND id <> ?`
    if _, err := tx.ExecContext(ctx, finish, venueID, itemID); err != nil {
        return err
    }

    const promote = `UPDATE videos SET state = 'Playing' WHERE id = ? AND state = 'Pending'`
    result, err := tx.ExecContext(ctx, promote, itemID)
    if err != nil {
        return err
    }
    affected, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if affected == 0 {
        // Distinguish "already taken" from "no such row" for the caller.
        var state string
        err := tx.QueryRowContext(ctx, `SELECT state FROM videos WHERE id = ?`, itemID).Scan(&state)
        if errors.Is(err, sql.ErrNoRows) {
            return scheduler.ErrItemNotFound
        }
        if err != nil {
            return err
        }
        return scheduler.ErrConflict
    }

    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// UpdateState swaps the item's state from exactly `from` to `to`.
func (r *VideoRepo) UpdateState(ctx context.Context, id uint64, from, to model.State) error {
    const q = `UPDATE videos SET state = ? WHERE id = ? AND state = ?`
    result, err := r.db.ExecContext(ctx, q, string(to), id, string(from))
    if err != nil {
        return err
    }
    affected, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if affected == 0 {
        var state string
        err := r.db.QueryRowContext(ctx, `SELECT state FROM videos WHERE id = ?`, id).Scan(&state)
        if errors.Is(err, sql.ErrNoRows) {
            return scheduler.ErrItemNotFound
        }
        if err != nil {
            return err
        }
        return scheduler.ErrConflict
    }
    return nil
}

func (r *VideoRepo) queryVideos(ctx context.Context, query string, args ...interface{}) ([]model.QueueItem, error) {
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    items := make([]model.QueueItem, 0)
    for rows.Next() {
        var it model.QueueItem
        var state string
        if err := rows.Scan(&it.ID, &it.TableID, &it.VenueID, &it.Link, &it.YouTubeID, &it.SubmittedAt, &state); err != nil {
            return nil, err
        }
        it.State = model.State(state)
        items = append(items, it)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return items, nil
}

// rowScanner lets scanVideo work for both QueryRowContext results and
// explicit row iteration.
type rowScanner interface {
    Scan(dest ...interface{}) error
}

func scanVideo(row rowScanner) (*model.QueueItem, error) {
    var it model.QueueItem
    var state string
    if err := row.Scan(&it.ID, &it.TableID, &it.VenueID, &it.Link, &it.YouTubeID, &it.SubmittedAt, &state); err != nil {
        return nil, err
    }
    it.State = model.State(state)
    return &it, nil
}
