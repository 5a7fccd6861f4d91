package scheduler

import (
    "sort"

    "github.com/musicbares/video-queue/internal/model"
)

// Rank orders a snapshot of a venue's active (Pending and Playing)
// items into the fair serving order.  Every item gets a 1-based turn
// index: its rank among its own table's items ordered by submission
// time.  Items are then served by ascending turn index, so the first
// video of every table goes before the second video of any table, and
// a table with a deep backlog can never push another table's next
// video back by more than one round.  Ties on equal turn index break
// by ascending table ID, then by submission time, which keeps the
// order deterministic across runs.
//
// The snapshot must include the venue's Playing item: it consumes its
// table's turn while it plays, which is what stops the table that was
// just served from immediately winning the next round against a table
// that has been waiting.  Only Pending items appear in the returned
// order.
//
// Rank is pure: it copies the snapshot and never mutates its input.
// The caller commits a state change afterwards if it wants one.
func Rank(items []model.QueueItem) []model.QueueItem {
    if len(items) == 0 {
        return []model.QueueItem{}
    }

    // Group the snapshot by table, keeping per-table submission order.
    byTable := make(map[uint64][]model.QueueItem)
    for _, it := range items {
        byTable[it.TableID] = append(byTable[it.TableID], it)
    }

    type rankedItem struct {
        item model.QueueItem
        turn int // 1 = the table's oldest pending video
    }
    ranked := make([]rankedItem, 0, len(items))
    for _, group := range byTable {
        sort.SliceStable(group, func(i, j int) bool {
            if !group[i].SubmittedAt.Equal(group[j].SubmittedAt) {
                return group[i].SubmittedAt.Before(group[j].SubmittedAt)
            }
            // Same timestamp can only happen within a table when the
            // clock granularity collapses; the auto-increment ID still
            // reflects insertion order.
            return group[i].ID < group[j].ID
        })
        for i, it := range group {
            // Playing items hold their turn but are never served again.
            if it.State != model.StatePending {
                continue
            }
            ranked = append(ranked, rankedItem{item: it, turn: i + 1})
        }
    }

    sort.SliceStable(ranked, func(i, j int) bool {
        a, b := ranked[i], ranked[j]
        if a.turn != b.turn {
            return a.turn < b.turn
        }
        if a.item.TableID != b.item.TableID {
            return a.item.TableID < b.item.TableID
        }
        return a.item.SubmittedAt.Before(b.item.SubmittedAt)
    })

    out := make([]model.QueueItem, len(ranked))
    for i, r := range ranked {
        out[i] = r.item
    }
    return out
}

// SelectNext returns the single next item to serve from the snapshot,
// or ok=false when nothing is pending.  It is the head of Rank.
func SelectNext(items []model.QueueItem) (model.QueueItem, bool) {
    ordered := Rank(items)
    if len(ordered) == 0 {
        return model.QueueItem{}, false
    }
    return ordered[0], true
}
