package scheduler_test

import (
	"testing"
	"time"

	"github.com/musicbares/video-queue/internal/model"
	"github.com/musicbares/video-queue/internal/scheduler"
)

// item builds a pending queue item with a submission time offset in
// seconds from a fixed base, which keeps the scenarios readable.
func item(id, tableID uint64, offsetSec int) model.QueueItem {
	base := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	return model.QueueItem{
		ID:          id,
		TableID:     tableID,
		VenueID:     1,
		SubmittedAt: base.Add(time.Duration(offsetSec) * time.Second),
		State:       model.StatePending,
	}
}

func assertOrder(t *testing.T, got []model.QueueItem, want []uint64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected item %d, got %d", i, id, got[i].ID)
		}
	}
}

func TestRank(t *testing.T) {
	t.Run("one table degenerates to FIFO", func(t *testing.T) {
		items := []model.QueueItem{
			item(3, 7, 30), item(1, 7, 10), item(2, 7, 20),
		}
		assertOrder(t, scheduler.Rank(items), []uint64{1, 2, 3})
	})

	t.Run("deep backlog cannot starve another table", func(t *testing.T) {
		// Table A queues three videos before table B queues one; B's
		// single video is served second, right after A's first.
		items := []model.QueueItem{
			item(1, 1, 0),  // a1
			item(2, 1, 1),  // a2
			item(3, 1, 2),  // a3
			item(4, 2, 10), // b1, submitted after A's whole backlog
		}
		assertOrder(t, scheduler.Rank(items), []uint64{1, 4, 2, 3})
	})

	t.Run("playing video keeps its table's turn occupied", func(t *testing.T) {
		// a1 is on the output.  It still counts as table 1's first
		// turn, so a2 holds turn 2 and table 2's video wins the round
		// even though it was submitted after table 1's whole backlog.
		a1 := item(1, 1, 0)
		a1.State = model.StatePlaying
		items := []model.QueueItem{
			a1,
			item(2, 1, 1),  // a2
			item(3, 1, 2),  // a3
			item(4, 2, 10), // b1
		}
		assertOrder(t, scheduler.Rank(items), []uint64{4, 2, 3})
	})

	t.Run("playing video never reappears in the order", func(t *testing.T) {
		playing := item(1, 1, 0)
		playing.State = model.StatePlaying
		got := scheduler.Rank([]model.QueueItem{playing, item(2, 1, 1)})
		assertOrder(t, got, []uint64{2})
	})

	t.Run("equal turn index breaks by table id", func(t *testing.T) {
		// Table 9 submitted earlier than table 2 but both items hold
		// turn index 1; the lower table id goes first.
		items := []model.QueueItem{
			item(1, 9, 0),
			item(2, 2, 5),
		}
		assertOrder(t, scheduler.Rank(items), []uint64{2, 1})
	})

	t.Run("three tables interleave round by round", func(t *testing.T) {
		items := []model.QueueItem{
			item(1, 1, 0), item(2, 1, 1),
			item(3, 2, 2), item(4, 2, 3),
			item(5, 3, 4),
		}
		// Round one: tables 1, 2, 3; round two: tables 1, 2.
		assertOrder(t, scheduler.Rank(items), []uint64{1, 3, 5, 2, 4})
	})

	t.Run("same timestamp within a table falls back to id", func(t *testing.T) {
		items := []model.QueueItem{
			item(2, 1, 0), item(1, 1, 0),
		}
		assertOrder(t, scheduler.Rank(items), []uint64{1, 2})
	})

	t.Run("empty snapshot yields empty order", func(t *testing.T) {
		if got := scheduler.Rank(nil); len(got) != 0 {
			t.Fatalf("expected empty ranking, got %d items", len(got))
		}
	})

	t.Run("input snapshot is not mutated", func(t *testing.T) {
		items := []model.QueueItem{
			item(3, 1, 30), item(1, 2, 10), item(2, 1, 20),
		}
		scheduler.Rank(items)
		if items[0].ID != 3 || items[1].ID != 1 || items[2].ID != 2 {
			t.Fatal("Rank reordered its input slice")
		}
	})
}

func TestSelectNext(t *testing.T) {
	t.Run("returns head of fair order", func(t *testing.T) {
		items := []model.QueueItem{
			item(1, 1, 0), item(2, 1, 1), item(3, 2, 5),
		}
		next, ok := scheduler.SelectNext(items)
		if !ok {
			t.Fatal("expected a selection")
		}
		if next.ID != 1 {
			t.Fatalf("expected item 1, got %d", next.ID)
		}
	})

	t.Run("mid-playback snapshot selects the waiting table", func(t *testing.T) {
		a1 := item(1, 1, 0)
		a1.State = model.StatePlaying
		items := []model.QueueItem{
			a1, item(2, 1, 1), item(3, 2, 5),
		}
		next, ok := scheduler.SelectNext(items)
		if !ok {
			t.Fatal("expected a selection")
		}
		if next.ID != 3 {
			t.Fatalf("expected table 2's video (item 3), got %d", next.ID)
		}
	})

	t.Run("empty snapshot reports none available", func(t *testing.T) {
		if _, ok := scheduler.SelectNext(nil); ok {
			t.Fatal("expected ok=false for empty snapshot")
		}
	})

	t.Run("snapshot with only a playing video reports none available", func(t *testing.T) {
		playing := item(1, 1, 0)
		playing.State = model.StatePlaying
		if _, ok := scheduler.SelectNext([]model.QueueItem{playing}); ok {
			t.Fatal("expected ok=false when nothing is pending")
		}
	})
}
