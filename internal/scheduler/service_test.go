package scheduler_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/musicbares/video-queue/internal/model"
	"github.com/musicbares/video-queue/internal/repository"
	"github.com/musicbares/video-queue/internal/scheduler"
	"github.com/musicbares/video-queue/internal/validate"
)

const (
	venueID      = uint64(1)
	tableA       = uint64(10)
	tableB       = uint64(20)
	unknownTable = uint64(99)
	unknownVenue = uint64(77)

	goodLink = "https://youtu.be/dQw4w9WgXcQ"
)

// fakeDirectory resolves a fixed set of tables and venues.
type fakeDirectory struct {
	tables map[uint64]uint64
	venues map[uint64]bool
}

func (d *fakeDirectory) ResolveVenueForTable(_ context.Context, tableID uint64) (uint64, error) {
	v, ok := d.tables[tableID]
	if !ok {
		return 0, scheduler.ErrTableNotFound
	}
	return v, nil
}

func (d *fakeDirectory) VenueExists(_ context.Context, id uint64) (bool, error) {
	return d.venues[id], nil
}

func newService() (*scheduler.Service, *repository.MemoryVideoStore) {
	store := repository.NewMemoryVideoStore()
	dir := &fakeDirectory{
		tables: map[uint64]uint64{tableA: venueID, tableB: venueID},
		venues: map[uint64]bool{venueID: true},
	}
	return scheduler.New(store, dir, validate.NewYouTubeValidator()), store
}

func mustSubmit(t *testing.T, svc *scheduler.Service, tableID uint64) *model.QueueItem {
	t.Helper()
	item, err := svc.Submit(context.Background(), tableID, goodLink)
	if err != nil {
		t.Fatalf("submit from table %d: %v", tableID, err)
	}
	return item
}

func TestService_Submit(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()

	t.Run("creates pending item with resolved venue", func(t *testing.T) {
		item := mustSubmit(t, svc, tableA)
		if item.ID == 0 {
			t.Fatal("expected an assigned id")
		}
		if item.VenueID != venueID {
			t.Fatalf("expected venue %d stamped, got %d", venueID, item.VenueID)
		}
		if item.State != model.StatePending {
			t.Fatalf("expected Pending, got %s", item.State)
		}
		if item.YouTubeID != "dQw4w9WgXcQ" {
			t.Fatalf("expected extracted video id, got %q", item.YouTubeID)
		}
		if item.SubmittedAt.IsZero() {
			t.Fatal("expected submission timestamp")
		}
	})

	t.Run("unknown table creates nothing", func(t *testing.T) {
		before, _ := store.ListActive(ctx, venueID)
		_, err := svc.Submit(ctx, unknownTable, goodLink)
		if !errors.Is(err, scheduler.ErrTableNotFound) {
			t.Fatalf("expected ErrTableNotFound, got %v", err)
		}
		after, _ := store.ListActive(ctx, venueID)
		if len(after) != len(before) {
			t.Fatal("failed submit must not append an item")
		}
	})

	t.Run("invalid link is rejected", func(t *testing.T) {
		_, err := svc.Submit(ctx, tableA, "https://vimeo.com/12345678")
		if !errors.Is(err, scheduler.ErrInvalidPayload) {
			t.Fatalf("expected ErrInvalidPayload, got %v", err)
		}
	})
}

func TestService_TakeNext_FairOrder(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	// Table A queues three videos, then table B queues one.
	a1 := mustSubmit(t, svc, tableA)
	a2 := mustSubmit(t, svc, tableA)
	a3 := mustSubmit(t, svc, tableA)
	b1 := mustSubmit(t, svc, tableB)

	want := []uint64{a1.ID, b1.ID, a2.ID, a3.ID}
	for i, id := range want {
		got, err := svc.TakeNext(ctx, venueID)
		if err != nil {
			t.Fatalf("take %d: %v", i, err)
		}
		if got.ID != id {
			t.Fatalf("take %d: expected item %d, got %d", i, id, got.ID)
		}
		if got.State != model.StatePlaying {
			t.Fatalf("take %d: expected Playing, got %s", i, got.State)
		}
	}

	if _, err := svc.TakeNext(ctx, venueID); !errors.Is(err, scheduler.ErrNoneAvailable) {
		t.Fatalf("expected ErrNoneAvailable after draining, got %v", err)
	}
}

func TestService_TakeNext_AlternatesAcrossDrain(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	// Table A's whole backlog goes in before table B's; the drain must
	// still alternate between the tables round by round, with the
	// in-flight video holding its table's turn on every pull.
	a1 := mustSubmit(t, svc, tableA)
	a2 := mustSubmit(t, svc, tableA)
	a3 := mustSubmit(t, svc, tableA)
	b1 := mustSubmit(t, svc, tableB)
	b2 := mustSubmit(t, svc, tableB)

	want := []uint64{a1.ID, b1.ID, a2.ID, b2.ID, a3.ID}
	for i, id := range want {
		got, err := svc.TakeNext(ctx, venueID)
		if err != nil {
			t.Fatalf("take %d: %v", i, err)
		}
		if got.ID != id {
			t.Fatalf("take %d: expected item %d, got %d", i, id, got.ID)
		}
	}
}

func TestService_TakeNext_PlaybackHandover(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()

	first := mustSubmit(t, svc, tableA)
	second := mustSubmit(t, svc, tableA)

	if _, err := svc.TakeNext(ctx, venueID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.TakeNext(ctx, venueID); err != nil {
		t.Fatal(err)
	}

	got1, _ := store.GetByID(ctx, first.ID)
	got2, _ := store.GetByID(ctx, second.ID)
	if got1.State != model.StateFinished {
		t.Fatalf("expected first item Finished after handover, got %s", got1.State)
	}
	if got2.State != model.StatePlaying {
		t.Fatalf("expected second item Playing, got %s", got2.State)
	}
}

func TestService_TakeNext_UnknownVenue(t *testing.T) {
	svc, _ := newService()
	if _, err := svc.TakeNext(context.Background(), unknownVenue); !errors.Is(err, scheduler.ErrVenueNotFound) {
		t.Fatalf("expected ErrVenueNotFound, got %v", err)
	}
}

func TestService_TakeNext_ConcurrentNoDoubleServe(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	submitted := map[uint64]bool{}
	for i := 0; i < 3; i++ {
		submitted[mustSubmit(t, svc, tableA).ID] = true
	}
	mustSubmit(t, svc, tableB) // drained too
	submittedCount := 4

	const callers = 12
	var wg sync.WaitGroup
	var mu sync.Mutex
	served := map[uint64]int{}
	var empty int

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			item, err := svc.TakeNext(ctx, venueID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				served[item.ID]++
			case errors.Is(err, scheduler.ErrNoneAvailable), errors.Is(err, scheduler.ErrConflict):
				empty++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if len(served) != submittedCount {
		t.Fatalf("expected %d distinct items served, got %d", submittedCount, len(served))
	}
	for id, n := range served {
		if n != 1 {
			t.Fatalf("item %d served %d times", id, n)
		}
	}
	if len(served)+empty != callers {
		t.Fatalf("every call must either serve or report empty: served=%d empty=%d", len(served), empty)
	}
}

func TestService_PeekQueue(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()

	a1 := mustSubmit(t, svc, tableA)
	a2 := mustSubmit(t, svc, tableA)
	b1 := mustSubmit(t, svc, tableB)

	want := []uint64{a1.ID, b1.ID, a2.ID}
	queue, err := svc.PeekQueue(ctx, venueID)
	if err != nil {
		t.Fatal(err)
	}
	if len(queue) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(queue))
	}
	for i, id := range want {
		if queue[i].ID != id {
			t.Fatalf("position %d: expected %d, got %d", i, id, queue[i].ID)
		}
	}

	// Peek must not mutate: states unchanged, second call identical.
	for id := range map[uint64]bool{a1.ID: true, a2.ID: true, b1.ID: true} {
		it, _ := store.GetByID(ctx, id)
		if it.State != model.StatePending {
			t.Fatalf("peek mutated item %d to %s", id, it.State)
		}
	}
	again, _ := svc.PeekQueue(ctx, venueID)
	for i := range queue {
		if again[i].ID != queue[i].ID {
			t.Fatal("repeated peek returned a different order")
		}
	}

	if _, err := svc.PeekQueue(ctx, unknownVenue); !errors.Is(err, scheduler.ErrVenueNotFound) {
		t.Fatalf("expected ErrVenueNotFound, got %v", err)
	}
}

func TestService_MarkPlaying(t *testing.T) {
	ctx := context.Background()

	t.Run("idempotent on playing item", func(t *testing.T) {
		svc, store := newService()
		item := mustSubmit(t, svc, tableA)
		if err := svc.MarkPlaying(ctx, item.ID); err != nil {
			t.Fatal(err)
		}
		if err := svc.MarkPlaying(ctx, item.ID); err != nil {
			t.Fatalf("second MarkPlaying must be a no-op success, got %v", err)
		}
		got, _ := store.GetByID(ctx, item.ID)
		if got.State != model.StatePlaying {
			t.Fatalf("expected Playing, got %s", got.State)
		}
	})

	t.Run("forces a specific item out of fair order", func(t *testing.T) {
		svc, store := newService()
		mustSubmit(t, svc, tableA)
		b1 := mustSubmit(t, svc, tableB)
		if err := svc.MarkPlaying(ctx, b1.ID); err != nil {
			t.Fatal(err)
		}
		got, _ := store.GetByID(ctx, b1.ID)
		if got.State != model.StatePlaying {
			t.Fatalf("expected forced item Playing, got %s", got.State)
		}
	})

	t.Run("rejected on terminal states without mutation", func(t *testing.T) {
		svc, store := newService()
		item := mustSubmit(t, svc, tableA)
		if err := svc.MarkPlaying(ctx, item.ID); err != nil {
			t.Fatal(err)
		}
		if err := svc.Complete(ctx, item.ID); err != nil {
			t.Fatal(err)
		}
		if err := svc.MarkPlaying(ctx, item.ID); !errors.Is(err, scheduler.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition on finished item, got %v", err)
		}
		got, _ := store.GetByID(ctx, item.ID)
		if got.State != model.StateFinished {
			t.Fatalf("rejected transition must not mutate, got %s", got.State)
		}

		removed := mustSubmit(t, svc, tableA)
		if err := svc.Remove(ctx, removed.ID); err != nil {
			t.Fatal(err)
		}
		if err := svc.MarkPlaying(ctx, removed.ID); !errors.Is(err, scheduler.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition on removed item, got %v", err)
		}
	})

	t.Run("unknown item", func(t *testing.T) {
		svc, _ := newService()
		if err := svc.MarkPlaying(ctx, 12345); !errors.Is(err, scheduler.ErrItemNotFound) {
			t.Fatalf("expected ErrItemNotFound, got %v", err)
		}
	})
}

func TestService_Complete(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()

	item := mustSubmit(t, svc, tableA)
	if err := svc.Complete(ctx, item.ID); !errors.Is(err, scheduler.ErrInvalidTransition) {
		t.Fatalf("completing a pending item must fail, got %v", err)
	}

	if err := svc.MarkPlaying(ctx, item.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.Complete(ctx, item.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := store.GetByID(ctx, item.ID)
	if got.State != model.StateFinished {
		t.Fatalf("expected Finished, got %s", got.State)
	}

	if err := svc.Complete(ctx, item.ID); !errors.Is(err, scheduler.ErrInvalidTransition) {
		t.Fatalf("double complete must fail, got %v", err)
	}
}

func TestService_Remove(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	t.Run("removed item leaves the queue", func(t *testing.T) {
		item := mustSubmit(t, svc, tableA)
		if err := svc.Remove(ctx, item.ID); err != nil {
			t.Fatal(err)
		}
		if _, err := svc.TakeNext(ctx, venueID); !errors.Is(err, scheduler.ErrNoneAvailable) {
			t.Fatalf("expected empty queue after removal, got %v", err)
		}
	})

	t.Run("cancels active playback", func(t *testing.T) {
		item := mustSubmit(t, svc, tableA)
		if _, err := svc.TakeNext(ctx, venueID); err != nil {
			t.Fatal(err)
		}
		if err := svc.Remove(ctx, item.ID); err != nil {
			t.Fatalf("removing the playing item must succeed, got %v", err)
		}
	})

	t.Run("unknown item", func(t *testing.T) {
		if err := svc.Remove(ctx, 54321); !errors.Is(err, scheduler.ErrItemNotFound) {
			t.Fatalf("expected ErrItemNotFound, got %v", err)
		}
	})
}

func TestService_ListByTable(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	first := mustSubmit(t, svc, tableA)
	second := mustSubmit(t, svc, tableA)
	if err := svc.Remove(ctx, first.ID); err != nil {
		t.Fatal(err)
	}

	items, err := svc.ListByTable(ctx, tableA)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("listing must include removed items, got %d", len(items))
	}
	if items[0].ID != first.ID || items[1].ID != second.ID {
		t.Fatal("listing must preserve submission order")
	}
	if items[0].State != model.StateRemoved {
		t.Fatalf("expected first item Removed, got %s", items[0].State)
	}

	if _, err := svc.ListByTable(ctx, unknownTable); !errors.Is(err, scheduler.ErrTableNotFound) {
		t.Fatalf("expected ErrTableNotFound, got %v", err)
	}
}
