package scheduler_test

import (
	"testing"

	"github.com/musicbares/video-queue/internal/model"
	"github.com/musicbares/video-queue/internal/scheduler"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from model.State
		to   model.State
		want bool
	}{
		{"pending to playing", model.StatePending, model.StatePlaying, true},
		{"pending to removed", model.StatePending, model.StateRemoved, true},
		{"pending to finished skips playing", model.StatePending, model.StateFinished, false},
		{"playing to finished", model.StatePlaying, model.StateFinished, true},
		{"playing to removed cancels playback", model.StatePlaying, model.StateRemoved, true},
		{"playing back to pending", model.StatePlaying, model.StatePending, false},
		{"finished is terminal", model.StateFinished, model.StatePlaying, false},
		{"finished cannot be removed", model.StateFinished, model.StateRemoved, false},
		{"removed is terminal", model.StateRemoved, model.StatePlaying, false},
		{"removed cannot finish", model.StateRemoved, model.StateFinished, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scheduler.CanTransition(tt.from, tt.to); got != tt.want {
				t.Fatalf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	if scheduler.IsTerminal(model.StatePending) || scheduler.IsTerminal(model.StatePlaying) {
		t.Fatal("pending and playing must not be terminal")
	}
	if !scheduler.IsTerminal(model.StateFinished) || !scheduler.IsTerminal(model.StateRemoved) {
		t.Fatal("finished and removed must be terminal")
	}
}
