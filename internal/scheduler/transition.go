package scheduler

import "github.com/musicbares/video-queue/internal/model"

// CanTransition reports whether a queue item may move from one state to
// another.  The legal moves are:
//
//	Pending → Playing   (taken by the scheduler or forced by the operator)
//	Pending → Removed   (deleted before it ever played)
//	Playing → Finished  (playback ended)
//	Playing → Removed   (operator cancels active playback)
//
// Finished and Removed are terminal; nothing leaves them.
func CanTransition(from, to model.State) bool {
    switch from {
    case model.StatePending:
        return to == model.StatePlaying || to == model.StateRemoved
    case model.StatePlaying:
        return to == model.StateFinished || to == model.StateRemoved
    }
    return false
}

// IsTerminal reports whether a state admits no further transitions.
func IsTerminal(s model.State) bool {
    return s == model.StateFinished || s == model.StateRemoved
}
