// Package scheduler implements the fair round-robin video scheduler: it
// accepts per-table submissions, orders pending videos fairly across the
// tables of a venue and hands the operator one video at a time.  The
// sentinel errors below form the full failure vocabulary of the package;
// callers are expected to compare with errors.Is and must never see a
// failure silently collapsed into an empty result.
package scheduler

import "errors"

// ErrTableNotFound is returned by Submit when the directory does not
// resolve the table to any venue.  Handlers should translate this into
// an HTTP 404 response.
var ErrTableNotFound = errors.New("table not found")

// ErrVenueNotFound is returned by venue-scoped operations when the
// directory reports no such venue.  It keeps "the venue does not exist"
// distinguishable from "the venue has nothing queued".
var ErrVenueNotFound = errors.New("venue not found")

// ErrInvalidPayload is returned by Submit when the link validator
// rejects the submitted content.
var ErrInvalidPayload = errors.New("invalid payload")

// ErrItemNotFound is returned when an operation references a queue item
// that does not exist.
var ErrItemNotFound = errors.New("queue item not found")

// ErrInvalidTransition is returned when a state change is not allowed
// from the item's current state, e.g. marking a Removed video as
// playing.  It lets callers tell "not allowed" apart from "not found".
var ErrInvalidTransition = errors.New("invalid state transition")

// ErrNoneAvailable signals an empty pending queue.  It is not a real
// failure; TakeNext returns it instead of blocking until a video shows
// up, and handlers usually map it to 404 with an explanatory message.
var ErrNoneAvailable = errors.New("no pending videos")

// ErrConflict is returned by stores when a conditional state update
// finds the row already changed by a concurrent caller.  The service
// retries these internally a bounded number of times before giving up
// and surfacing the error.
var ErrConflict = errors.New("concurrent update conflict")
