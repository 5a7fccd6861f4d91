package model

import "time"

// State describes where a queued video currently is in its playback
// lifecycle.  A video enters the queue as Pending, becomes Playing when
// the venue's playback output picks it up, and ends as either Finished
// (it played to completion) or Removed (a patron or the operator pulled
// it from the queue).  Finished and Removed are terminal.
type State string

const (
    // StatePending marks a video that is waiting for its turn.
    StatePending State = "Pending"
    // StatePlaying marks the video currently on the venue's output.
    // At most one video per venue may be in this state.
    StatePlaying State = "Playing"
    // StateFinished marks a video whose playback has ended.
    StateFinished State = "Finished"
    // StateRemoved marks a video deleted from the queue before or
    // during playback.  Removed rows are kept for listings and audit.
    StateRemoved State = "Removed"
)

// QueueItem is one video request submitted from a table.  The venue ID
// is resolved from the table at submission time and denormalized onto
// the row so venue-scoped queue reads need no join.  Everything except
// State is immutable after creation.
//
// Fields:
//  ID          – primary key identifier, assigned by the database.
//  TableID     – table the request came from.
//  VenueID     – venue owning the table, stamped at submission.
//  Link        – full video link as submitted by the patron.
//  YouTubeID   – provider video identifier extracted from the link.
//  SubmittedAt – when the request was created; orders items within a
//                single table, never across tables.
//  State       – current playback state.
type QueueItem struct {
    ID          uint64    `json:"id"`           // videos.id
    TableID     uint64    `json:"table_id"`     // videos.table_id
    VenueID     uint64    `json:"venue_id"`     // videos.venue_id
    Link        string    `json:"link"`         // videos.link
    YouTubeID   string    `json:"youtube_id"`   // videos.youtube_id
    SubmittedAt time.Time `json:"submitted_at"` // videos.submitted_at
    State       State     `json:"state"`        // videos.state
}
