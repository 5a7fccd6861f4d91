// Package queue defines message payloads exchanged over the message broker.
package queue

// VideoQueuedEvent is published whenever a patron submission lands in the
// queue.  It carries enough context for downstream consumers (venue
// displays, analytics) to act without querying the primary database.
type VideoQueuedEvent struct {
    VideoID     uint64 `json:"video_id"`
    VenueID     uint64 `json:"venue_id"`
    TableID     uint64 `json:"table_id"`
    TableNumber uint32 `json:"table_number"`
    Link        string `json:"link"`
    YouTubeID   string `json:"youtube_id"`
    SubmittedAt string `json:"submitted_at"`
}

// PlaybackStartedEvent is published when a video transitions to Playing,
// whether the scheduler picked it fairly or the operator forced it.
// Trigger is "next" for scheduler picks and "manual" for overrides.
type PlaybackStartedEvent struct {
    VideoID   uint64 `json:"video_id"`
    VenueID   uint64 `json:"venue_id"`
    TableID   uint64 `json:"table_id"`
    YouTubeID string `json:"youtube_id"`
    Trigger   string `json:"trigger"`
    StartedAt string `json:"started_at"`
}
