package handler

import (
    "errors"
    "log"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/musicbares/video-queue/internal/model"
    "github.com/musicbares/video-queue/internal/queue"
    "github.com/musicbares/video-queue/internal/scheduler"
    queue_publisher "github.com/musicbares/video-queue/internal/service"
)

// OperatorHandler serves the authenticated venue-operator surface:
// inspecting the fair queue, pulling the next video, forcing a specific
// video, completing playback and removing requests.  JWT and role
// middleware run before any of these, so the handlers only translate
// scheduler results into HTTP responses.
type OperatorHandler struct {
    Scheduler *scheduler.Service
}

// NewOperatorHandler constructs an OperatorHandler.
func NewOperatorHandler(sched *scheduler.Service) *OperatorHandler {
    if sched == nil {
        panic("nil scheduler passed to NewOperatorHandler")
    }
    return &OperatorHandler{Scheduler: sched}
}

// GetQueue handles GET /v1/venues/:id/queue.  It returns the venue's
// complete pending queue in fair serving order, the "what's coming up"
// view for the operator console.
func (h *OperatorHandler) GetQueue(c echo.Context) error {
    venueID, err := parseID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
    }
    items, err := h.Scheduler.PeekQueue(c.Request().Context(), venueID)
    if err != nil {
        if errors.Is(err, scheduler.ErrVenueNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"venue_id": venueID, "queue": items, "count": len(items)})
}

// TakeNext handles POST /v1/venues/:id/queue/next.  It picks the fair
// next video and starts its playback in one step.  An empty queue is a
// 404 with an explanatory message, not an error blob, so the operator
// console can show "nothing queued" distinctly from a missing venue.
func (h *OperatorHandler) TakeNext(c echo.Context) error {
    venueID, err := parseID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
    }
    ctx := c.Request().Context()
    item, err := h.Scheduler.TakeNext(ctx, venueID)
    if err != nil {
        switch {
        case errors.Is(err, scheduler.ErrVenueNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
        case errors.Is(err, scheduler.ErrNoneAvailable):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "no pending videos"})
        case errors.Is(err, scheduler.ErrConflict):
            return c.JSON(http.StatusConflict, echo.Map{"error": "queue is contended, retry"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
        }
    }

    h.publishPlayback(c, item, "next")
    return c.JSON(http.StatusOK, item)
}

// MarkPlaying handles PUT /v1/videos/:id/playing, the operator's manual
// override that forces a specific video onto the output regardless of
// fairness order.  Repeating the call for a video that is already
// playing succeeds without effect.
func (h *OperatorHandler) MarkPlaying(c echo.Context) error {
    itemID, err := parseID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid video id"})
    }
    ctx := c.Request().Context()
    if err := h.Scheduler.MarkPlaying(ctx, itemID); err != nil {
        return h.transitionError(c, err)
    }

    if item, err := h.Scheduler.Get(ctx, itemID); err == nil {
        h.publishPlayback(c, item, "manual")
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "video is playing"})
}

// Complete handles PUT /v1/videos/:id/finished, reported by the
// playback device (or the operator) when a video ends without the next
// one being pulled yet.
func (h *OperatorHandler) Complete(c echo.Context) error {
    itemID, err := parseID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid video id"})
    }
    if err := h.Scheduler.Complete(c.Request().Context(), itemID); err != nil {
        return h.transitionError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "video finished"})
}

// Remove handles DELETE /v1/videos/:id.  Pending videos leave the
// fairness computation immediately; removing the playing video cancels
// active playback.
func (h *OperatorHandler) Remove(c echo.Context) error {
    itemID, err := parseID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid video id"})
    }
    if err := h.Scheduler.Remove(c.Request().Context(), itemID); err != nil {
        return h.transitionError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "video removed"})
}

// transitionError maps scheduler failures from single-item transitions
// onto HTTP codes.  Guard violations become 409 so clients can tell
// "not allowed from this state" apart from "no such video".
func (h *OperatorHandler) transitionError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, scheduler.ErrItemNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
    case errors.Is(err, scheduler.ErrInvalidTransition):
        return c.JSON(http.StatusConflict, echo.Map{"error": "transition not allowed from current state"})
    case errors.Is(err, scheduler.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "queue is contended, retry"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
}

func (h *OperatorHandler) publishPlayback(c echo.Context, item *model.QueueItem, trigger string) {
    ev := queue.PlaybackStartedEvent{
        VideoID:   item.ID,
        VenueID:   item.VenueID,
        TableID:   item.TableID,
        YouTubeID: item.YouTubeID,
        Trigger:   trigger,
        StartedAt: time.Now().UTC().Format(time.RFC3339),
    }
    if err := queue_publisher.PublishPlaybackStarted(c.Request().Context(), ev); err != nil {
        log.Printf("operator-queue: publish playback.started failed: %v", err)
    }
}

// parseID extracts a positive uint64 path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, errors.New("invalid id")
    }
    return id, nil
}
