package handler

import (
    "errors"   // errors.Is comparisons against scheduler sentinels
    "log"      // event publish failures are logged, never surfaced
    "net/http" // HTTP status codes
    "strconv"  // parsing path parameters
    "strings"  // trimming the submitted table code
    "time"     // formatting event timestamps

    "github.com/labstack/echo/v4"

    "github.com/musicbares/video-queue/internal/model"
    "github.com/musicbares/video-queue/internal/queue"
    "github.com/musicbares/video-queue/internal/repository"
    "github.com/musicbares/video-queue/internal/scheduler"
    queue_publisher "github.com/musicbares/video-queue/internal/service"
    "github.com/musicbares/video-queue/internal/validate"
)

// PatronHandler serves the unauthenticated patron surface: submitting
// video links from a table and viewing what the table has queued.
// Patrons identify their table with the opaque code from its QR
// sticker; the raw table ID never travels in a submission, so a patron
// cannot queue videos onto someone else's table by guessing IDs.
type PatronHandler struct {
    Scheduler *scheduler.Service        // queue orchestration
    Directory *repository.DirectoryRepo // table lookup by QR code
    Links     *validate.YouTubeValidator
}

// NewPatronHandler constructs a PatronHandler.  All dependencies must
// be non-nil.
func NewPatronHandler(sched *scheduler.Service, dir *repository.DirectoryRepo, links *validate.YouTubeValidator) *PatronHandler {
    if sched == nil || dir == nil || links == nil {
        panic("nil dependency passed to NewPatronHandler")
    }
    return &PatronHandler{Scheduler: sched, Directory: dir, Links: links}
}

// SubmitVideos handles POST /v1/tables/:code/videos.  The body carries
// a JSON object with a "links" array; each link becomes its own queue
// item.  The whole batch is validated before anything is queued, so a
// single bad link rejects the request without partial writes.  On
// success it returns 201 Created with the created items.
func (h *PatronHandler) SubmitVideos(c echo.Context) error {
    code := strings.TrimSpace(c.Param("code"))
    if code == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "table code is required"})
    }

    var body struct {
        Links []string `json:"links"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if len(body.Links) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "links is required"})
    }

    // Reject the batch up front if any link fails validation.
    for _, link := range body.Links {
        if _, err := h.Links.Validate(link); err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid link", "link": link})
        }
    }

    ctx := c.Request().Context()

    // Resolve the table server-side from the submitted code.  A 404
    // here deliberately reveals nothing about which codes exist.
    table, err := h.Directory.GetTableByCode(ctx, code)
    if err != nil {
        if errors.Is(err, scheduler.ErrTableNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    created := make([]model.QueueItem, 0, len(body.Links))
    for _, link := range body.Links {
        item, err := h.Scheduler.Submit(ctx, table.ID, link)
        if err != nil {
            switch {
            case errors.Is(err, scheduler.ErrInvalidPayload):
                return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid link", "link": link})
            case errors.Is(err, scheduler.ErrTableNotFound):
                return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
            default:
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to queue video"})
            }
        }
        created = append(created, *item)

        // Fire the queued event; a dead broker must not fail the request.
        ev := queue.VideoQueuedEvent{
            VideoID:     item.ID,
            VenueID:     item.VenueID,
            TableID:     item.TableID,
            TableNumber: table.Number,
            Link:        item.Link,
            YouTubeID:   item.YouTubeID,
            SubmittedAt: item.SubmittedAt.UTC().Format(time.RFC3339),
        }
        if err := queue_publisher.PublishVideoQueued(ctx, ev); err != nil {
            log.Printf("patron-submit: publish video.queued failed: %v", err)
        }
    }

    return c.JSON(http.StatusCreated, echo.Map{"videos": created})
}

// ListTableVideos handles GET /v1/tables/:id/videos.  It returns every
// request the table has made, in submission order and across all
// states, for the patron's "my requests" display.  The route sits
// behind the short-TTL response cache.
func (h *PatronHandler) ListTableVideos(c echo.Context) error {
    tableID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || tableID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
    }

    items, err := h.Scheduler.ListByTable(c.Request().Context(), tableID)
    if err != nil {
        if errors.Is(err, scheduler.ErrTableNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"table_id": tableID, "videos": items})
}
