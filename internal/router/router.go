package router // router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // Echo web framework used for routing
    "github.com/redis/go-redis/v9"

    "github.com/musicbares/video-queue/internal/config"
    "github.com/musicbares/video-queue/internal/handler"
    "github.com/musicbares/video-queue/internal/middleware"
)

// RegisterRoutes wires every route of the service onto the provided
// Echo instance.  Three surfaces exist:
//
//   - unauthenticated infrastructure: the health check;
//   - the patron surface: submitting links by table code and viewing a
//     table's requests — no login, but rate limited (and the listing is
//     served through the short-TTL response cache);
//   - the operator surface under /v1: queue view and playback control,
//     behind JWT verification and the OWNER role.
//
// The redis client may be nil, in which case rate limiting and caching
// quietly disable themselves.
func RegisterRoutes(e *echo.Echo, p *handler.PatronHandler, o *handler.OperatorHandler, jwtSecret string, rdb *redis.Client) {
    // Health check for load balancers and monitoring.
    e.GET("/healthz", handler.Health)

    rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
    cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

    // Patron surface.  Submission is the abuse magnet, so it carries
    // the limiter; the listing is read-heavy and gets the cache.
    e.POST("/v1/tables/:code/videos", p.SubmitVideos, rateLimit)
    e.GET("/v1/tables/:id/videos", p.ListTableVideos, cache)

    // Operator surface.  Tokens are issued by the venue management
    // backend; this service only verifies them and requires the OWNER
    // role on every playback-control route.
    op := e.Group("/v1")
    op.Use(middleware.JWTAuth(jwtSecret))
    op.Use(middleware.RequireRole("OWNER"))
    op.GET("/venues/:id/queue", o.GetQueue)
    op.POST("/venues/:id/queue/next", o.TakeNext)
    op.PUT("/videos/:id/playing", o.MarkPlaying)
    op.PUT("/videos/:id/finished", o.Complete)
    op.DELETE("/videos/:id", o.Remove)
}
