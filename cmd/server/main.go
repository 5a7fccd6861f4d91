package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/musicbares/video-queue/internal/config"
	"github.com/musicbares/video-queue/internal/database"
	"github.com/musicbares/video-queue/internal/handler"
	"github.com/musicbares/video-queue/internal/queue"
	"github.com/musicbares/video-queue/internal/repository"
	"github.com/musicbares/video-queue/internal/router"
	"github.com/musicbares/video-queue/internal/scheduler"
	"github.com/musicbares/video-queue/internal/validate"
)

func main() {
	// Load .env when present; real deployments set the environment
	// directly and the file is simply absent.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Storage and directory collaborators on MySQL.
	videos := repository.NewVideoRepo(db)
	directory := repository.NewDirectoryRepo(db)
	links := validate.NewYouTubeValidator()

	// The scheduler core: fairness selection + guarded state changes.
	sched := scheduler.New(videos, directory, links)

	// Redis is optional; nil disables rate limiting and caching.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and caching disabled")
	}

	patron := handler.NewPatronHandler(sched, directory, links)
	operator := handler.NewOperatorHandler(sched)

	e := echo.New()
	router.RegisterRoutes(e, patron, operator, cfg.JWTSecret, rdb)

	// Background consumer writing the venue's playback audit log.
	go func() {
		if err := queue.StartPlaybackConsumer(); err != nil {
			log.Printf("playback consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
