// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"time"

	"github.com/drawdash/drawdash/internal/auth"
	"github.com/drawdash/drawdash/internal/config"
	"github.com/drawdash/drawdash/internal/handlers"
	"github.com/drawdash/drawdash/internal/middleware"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	auth.Init()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	srv := handlers.NewServer(cfg, logger)

	// Empty rooms older than the cutoff are reaped hourly.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			srv.SweepRooms(cfg.Game.RoomMaxAge())
		}
	}()

	mux := http.NewServeMux()

	// game websocket
	mux.Handle("/ws", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.WSHandler(srv),
	)))

	// identity + admin endpoints
	mux.Handle("/identity", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.IdentityHandler(srv),
	)))
	mux.Handle("/rooms", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.RoomsHandler(srv),
	)))
	mux.HandleFunc("/healthz", handlers.HealthzHandler())

	logger.Infof("Running on %s", cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
