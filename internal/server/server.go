// Package server provides HTTP server initialization and lifecycle
// management for the docgraph API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/scrypster/docgraph/internal/config"
	"github.com/scrypster/docgraph/internal/services"
	"github.com/scrypster/docgraph/web/handlers"
)

// Version is reported by /api/health.
const Version = "1.0.0"

// NewHandler builds the full route table: the authenticated JSON API, the
// open health check and the websocket feed, wrapped in rate limiting and
// security headers.
func NewHandler(cfg *config.Config, svc *services.GraphService, hub *handlers.WebSocketHub) http.Handler {
	api := handlers.NewAPIHandlers(svc)

	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /api/stats", api.GetStats)
	apiMux.HandleFunc("GET /api/entities", api.ListEntities)
	apiMux.HandleFunc("GET /api/entities/{id}", api.GetEntity)
	apiMux.HandleFunc("GET /api/entities/{id}/graph", api.GetEntityGraph)
	apiMux.HandleFunc("POST /api/documents", api.PostDocument)
	apiMux.HandleFunc("POST /api/samples", api.PostSamples)
	apiMux.HandleFunc("POST /api/query", api.PostQuery)
	apiMux.HandleFunc("GET /api/examples", api.GetExamples)
	apiMux.HandleFunc("POST /api/graph/save", api.SaveGraph)
	apiMux.HandleFunc("POST /api/graph/load", api.LoadGraph)
	apiMux.HandleFunc("POST /api/graph/clear", api.ClearGraph)
	apiMux.HandleFunc("GET /api/graph/backups", api.ListBackups)
	apiMux.HandleFunc("POST /api/chat", api.PostChat)

	mux := http.NewServeMux()

	// Health endpoint, no auth required.
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"healthy","version":%q}`, Version)
	})
	mux.Handle("/api/", handlers.RequireAuth(apiMux, cfg))

	// Origin validation guards the websocket instead of the token.
	mux.Handle("/ws", hub)

	limiter := handlers.NewRateLimiter(cfg.Server.RequestsPerSecond, cfg.Server.Burst)
	return handlers.SecurityHeaders(handlers.RateLimitMiddleware(mux, limiter))
}

// AllowedOrigins lists the origin hosts the websocket accepts for cfg.
func AllowedOrigins(cfg *config.Config) []string {
	port := fmt.Sprint(cfg.Server.Port)
	origins := []string{net.JoinHostPort(cfg.Server.Host, port)}
	for _, host := range []string{"localhost", "127.0.0.1"} {
		if host != cfg.Server.Host {
			origins = append(origins, net.JoinHostPort(host, port))
		}
	}
	return origins
}

// Start listens on the configured address and serves until ctx is
// cancelled. It returns the address actually bound (useful with port 0)
// and the websocket hub, which is already subscribed to svc's events.
func Start(ctx context.Context, cfg *config.Config, svc *services.GraphService) (string, *handlers.WebSocketHub, error) {
	listener, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		return "", nil, fmt.Errorf("listen on %s: %w", cfg.Server.Addr(), err)
	}
	addr := listener.Addr().String()

	hub := handlers.NewWebSocketHub(AllowedOrigins(cfg)...)
	go hub.Run()
	svc.Subscribe(hub.Publish)

	srv := &http.Server{
		Handler:      NewHandler(cfg, svc, hub),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // chat requests wait on the LLM
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server: shutdown: %v", err)
		}
		hub.Stop()
	}()

	log.Printf("server: listening on %s", addr)
	return addr, hub, nil
}
