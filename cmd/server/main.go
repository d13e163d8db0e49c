package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/quotebuilder/sketchpad/backend-go/internal/auth"
	"github.com/quotebuilder/sketchpad/backend-go/internal/config"
	"github.com/quotebuilder/sketchpad/backend-go/internal/db"
	"github.com/quotebuilder/sketchpad/backend-go/internal/export"
	mw "github.com/quotebuilder/sketchpad/backend-go/internal/middleware"
	"github.com/quotebuilder/sketchpad/backend-go/internal/session"
	"github.com/quotebuilder/sketchpad/backend-go/internal/sketch"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	store := sketch.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		slog.Error("ensure schema", "error", err)
		os.Exit(1)
	}

	authService := auth.NewService(cfg.JWTSecret)
	sketchHandler := sketch.NewHandler(store)
	exportHandler := export.NewHandler(export.New(cfg.ExportOptions()))

	hubCtx, stopHub := context.WithCancel(ctx)
	hub := session.NewHub()
	go hub.Run(hubCtx)
	wsHandler := session.NewHandler(hub, authService, store, cfg.EditorOptions(), cfg.OriginPatterns())

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Stateless flattening of a posted snapshot
	r.HandleFunc("/export/png", exportHandler.ExportImage).Methods("POST", "OPTIONS")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/quotes/{quoteId}/sketch", sketchHandler.Latest).Methods("GET")
	api.HandleFunc("/quotes/{quoteId}/sketch", sketchHandler.Upload).Methods("POST")
	api.HandleFunc("/quotes/{quoteId}/sketches", sketchHandler.List).Methods("GET")

	// WebSocket endpoint, token passed as a query param
	r.HandleFunc("/ws/sketch/{quoteId}", wsHandler.ServeWS)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Close live sessions before the listener goes away
		stopHub()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
