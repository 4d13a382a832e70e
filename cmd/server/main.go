package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/softrender/softrender/internal/asset"
	"github.com/softrender/softrender/internal/auth"
	"github.com/softrender/softrender/internal/config"
	"github.com/softrender/softrender/internal/db"
	"github.com/softrender/softrender/internal/document"
	"github.com/softrender/softrender/internal/export"
	mw "github.com/softrender/softrender/internal/middleware"
	"github.com/softrender/softrender/internal/scenes"
	"github.com/softrender/softrender/internal/store"
	"github.com/softrender/softrender/internal/stream"
)

func main() {
	issueToken := flag.String("issue-token", "", "print a bearer token for this subject and exit")
	tokenTTL := flag.Duration("token-ttl", auth.DefaultTokenTTL, "lifetime of tokens printed by -issue-token")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	authService := auth.NewService(cfg.JWTSecret)
	if *issueToken != "" {
		token, err := authService.IssueToken(*issueToken, *tokenTTL)
		if err != nil {
			slog.Error("issue token", "error", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var st store.Store
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pg := store.NewPostgres(pool)
		if err := pg.Migrate(ctx); err != nil {
			slog.Error("migrate database", "error", err)
			os.Exit(1)
		}
		st = pg
	} else {
		slog.Warn("DATABASE_URL not set, scenes are kept in memory")
		st = store.NewMemory()
	}
	if !authService.Enabled() {
		slog.Warn("JWT_SECRET not set, the scene API is open")
	}

	// Seed the sample scenes so a fresh server has something to show
	sceneService := scenes.NewService(st, cfg.RenderWidth, cfg.RenderHeight)
	sceneService.SetMaxSize(cfg.MaxRenderWidth, cfg.MaxRenderHeight)
	if list, err := sceneService.List(ctx); err == nil && len(list) == 0 {
		for name, sample := range document.Samples {
			if _, err := sceneService.Create(ctx, sample()); err != nil {
				slog.Error("seed sample scene", "sample", name, "error", err)
			}
		}
	}

	hub := stream.NewHub()
	sceneService.OnUpdate(func(sceneID string, doc *document.Document) {
		if n := hub.Reload(sceneID, doc); n > 0 {
			slog.Info("pushed scene update", "scene", sceneID, "clients", n)
		}
	})

	assetHandler := asset.NewHandler(cfg.AssetDir)
	sceneHandler := scenes.NewHandler(sceneService, assetHandler)
	exportHandler := export.NewHandler(cfg.FfmpegPath, cfg.MaxExportFrames, sceneService)
	streamHandler := stream.NewHandler(hub, sceneService, authService, cfg.Origins())

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

	// Stateless rendering (public)
	r.HandleFunc("/render", sceneHandler.Render).Methods("POST", "OPTIONS")

	// Asset endpoints (public)
	r.HandleFunc("/assets/upload", assetHandler.Upload).Methods("POST", "OPTIONS")
	r.PathPrefix("/assets/").Handler(assetHandler.Serve()).Methods("GET")

	// Client-rendered frame upload (public)
	r.HandleFunc("/export/video", exportHandler.ExportVideo).Methods("POST", "OPTIONS")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/scenes", sceneHandler.List).Methods("GET")
	api.HandleFunc("/scenes", sceneHandler.Create).Methods("POST")
	api.HandleFunc("/scenes/{sceneId}", sceneHandler.Get).Methods("GET")
	api.HandleFunc("/scenes/{sceneId}", sceneHandler.Update).Methods("PUT")
	api.HandleFunc("/scenes/{sceneId}", sceneHandler.Delete).Methods("DELETE")
	api.HandleFunc("/scenes/{sceneId}/image", sceneHandler.Image).Methods("GET")
	api.HandleFunc("/scenes/{sceneId}/snapshot", sceneHandler.Snapshot).Methods("POST")
	api.HandleFunc("/assets/{assetId}", assetHandler.DeleteAsset).Methods("DELETE")

	// Server-side export, protected like the API it reads from
	exportRoute := r.PathPrefix("/export").Subrouter()
	exportRoute.Use(authService.AuthMiddleware)
	exportRoute.HandleFunc("/{sceneId}", exportHandler.ExportScene).Methods("POST", "OPTIONS")

	// WebSocket endpoint; the token travels in the query string
	r.Handle("/ws/scenes/{sceneId}", streamHandler)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Shutdown does not close hijacked connections
		hub.Stop()

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
