package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"fetcharr/config"
	"fetcharr/handlers"
	"fetcharr/middleware"
	"fetcharr/services"
	"fetcharr/shared/httpclient"
	"fetcharr/shared/logger"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.Environment, cfg.Debug)
	httpclient.Debug = cfg.Debug

	services.InitSessionStore(cfg)

	// Clients for the external collaborators
	indexer := services.NewIndexerClient(cfg)
	deluge := services.NewDelugeClient(cfg)
	jellyfin := services.NewJellyfinClient(cfg)
	tmdb := services.NewTMDBClient(cfg)
	synology := services.NewSynologyClient(cfg)

	// Orchestration pipeline
	guard := services.NewScanGuard()
	registry := services.NewDownloadRegistry()
	tracker := services.NewProgressTracker(deluge, jellyfin, registry, guard)
	library := services.NewLibraryService(jellyfin, tmdb)
	downloads := services.NewDownloadService(cfg, indexer, deluge, jellyfin, tmdb, library, tracker, guard)

	authHandler := handlers.NewAuthHandler(cfg)
	searchHandler := handlers.NewSearchHandler(downloads, tmdb)
	downloadHandler := handlers.NewDownloadHandler(downloads)
	libraryHandler := handlers.NewLibraryHandler(library, jellyfin)
	diskSpaceHandler := handlers.NewDiskSpaceHandler(cfg, synology)

	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	})
	mux.HandleFunc("POST /login", authHandler.Login)
	mux.HandleFunc("POST /logout", authHandler.Logout)

	// Protected API
	protected := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(h)
	}
	mux.Handle("GET /api/search", protected(searchHandler.Search))
	mux.Handle("GET /api/providers", protected(searchHandler.Providers))
	mux.Handle("GET /api/download", protected(downloadHandler.Releases))
	mux.Handle("POST /api/download", protected(downloadHandler.Download))
	mux.Handle("GET /api/download/seasons", protected(downloadHandler.Seasons))
	mux.Handle("POST /api/download/seasons", protected(downloadHandler.DownloadSeasons))
	mux.Handle("POST /api/download/cancel", protected(downloadHandler.Cancel))
	mux.Handle("GET /api/progress", protected(downloadHandler.Progress))
	mux.Handle("GET /api/library", protected(libraryHandler.Check))
	mux.Handle("POST /api/library/batch", protected(libraryHandler.BatchCheck))
	mux.Handle("POST /api/library/scan", protected(libraryHandler.Scan))
	mux.Handle("GET /api/disk-space", protected(diskSpaceHandler.DiskSpace))

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      middleware.Logging(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	slog.Info("starting fetcharr", "port", cfg.ServerPort, "env", cfg.Environment)
	if err := server.ListenAndServe(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}
