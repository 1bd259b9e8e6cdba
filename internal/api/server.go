package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JustinTDCT/PosterVault/internal/config"
	"github.com/JustinTDCT/PosterVault/internal/repository"
	"github.com/JustinTDCT/PosterVault/internal/version"
	"github.com/JustinTDCT/PosterVault/internal/webhook"
)

// Server is the HTTP surface: webhook intake plus a read-mostly status API
// over the cache tables.
type Server struct {
	config       *config.Config
	media        *repository.MediaCacheRepository
	collections  *repository.CollectionCacheRepository
	posters      *repository.PosterRepository
	orphans      *repository.OrphanRepository
	plexItems    *repository.PlexRepository
	jobs         *repository.JobRepository
	runState     *repository.RunStateRepository
	settingsRepo *repository.SettingsRepository
	webhooks     *webhook.Handler

	httpServer *http.Server
}

func NewServer(cfg *config.Config, media *repository.MediaCacheRepository, collections *repository.CollectionCacheRepository,
	posters *repository.PosterRepository, orphans *repository.OrphanRepository, plexItems *repository.PlexRepository,
	jobs *repository.JobRepository, runState *repository.RunStateRepository, settingsRepo *repository.SettingsRepository,
	webhooks *webhook.Handler) *Server {
	return &Server{
		config:       cfg,
		media:        media,
		collections:  collections,
		posters:      posters,
		orphans:      orphans,
		plexItems:    plexItems,
		jobs:         jobs,
		runState:     runState,
		settingsRepo: settingsRepo,
		webhooks:     webhooks,
	}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Mount("/webhook", s.webhooks.Router())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.status)
		r.Get("/posters", s.listPosters)
		r.Get("/orphans", s.listOrphans)
		r.Delete("/orphans/{id}", s.deleteOrphan)
		r.Get("/plex/{instance}/{library}", s.listPlexLibrary)
		r.Get("/jobs", s.listJobs)
		r.Get("/settings", s.listSettings)
		r.Put("/settings", s.updateSettings)
		r.Get("/settings/{key}", s.getSetting)
		r.Delete("/settings/{key}", s.deleteSetting)
	})
	return r
}

// Start runs the HTTP server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[api] listening on %s (version %s)", s.httpServer.Addr, version.Version())
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
