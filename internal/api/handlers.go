package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JustinTDCT/PosterVault/internal/httputil"
	"github.com/JustinTDCT/PosterVault/internal/models"
	"github.com/JustinTDCT/PosterVault/internal/version"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"version": version.Version()})
}

// GET /api/v1/status
func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	type scopeStatus struct {
		Instance string `json:"instance"`
		Type     string `json:"type"`
		Matched  int    `json:"matched"`
		Total    int    `json:"total"`
	}

	var scopes []scopeStatus
	for _, inst := range s.config.Radarr {
		matched, total, err := s.media.CountMatched(inst.Name, models.AssetTypeMovie)
		if err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to count movies")
			return
		}
		scopes = append(scopes, scopeStatus{Instance: inst.Name, Type: string(models.AssetTypeMovie), Matched: matched, Total: total})
	}
	for _, inst := range s.config.Sonarr {
		matched, total, err := s.media.CountMatched(inst.Name, models.AssetTypeSeries)
		if err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to count series")
			return
		}
		scopes = append(scopes, scopeStatus{Instance: inst.Name, Type: string(models.AssetTypeSeries), Matched: matched, Total: total})
	}

	lastRun, err := s.runState.LastRun("full")
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to read run state")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version":  version.Version(),
		"last_run": lastRun,
		"scopes":   scopes,
	})
}

// GET /api/v1/posters?type=movie
func (s *Server) listPosters(w http.ResponseWriter, r *http.Request) {
	t := models.AssetType(r.URL.Query().Get("type"))
	switch t {
	case models.AssetTypeMovie, models.AssetTypeSeries, models.AssetTypeCollection:
	default:
		httputil.WriteError(w, http.StatusBadRequest, "INVALID_TYPE", "type must be movie, series or collection")
		return
	}

	rows, err := s.posters.ListByType(t)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to list posters")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rows)
}

// GET /api/v1/orphans
func (s *Server) listOrphans(w http.ResponseWriter, r *http.Request) {
	rows, err := s.orphans.List()
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to list orphans")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rows)
}

// DELETE /api/v1/orphans/{id}
func (s *Server) deleteOrphan(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid orphan id")
		return
	}
	if err := s.orphans.Delete(id); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to delete orphan")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// GET /api/v1/plex/{instance}/{library}
func (s *Server) listPlexLibrary(w http.ResponseWriter, r *http.Request) {
	instance := chi.URLParam(r, "instance")
	library := chi.URLParam(r, "library")
	items, err := s.plexItems.ListLibrary(instance, library)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to list plex snapshot")
		return
	}
	if len(items) == 0 {
		httputil.WriteError(w, http.StatusNotFound, "NOT_FOUND", "no snapshot for that library")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}

// GET /api/v1/jobs?limit=50
func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	limit := httputil.QueryInt(r, "limit", 50, 1, 500)
	jobs, err := s.jobs.ListRecent(limit)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to list jobs")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, jobs)
}

// GET /api/v1/settings
func (s *Server) listSettings(w http.ResponseWriter, r *http.Request) {
	all, err := s.settingsRepo.All()
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to load settings")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, all)
}

// GET /api/v1/settings/{key}
func (s *Server) getSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	value, ok, err := s.settingsRepo.Get(key)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to load setting")
		return
	}
	if !ok {
		httputil.WriteError(w, http.StatusNotFound, "NOT_FOUND", "no such setting")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})
}

// DELETE /api/v1/settings/{key}
func (s *Server) deleteSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := s.settingsRepo.Delete(key); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to delete setting")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// PUT /api/v1/settings
func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	for key, value := range req {
		if err := s.settingsRepo.Set(key, value); err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to save setting")
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"updated": true})
}
