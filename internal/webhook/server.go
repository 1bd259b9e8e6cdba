package webhook

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JustinTDCT/PosterVault/internal/httputil"
	"github.com/JustinTDCT/PosterVault/internal/repository"
)

// debounceDelay batches webhook bursts (mass library edits fire one event
// per item) into a single trigger.
const debounceDelay = 5 * time.Second

// Handler receives Radarr and Sonarr webhook events, queues a refresh job
// per title, and debounces a trigger callback that wakes the run loop.
type Handler struct {
	token   string
	jobs    *repository.JobRepository
	trigger func()

	mu    sync.Mutex
	timer *time.Timer
}

func NewHandler(token string, jobs *repository.JobRepository, trigger func()) *Handler {
	return &Handler{token: token, jobs: jobs, trigger: trigger}
}

func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/radarr", h.radarr)
	r.Post("/sonarr", h.sonarr)
	return r
}

type radarrEvent struct {
	EventType string `json:"eventType"`
	Movie     struct {
		ID     int    `json:"id"`
		Title  string `json:"title"`
		Year   int    `json:"year"`
		TMDBID int    `json:"tmdbId"`
	} `json:"movie"`
}

type sonarrEvent struct {
	EventType string `json:"eventType"`
	Series    struct {
		ID     int    `json:"id"`
		Title  string `json:"title"`
		Year   int    `json:"year"`
		TVDBID int    `json:"tvdbId"`
	} `json:"series"`
}

func (h *Handler) radarr(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		httputil.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid webhook token")
		return
	}

	var event radarrEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	defer r.Body.Close()

	if event.EventType == "Test" {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"result": "test ok"})
		return
	}

	h.enqueue(w, "radarr_refresh", fmt.Sprintf("radarr/movie/%d", event.Movie.ID), event.Movie.Title)
}

func (h *Handler) sonarr(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		httputil.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid webhook token")
		return
	}

	var event sonarrEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	defer r.Body.Close()

	if event.EventType == "Test" {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"result": "test ok"})
		return
	}

	h.enqueue(w, "sonarr_refresh", fmt.Sprintf("sonarr/series/%d", event.Series.ID), event.Series.Title)
}

func (h *Handler) enqueue(w http.ResponseWriter, jobType, uniqueKey, title string) {
	payload, _ := json.Marshal(map[string]string{"title": title})
	inserted, err := h.jobs.Enqueue(jobType, uniqueKey, payload)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to queue refresh")
		return
	}
	if inserted {
		log.Printf("[webhook] queued %s for %q", jobType, title)
	}
	h.scheduleTrigger()
	httputil.WriteJSON(w, http.StatusAccepted, map[string]bool{"queued": inserted})
}

// scheduleTrigger arms (or rearms) the debounce timer.
func (h *Handler) scheduleTrigger() {
	if h.trigger == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.timer != nil {
		h.timer.Stop()
	}
	h.timer = time.AfterFunc(debounceDelay, h.trigger)
}

func (h *Handler) authorized(r *http.Request) bool {
	if h.token == "" {
		return true
	}
	if r.Header.Get("X-Webhook-Token") == h.token {
		return true
	}
	return r.URL.Query().Get("token") == h.token
}
