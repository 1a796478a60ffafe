// Package rest exposes a small status surface while a retrieval batch
// runs: run progress, health, and the metrics endpoint.
package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/bagtools/bagfetch/internal/logctx"
	"github.com/bagtools/bagfetch/internal/retriever"
	"github.com/bagtools/bagfetch/internal/telemetry"
	"github.com/go-chi/chi/v5"
)

// StatusHandler reports the progress of the running retrieval batch.
type StatusHandler struct {
	packageID string
	workers   int
	tracker   *retriever.Tracker
	telemetry *telemetry.Telemetry
	started   time.Time
}

// NewStatusHandler creates a new status handler for one retrieval run.
func NewStatusHandler(packageID string, workers int, tracker *retriever.Tracker, tel *telemetry.Telemetry) *StatusHandler {
	return &StatusHandler{
		packageID: packageID,
		workers:   workers,
		tracker:   tracker,
		telemetry: tel,
		started:   time.Now(),
	}
}

// StatusResponse is the JSON body of GET /status.
type StatusResponse struct {
	PackageID     string `json:"package_id"`
	Workers       int    `json:"workers"`
	Total         int64  `json:"total"`
	Attempted     int64  `json:"attempted"`
	Failed        int64  `json:"failed"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// Routes mounts the status endpoints.
func (h *StatusHandler) Routes() chi.Router {
	r := chi.NewRouter()

	mw := telemetry.NewHTTPMiddleware(h.telemetry)
	r.Use(mw.Middleware)

	r.Get("/status", h.getStatus)
	r.Get("/healthz", h.getHealth)
	r.Handle("/metrics", h.telemetry.Handler())

	return r
}

func (h *StatusHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	logger := logctx.LoggerFromContext(r.Context())

	snap := h.tracker.Snapshot()

	resp := StatusResponse{
		PackageID:     h.packageID,
		Workers:       h.workers,
		Total:         snap.Total,
		Attempted:     snap.Attempted,
		Failed:        snap.Failed,
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("failed to encode status response", "err", err)
	}
}

func (h *StatusHandler) getHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
