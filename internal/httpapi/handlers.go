package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/dotapulse/gsi-backend/internal/gsi"
	"github.com/dotapulse/gsi-backend/internal/hub"
	"github.com/dotapulse/gsi-backend/internal/session"
)

type IngestResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"sessionId"`
	Broadcast bool   `json:"broadcast"`
	Timestamp int64  `json:"timestamp"`
}

// Ingest receives one raw GSI payload from the game client. Normalize runs
// before any session bookkeeping, so a rejected payload leaves the tracker
// untouched.
func Ingest(tracker *session.Tracker, h *hub.Hub, authToken string, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload gsi.Payload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "malformed body", http.StatusUnprocessableEntity)
			return
		}

		snap, err := gsi.Normalize(&payload, authToken)
		if err != nil {
			switch {
			case errors.Is(err, gsi.ErrUnauthorized):
				log.Warn("ingest rejected", zap.Error(err))
				http.Error(w, "unauthorized", http.StatusUnauthorized)
			case errors.Is(err, gsi.ErrInvalidPayload):
				log.Warn("ingest rejected", zap.Error(err))
				http.Error(w, "invalid payload", http.StatusUnprocessableEntity)
			default:
				log.Error("ingest failed", zap.Error(err))
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		res, err := tracker.Update(snap)
		if err != nil {
			log.Error("session update failed", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if res.Deduplicated {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		h.Inbox() <- hub.BroadcastSnapshot{Snapshot: snap}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(IngestResponse{
			Success:   true,
			SessionID: res.SessionID,
			Broadcast: true,
			Timestamp: snap.Timestamp,
		})
	}
}

type statsResponse struct {
	Sessions session.Stats `json:"sessions"`
	Hub      hub.Stats     `json:"hub"`
}

// Stats exposes the in-memory counters for dashboards and smoke tests.
func Stats(tracker *session.Tracker, h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan hub.Stats, 1)
		h.Inbox() <- hub.GetStats{Reply: reply}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(statsResponse{
			Sessions: tracker.Stats(),
			Hub:      <-reply,
		})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
