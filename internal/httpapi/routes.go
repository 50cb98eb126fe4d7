package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dotapulse/gsi-backend/internal/config"
	"github.com/dotapulse/gsi-backend/internal/hub"
	"github.com/dotapulse/gsi-backend/internal/session"
	"github.com/dotapulse/gsi-backend/internal/ws"
)

func SetupRoutes(cfg config.Config, tracker *session.Tracker, h *hub.Hub, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/gsi", Ingest(tracker, h, cfg.AuthToken, log))
	r.Get("/ws", ws.Handler(h, cfg.DevMode(), log))
	r.Get("/stats", Stats(tracker, h))
	r.Get("/healthz", Healthz)
	return r
}
