package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/onnwee/stuck-bot/db"
)

// HandleHealthz reports liveness: the process is up and the database answers a
// ping. It deliberately does not check Twitch or Discord reachability.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		slog.Warn("healthz db ping failed", slog.Any("err", err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "db": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleReadyz reports readiness: the database answers and chat credentials
// are available, either from the environment or a stored OAuth token.
func (h *Handlers) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "db": err.Error()})
		return
	}
	if os.Getenv("TWITCH_OAUTH_TOKEN") == "" {
		access, _, _, _, err := db.GetOAuthToken(ctx, h.db, "twitch")
		if err != nil || access == "" {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"reason": "no twitch credentials; set TWITCH_OAUTH_TOKEN or complete /auth/twitch/start",
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
