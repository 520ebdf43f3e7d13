package server

import (
	"net/http"
	"os"
	"time"

	"github.com/onnwee/stuck-bot/db"
	"github.com/onnwee/stuck-bot/oauth"
)

type statusResponse struct {
	Channel          string   `json:"channel"`
	Uptime           string   `json:"uptime"`
	QueueDepth       int      `json:"queue_depth"`
	Commands         []string `json:"commands"`
	LastTokenRefresh string   `json:"last_token_refresh,omitempty"`
}

// HandleStatus returns a small operational summary.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var lastRefresh string
	if h.db != nil {
		if v, err := db.GetKV(r.Context(), h.db, oauth.KVLastRefreshPrefix+"twitch"); err == nil {
			lastRefresh = v
		}
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Channel:          os.Getenv("TWITCH_CHANNEL"),
		Uptime:           time.Since(h.startedAt).Round(time.Second).String(),
		QueueDepth:       h.queue.Len(),
		Commands:         h.commands.Tokens(),
		LastTokenRefresh: lastRefresh,
	})
}

type queueEntry struct {
	Position int    `json:"position"`
	Login    string `json:"login"`
	Role     string `json:"role"`
}

// HandleQueue returns the current queue contents, in service order.
func (h *Handlers) HandleQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	snapshot := h.queue.Entries()
	entries := make([]queueEntry, 0, len(snapshot))
	for i, p := range snapshot {
		entries = append(entries, queueEntry{Position: i + 1, Login: p.Login, Role: p.Role.String()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"depth": len(entries), "entries": entries})
}
