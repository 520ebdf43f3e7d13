package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/onnwee/stuck-bot/bot"
	"github.com/onnwee/stuck-bot/queue"
)

// maxOAuthStates bounds the pending-state map so a flood of /auth/twitch/start
// requests cannot grow it without limit.
const maxOAuthStates = 10000

// oauthStateTTL is how long an issued state value stays valid.
const oauthStateTTL = 10 * time.Minute

// Handlers holds shared state for HTTP handlers.
type Handlers struct {
	db        *sql.DB
	queue     *queue.Manager
	commands  *bot.CommandSet
	startedAt time.Time

	stateMu sync.Mutex
	states  map[string]time.Time
}

// NewHandlers creates the handler set.
func NewHandlers(db *sql.DB, mgr *queue.Manager, cs *bot.CommandSet) *Handlers {
	return &Handlers{
		db:        db,
		queue:     mgr,
		commands:  cs,
		startedAt: time.Now(),
		states:    make(map[string]time.Time),
	}
}

// addOAuthState records a pending state value, evicting expired entries first.
func (h *Handlers) addOAuthState(state string) bool {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()
	now := time.Now()
	for s, exp := range h.states {
		if now.After(exp) {
			delete(h.states, s)
		}
	}
	if len(h.states) >= maxOAuthStates {
		return false
	}
	h.states[state] = now.Add(oauthStateTTL)
	return true
}

// consumeOAuthState validates and removes a state value.
func (h *Handlers) consumeOAuthState(state string) bool {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()
	exp, ok := h.states[state]
	if !ok {
		return false
	}
	delete(h.states, state)
	return time.Now().Before(exp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", slog.Any("err", err))
	}
}
