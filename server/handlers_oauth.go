package server

import (
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/onnwee/stuck-bot/db"
	"github.com/onnwee/stuck-bot/twitchapi"
)

// HandleTwitchOAuthStart redirects the operator to Twitch's authorize page.
// This is a one-time bootstrap; the background refresher keeps the stored
// token alive afterwards.
func (h *Handlers) HandleTwitchOAuthStart(w http.ResponseWriter, r *http.Request) {
	clientID := os.Getenv("TWITCH_CLIENT_ID")
	redirectURI := os.Getenv("TWITCH_REDIRECT_URI")
	if clientID == "" || redirectURI == "" {
		http.Error(w, "TWITCH_CLIENT_ID and TWITCH_REDIRECT_URI must be set", http.StatusInternalServerError)
		return
	}
	scopes := os.Getenv("TWITCH_SCOPES")
	if scopes == "" {
		scopes = "chat:read chat:edit"
	}

	state := uuid.New().String()
	if !h.addOAuthState(state) {
		http.Error(w, "too many pending authorizations, try again later", http.StatusServiceUnavailable)
		return
	}

	authURL, err := twitchapi.BuildAuthorizeURL(clientID, redirectURI, scopes, state)
	if err != nil {
		slog.Error("failed to build authorize url", slog.Any("err", err))
		http.Error(w, "failed to build authorize url", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// HandleTwitchOAuthCallback exchanges the auth code and stores the token.
func (h *Handlers) HandleTwitchOAuthCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if errCode := q.Get("error"); errCode != "" {
		http.Error(w, "authorization denied: "+errCode, http.StatusBadRequest)
		return
	}
	code := q.Get("code")
	state := q.Get("state")
	if code == "" || state == "" {
		http.Error(w, "missing code or state", http.StatusBadRequest)
		return
	}
	if !h.consumeOAuthState(state) {
		http.Error(w, "invalid or expired state", http.StatusBadRequest)
		return
	}

	clientID := os.Getenv("TWITCH_CLIENT_ID")
	clientSecret := os.Getenv("TWITCH_CLIENT_SECRET")
	redirectURI := os.Getenv("TWITCH_REDIRECT_URI")
	if clientID == "" || clientSecret == "" || redirectURI == "" {
		http.Error(w, "twitch oauth is not configured", http.StatusInternalServerError)
		return
	}

	tok, err := twitchapi.ExchangeAuthCode(r.Context(), clientID, clientSecret, code, redirectURI)
	if err != nil {
		slog.Error("twitch code exchange failed", slog.Any("err", err))
		http.Error(w, "code exchange failed", http.StatusBadGateway)
		return
	}

	expiry := twitchapi.ComputeExpiry(tok.ExpiresIn)
	scope := strings.Join(tok.Scope, " ")
	if err := db.UpsertOAuthToken(r.Context(), h.db, "twitch", tok.AccessToken, tok.RefreshToken, expiry, scope); err != nil {
		slog.Error("failed to store twitch token", slog.Any("err", err))
		http.Error(w, "failed to store token", http.StatusInternalServerError)
		return
	}

	slog.Info("twitch oauth token stored", slog.Time("expiry", expiry))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Twitch authorization complete. The bot can now connect to chat.\n"))
}
