package server

import (
	"net/http"
	"os"
	"strings"
)

// corsConfig controls cross-origin access to the HTTP API.
type corsConfig struct {
	allowedOrigins []string
	allowAll       bool
}

// loadCORSConfig reads CORS_ALLOWED_ORIGINS, a comma-separated origin list.
// Unset or "*" allows every origin, which is fine for a read-mostly API.
func loadCORSConfig() corsConfig {
	raw := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if raw == "" || raw == "*" {
		return corsConfig{allowAll: true}
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return corsConfig{allowedOrigins: origins}
}

func (c corsConfig) allowed(origin string) bool {
	if c.allowAll {
		return true
	}
	for _, o := range c.allowedOrigins {
		if strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

func withCORSConfig(next http.Handler, cfg corsConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && cfg.allowed(origin) {
			if cfg.allowAll {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Correlation-ID")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
