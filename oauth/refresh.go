// Package oauth provides generic token refresh scheduling for providers whose
// tokens are persisted in the oauth_tokens table. It performs jittered checks
// and refreshes when expiry falls within a configured window.
package oauth

import (
	"context"
	"database/sql"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	dbpkg "github.com/onnwee/stuck-bot/db"
)

// KVLastRefreshPrefix keys the kv entry recording a provider's most recent
// successful refresh time (RFC3339). Read by the status endpoint.
const KVLastRefreshPrefix = "last_token_refresh_"

// RefreshFunc performs provider-specific refresh and returns (access, refresh, expiry, scope).
type RefreshFunc func(ctx context.Context, refreshToken string) (string, string, time.Time, string, error)

// StartRefresher launches a goroutine that periodically checks an oauth token
// row and refreshes it when its remaining lifetime drops below window. Reads
// and writes go through the db helpers so encrypted rows keep working.
func StartRefresher(ctx context.Context, db *sql.DB, provider string, interval, window time.Duration, fn RefreshFunc) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	go func() {
		// Randomize initial delay to spread load across instances.
		//nolint:gosec // G404: math/rand is sufficient for scheduling jitter
		initial := time.Duration(rand.Int63n(int64(interval / 2)))
		select {
		case <-ctx.Done():
			return
		case <-time.After(initial):
		}
		for {
			if err := refreshOnce(ctx, db, provider, window, fn); err != nil {
				slog.Warn("token refresh failed", slog.String("provider", provider), slog.Any("err", err))
			}
			// Per-iteration jitter (±20% of interval) for scheduling diversity.
			jitterRange := int64(interval / 5)
			//nolint:gosec // G404: math/rand is sufficient for scheduling jitter
			jitter := time.Duration(rand.Int63n(jitterRange*2) - jitterRange)
			sleep := interval + jitter
			if sleep < interval/2 {
				sleep = interval / 2
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(sleep):
			}
		}
	}()
}

func refreshOnce(ctx context.Context, db *sql.DB, provider string, window time.Duration, fn RefreshFunc) error {
	_, rt, exp, scope, err := dbpkg.GetOAuthToken(ctx, db, provider)
	if err != nil {
		return err
	}
	if rt == "" {
		return nil
	}
	if time.Until(exp) > window {
		return nil
	}
	rctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	newAT, newRT, newExp, newScope, err := fn(rctx, rt)
	if err != nil {
		return err
	}
	if newRT == "" {
		newRT = rt
	}
	if newScope == "" {
		newScope = scope
	}
	if err := dbpkg.UpsertOAuthToken(ctx, db, provider, newAT, newRT, newExp, strings.TrimSpace(newScope)); err != nil {
		return err
	}
	if err := dbpkg.SetKV(ctx, db, KVLastRefreshPrefix+provider, time.Now().UTC().Format(time.RFC3339)); err != nil {
		slog.Warn("failed to record refresh time", slog.String("provider", provider), slog.Any("err", err))
	}
	slog.Info("token refreshed", slog.String("provider", provider))
	return nil
}
