package db

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		t.Skip("TEST_PG_DSN not set; skipping postgres test")
	}
	database, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	if err := Migrate(context.Background(), database); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return database
}

func TestMigrateIdempotent(t *testing.T) {
	database := testDB(t)
	// Running twice must not fail.
	if err := Migrate(context.Background(), database); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestOAuthTokenRoundTrip(t *testing.T) {
	database := testDB(t)
	ctx := context.Background()
	expiry := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	if err := UpsertOAuthToken(ctx, database, "twitch-test", "access-1", "refresh-1", expiry, "chat:read chat:edit"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	access, refresh, exp, scope, err := GetOAuthToken(ctx, database, "twitch-test")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if access != "access-1" || refresh != "refresh-1" {
		t.Errorf("got tokens (%q, %q)", access, refresh)
	}
	if !exp.Equal(expiry) {
		t.Errorf("expiry = %v, want %v", exp, expiry)
	}
	if scope != "chat:read chat:edit" {
		t.Errorf("scope = %q", scope)
	}

	// Upsert replaces the row.
	if err := UpsertOAuthToken(ctx, database, "twitch-test", "access-2", "refresh-2", expiry, ""); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	access, _, _, _, err = GetOAuthToken(ctx, database, "twitch-test")
	if err != nil {
		t.Fatalf("get after upsert: %v", err)
	}
	if access != "access-2" {
		t.Errorf("access after upsert = %q, want access-2", access)
	}
}

func TestGetOAuthTokenMissingProvider(t *testing.T) {
	database := testDB(t)
	access, refresh, exp, _, err := GetOAuthToken(context.Background(), database, "never-stored")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if access != "" || refresh != "" || !exp.IsZero() {
		t.Errorf("expected zero values, got (%q, %q, %v)", access, refresh, exp)
	}
}

func TestInsertCommandLog(t *testing.T) {
	database := testDB(t)
	ctx := context.Background()
	if err := InsertCommandLog(ctx, database, "somechannel", "alice", "join", "!join"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	var count int
	if err := database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM command_log WHERE channel='somechannel' AND login='alice' AND command='join'`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count < 1 {
		t.Error("command_log row not found")
	}
}

func TestKVRoundTrip(t *testing.T) {
	database := testDB(t)
	ctx := context.Background()
	if err := SetKV(ctx, database, "test_key", "v1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := SetKV(ctx, database, "test_key", "v2"); err != nil {
		t.Fatalf("set overwrite: %v", err)
	}
	v, err := GetKV(ctx, database, "test_key")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v != "v2" {
		t.Errorf("GetKV = %q, want v2", v)
	}
	if v, err := GetKV(ctx, database, "absent"); err != nil || v != "" {
		t.Errorf("GetKV(absent) = (%q, %v), want empty", v, err)
	}
}
