// Command stuck-bot bridges a Twitch chat channel to Discord.
// It:
//   - Loads configuration and initializes structured logging.
//   - Connects to Postgres and runs idempotent migrations.
//   - Joins Twitch chat, dispatches !-commands, and manages a viewer queue.
//   - Relays formatted code snippets and broadcasts to a Discord channel.
//   - Exposes an HTTP server with /healthz, /readyz, /status, /queue,
//     /metrics, and the Twitch OAuth bootstrap flow.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"log/slog"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // G108: pprof endpoints enabled only when ENABLE_PPROF=1
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/onnwee/stuck-bot/bot"
	"github.com/onnwee/stuck-bot/config"
	"github.com/onnwee/stuck-bot/db"
	"github.com/onnwee/stuck-bot/discordapi"
	"github.com/onnwee/stuck-bot/format"
	"github.com/onnwee/stuck-bot/oauth"
	"github.com/onnwee/stuck-bot/queue"
	"github.com/onnwee/stuck-bot/server"
	"github.com/onnwee/stuck-bot/telemetry"
	"github.com/onnwee/stuck-bot/twitchapi"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load(".env")

	// Configure logging (level + format). Defaults: level=info, format=text.
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	logFormat := strings.ToLower(os.Getenv("LOG_FORMAT")) // text | json
	var handler slog.Handler
	switch logFormat {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))
	slog.Info("logger initialized", slog.String("level", lvl.String()))

	// Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	// Metrics / telemetry init
	telemetry.Init()

	// Initialize OpenTelemetry tracing (optional; requires OTEL_EXPORTER_OTLP_ENDPOINT)
	shutdown, err := telemetry.InitTracing("stuck-bot", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdown()

	// DB
	database, err := db.Connect(cfg.DBDsn)
	if err != nil {
		slog.Error("failed to open db", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("failed to close database", slog.Any("err", err))
		}
	}()

	// Versioned migrations first; fall back to the embedded SQL schema for
	// deployments created before the migrations directory existed.
	slog.Info("running database migrations", slog.String("component", "db_migrate"))
	if err := db.RunMigrations(database); err != nil {
		slog.Warn("versioned migrations failed, attempting embedded SQL fallback",
			slog.Any("err", err),
			slog.String("component", "db_migrate"))
		if err := db.Migrate(context.Background(), database); err != nil {
			slog.Error("failed to migrate db (both versioned and embedded SQL failed)", slog.Any("err", err))
			os.Exit(1)
		}
	}

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Record process start time for operational visibility.
	if err := db.SetKV(ctx, database, "started_at", time.Now().UTC().Format(time.RFC3339)); err != nil {
		slog.Warn("failed to record start time", slog.Any("err", err))
	}

	// Commands: embedded defaults, optionally overridden by COMMANDS_FILE.
	commands, err := bot.LoadCommandSetFile(cfg.CommandsFile)
	if err != nil {
		slog.Error("failed to load command set", slog.Any("err", err))
		os.Exit(1)
	}

	formatter, err := format.NewCmdFormatter(cfg.FormatCmd, cfg.FormatTimeout)
	if err != nil {
		slog.Error("invalid FORMAT_CMD", slog.Any("err", err))
		os.Exit(1)
	}

	mgr := queue.NewManager()

	var secondary bot.SecondaryPoster
	if err := cfg.ValidateDiscordReady(); err != nil {
		slog.Warn("discord relay disabled", slog.Any("err", err))
	} else {
		secondary = &discordapi.Client{Token: cfg.DiscordBotToken}
	}

	b := &bot.Bot{
		Commands:  commands,
		Exec:      &bot.Executor{Queue: mgr, Formatter: formatter, DiscordChannelID: cfg.DiscordChannelID},
		Secondary: secondary,
		Record: func(rctx context.Context, channel, login, command, text string) error {
			return db.InsertCommandLog(rctx, database, channel, login, command, text)
		},
	}

	// Chat credentials: env token wins, otherwise the stored OAuth token. If
	// neither exists the bot stays out of chat until /auth/twitch/start is
	// completed and the process restarts.
	if err := cfg.ValidateChatReady(); err != nil {
		slog.Warn("chat bridge disabled", slog.Any("err", err))
	} else {
		token := cfg.TwitchOAuthToken
		if token == "" {
			tctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			access, _, _, _, err := db.GetOAuthToken(tctx, database, "twitch")
			cancel()
			if err != nil {
				slog.Warn("no stored twitch token", slog.Any("err", err))
			}
			token = access
		}
		if token == "" {
			slog.Warn("chat bridge disabled: no twitch token; set TWITCH_OAUTH_TOKEN or visit /auth/twitch/start")
		} else {
			go bot.StartChatBridge(ctx, b, cfg.TwitchBotUsername, token, cfg.TwitchChannel)
		}
	}

	// Keep the stored Twitch token fresh so restarts always find a live one.
	if cfg.TwitchClientID != "" && cfg.TwitchClientSecret != "" {
		oauth.StartRefresher(ctx, database, "twitch", 5*time.Minute, 15*time.Minute, func(rctx context.Context, refreshToken string) (string, string, time.Time, string, error) {
			res, err := twitchapi.RefreshToken(rctx, cfg.TwitchClientID, cfg.TwitchClientSecret, refreshToken)
			if err != nil {
				return "", "", time.Time{}, "", err
			}
			return res.AccessToken, res.RefreshToken, twitchapi.ComputeExpiry(res.ExpiresIn), strings.Join(res.Scope, " "), nil
		})
	}

	// Enable pprof profiling endpoints in debug mode (ENABLE_PPROF=1)
	if os.Getenv("ENABLE_PPROF") == "1" {
		pprofAddr := os.Getenv("PPROF_ADDR")
		if pprofAddr == "" {
			pprofAddr = "localhost:6060"
		}
		go func() {
			slog.Info("pprof profiling enabled", slog.String("addr", pprofAddr))
			srv := &http.Server{
				Addr:              pprofAddr,
				Handler:           nil, // default mux exposes /debug/pprof
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       10 * time.Second,
				WriteTimeout:      10 * time.Second,
				IdleTimeout:       60 * time.Second,
			}
			if err := srv.ListenAndServe(); err != nil {
				slog.Error("pprof server error", slog.Any("err", err))
			}
		}()
	}

	// HTTP server (health/status/queue/metrics/oauth)
	go func() {
		if err := server.Start(ctx, database, mgr, commands, cfg.HTTPAddr); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	// Block until shutdown signal
	<-ctx.Done()
	slog.Info("shutting down")
}
