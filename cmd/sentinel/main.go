package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/sentinel/internal/api"
	"github.com/MikeSquared-Agency/sentinel/internal/config"
	"github.com/MikeSquared-Agency/sentinel/internal/engine"
	"github.com/MikeSquared-Agency/sentinel/internal/events"
	"github.com/MikeSquared-Agency/sentinel/internal/mapping"
	"github.com/MikeSquared-Agency/sentinel/internal/notify"
	"github.com/MikeSquared-Agency/sentinel/internal/sla"
	"github.com/MikeSquared-Agency/sentinel/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("sentinel starting", "port", cfg.Port, "policy", cfg.Policy)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Mapping sources, in priority order. All optional: with none configured
	// every report runs against an empty mapping (or an uploaded CSV).
	var sources []mapping.Source
	if cfg.MappingFile != "" {
		sources = append(sources, &mapping.FileSource{Path: cfg.MappingFile})
	}
	if cfg.MappingURL != "" {
		sources = append(sources, mapping.NewHTTPSource(cfg.MappingURL))
	}
	if cfg.DatabaseURL != "" {
		db, err := store.New(ctx, cfg.DatabaseURL, cfg.MappingTable)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		slog.Info("database connected", "table", cfg.MappingTable)
		sources = append(sources, db)
	}
	cache := mapping.NewCache(sources, slog.Default())

	// Classifier rules: compiled-in defaults unless a YAML override is given.
	rules := sla.DefaultRules()
	if cfg.RulesPath != "" {
		if loaded, err := sla.LoadRules(cfg.RulesPath); err != nil {
			slog.Warn("failed to load rules file, using defaults", "path", cfg.RulesPath, "error", err)
		} else {
			rules = loaded
		}
	}

	// NATS (optional — without it sentinel just serves reports).
	var bus *events.Client
	if cfg.NatsURL != "" {
		var err error
		bus, err = events.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer bus.Close()
		slog.Info("NATS connected", "url", cfg.NatsURL)
	}

	// Slack poster (optional — without it there are no breach alerts).
	var poster *notify.Poster
	if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
		poster = notify.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, slog.Default())
		slog.Info("slack poster ready", "channel", cfg.SlackChannel)
	} else {
		slog.Warn("slack not configured — running without breach alerts")
	}

	var pub engine.Publisher
	if bus != nil {
		pub = bus
	}
	var not engine.Notifier
	if poster != nil {
		not = poster
	}
	eng := engine.New(cache, rules, pub, not, cfg.Policy, time.Duration(cfg.SLAMinutes)*time.Minute, slog.Default())

	srv := api.NewServer(cfg.Port, cfg.APIToken, eng, cache)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	if bus != nil {
		if err := bus.Publish(events.SubjectRegistered, map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"port":      cfg.Port,
			"policy":    cfg.Policy,
		}); err != nil {
			slog.Warn("failed to publish registration", "error", err)
		}
	}

	slog.Info("sentinel ready", "port", cfg.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("sentinel stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
