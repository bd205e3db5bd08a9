package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/thelogbook/logbook/internal/auth"
	"github.com/thelogbook/logbook/internal/bus"
	"github.com/thelogbook/logbook/internal/cache"
	"github.com/thelogbook/logbook/internal/config"
	"github.com/thelogbook/logbook/internal/events"
	"github.com/thelogbook/logbook/internal/health"
	"github.com/thelogbook/logbook/internal/inventory"
	"github.com/thelogbook/logbook/internal/members"
	"github.com/thelogbook/logbook/internal/metrics"
	"github.com/thelogbook/logbook/internal/minutes"
	"github.com/thelogbook/logbook/internal/modules"
	"github.com/thelogbook/logbook/internal/onboarding"
	"github.com/thelogbook/logbook/internal/retry"
	"github.com/thelogbook/logbook/internal/server"
	"github.com/thelogbook/logbook/internal/store"
	"github.com/thelogbook/logbook/internal/stream"
	"github.com/thelogbook/logbook/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"logbook.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Serve struct{} `cmd:"" help:"Start the intranet server"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	WaitReady struct {
		URL string `help:"Base URL of the server to poll (defaults to server.base_url)"`
	} `cmd:"" name:"waitready" help:"Block until the server reports ready"`

	Watch struct {
		URL    string `help:"Base URL of the server (defaults to server.base_url)"`
		Cookie string `help:"Session cookie for the stream handshake, name=value"`
	} `cmd:"" help:"Follow live inventory changes"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	ctx := kong.Parse(&CLI)

	switch ctx.Command() {
	case "serve":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		setupLogging(cfg)
		if err := runServe(cfg); err != nil {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case "waitready":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		setupLogging(cfg)
		if err := runWaitReady(cfg, CLI.WaitReady.URL); err != nil {
			slog.Error("Readiness wait failed", "error", err)
			os.Exit(1)
		}
	case "watch":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		setupLogging(cfg)
		if err := runWatch(cfg, CLI.Watch.URL, CLI.Watch.Cookie); err != nil {
			slog.Error("Watch failed", "error", err)
			os.Exit(1)
		}
	case "init":
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", CLI.Config)
	case "version":
		fmt.Printf("logbook %s\n", version.Version)
	default:
		_ = ctx.PrintUsage(false)
		os.Exit(1)
	}
}

func setupLogging(cfg *config.Config) {
	level := slog.LevelInfo
	if CLI.Verbose {
		level = slog.LevelDebug
	} else {
		switch cfg.Logging.Level {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// clientBaseURL resolves the server origin for client-side commands:
// an explicit flag wins over the configured base URL.
func clientBaseURL(cfg *config.Config, flag string) string {
	if flag != "" {
		return flag
	}
	if cfg.Server.BaseURL != "" {
		return cfg.Server.BaseURL
	}
	return "http://localhost:8080"
}

// runWaitReady blocks until the server's mandatory dependencies report
// connected, then prints the final health document. Deploy scripts gate
// on its exit code.
func runWaitReady(cfg *config.Config, urlFlag string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	poller := health.NewPoller(clientBaseURL(cfg, urlFlag), nil, retry.ReadinessPolicy(cfg.Readiness))
	doc, err := poller.WaitReady(ctx)
	if err != nil {
		if doc != nil {
			slog.Error("Server not ready", "status", doc.Status,
				"database", doc.Checks.Database, "redis", doc.Checks.Redis)
		}
		return err
	}
	fmt.Printf("ready version=%s status=%s\n", doc.Version, doc.Status)
	return nil
}

// runWatch waits for readiness, then follows the inventory change
// stream until interrupted, printing one line per change.
func runWatch(cfg *config.Config, urlFlag, cookie string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	baseURL := clientBaseURL(cfg, urlFlag)
	poller := health.NewPoller(baseURL, nil, retry.ReadinessPolicy(cfg.Readiness))
	if _, err := poller.WaitReady(ctx); err != nil {
		return err
	}

	client, err := stream.NewClient(baseURL, cookie, retry.StreamPolicy(cfg.Stream),
		func(action string, data json.RawMessage) {
			fmt.Printf("%s %s %s\n", time.Now().Format(time.RFC3339), action, data)
		})
	if err != nil {
		return err
	}
	client.Enable()
	defer client.Disable()

	<-ctx.Done()
	return nil
}

func runServe(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	refCache := cache.New(cache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer refCache.Close()

	busConn, err := bus.Connect(cfg.NATS.URL, cfg.NATS.Subject)
	if err != nil {
		// The intranet still works without the bus; only live stream
		// fan-out across instances is lost.
		slog.Warn("Change bus unavailable, continuing without it", "error", err)
		busConn = nil
	} else {
		defer busConn.Close()
	}

	var archive minutes.Archiver
	if cfg.Archive.Enabled {
		ga, err := minutes.NewGitArchive(cfg.Archive.Path, cfg.Archive.Author, cfg.Archive.Email)
		if err != nil {
			return fmt.Errorf("open minutes archive: %w", err)
		}
		archive = ga
	}

	reg := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(reg)

	sessions := auth.NewManager(st, auth.DefaultTTL)
	roster := members.NewService(st)
	eventSvc := events.NewService(st)
	checker := health.NewChecker(st, refCache)

	var publisher bus.Publisher
	if busConn != nil {
		publisher = busConn
	}
	inventorySvc := inventory.NewService(st, st, publisher)
	minutesSvc := minutes.NewService(st, archive)
	onboardingSvc := onboarding.NewService(st, roster, func(ctx context.Context) bool {
		return checker.Check(ctx).Ready()
	})

	registry := modules.NewRegistry()
	hub := stream.NewHub(sessions.Authorize)

	srv := server.NewServer(server.Deps{
		Config:         cfg,
		Store:          st,
		Cache:          refCache,
		Sessions:       sessions,
		Members:        roster,
		Events:         eventSvc,
		Inventory:      inventorySvc,
		Minutes:        minutesSvc,
		Onboarding:     onboardingSvc,
		Registry:       registry,
		Checker:        checker,
		Hub:            hub,
		Recorder:       recorder,
		MetricsHandler: metrics.HTTPHandler(reg),
	})

	watcher, err := server.NewConfigWatcher(CLI.Config, registry)
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	watcher.ApplyModules(cfg)
	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("start config watcher: %w", err)
	}
	defer watcher.Stop()

	if busConn != nil {
		bridge := server.NewBridge(busConn, hub, recorder)
		if err := bridge.Start(ctx); err != nil {
			return fmt.Errorf("start stream bridge: %w", err)
		}
		defer bridge.Stop()
	}

	sweeper, err := events.NewReminderSweeper(st, events.LogNotifier{}, 5*time.Minute)
	if err != nil {
		return fmt.Errorf("create reminder sweeper: %w", err)
	}
	if err := sweeper.Start(ctx); err != nil {
		return fmt.Errorf("start reminder sweeper: %w", err)
	}
	defer sweeper.Stop()

	sessionSweeper, err := auth.NewSweeper(sessions, time.Hour)
	if err != nil {
		return fmt.Errorf("create session sweeper: %w", err)
	}
	if err := sessionSweeper.Start(ctx); err != nil {
		return fmt.Errorf("start session sweeper: %w", err)
	}
	defer sessionSweeper.Stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Logbook listening", "addr", cfg.Server.Addr, "version", version.Version)
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
