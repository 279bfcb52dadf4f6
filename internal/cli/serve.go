package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/foundrgate/foundrgate/internal/audit"
	"github.com/foundrgate/foundrgate/internal/auth"
	"github.com/foundrgate/foundrgate/internal/commands"
	"github.com/foundrgate/foundrgate/internal/config"
	"github.com/foundrgate/foundrgate/internal/events"
	"github.com/foundrgate/foundrgate/internal/gateway"
	"github.com/foundrgate/foundrgate/internal/ledger"
	"github.com/foundrgate/foundrgate/internal/processor"
	"github.com/foundrgate/foundrgate/internal/reply"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the command gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return runServe(cmd.Context(), cfg)
	},
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func runServe(ctx context.Context, cfg *config.Config) error {
	log := newLogger(cfg.LogLevel)

	ledgerClient := ledger.NewClient(cfg.Ledger)
	processorClient := processor.NewClient(cfg.Processor)

	env := &commands.Env{
		Ledger:           ledgerClient,
		Processor:        processorClient,
		DashboardBaseURL: cfg.Gateway.DashboardBaseURL,
	}

	var observers []commands.Observer
	var auditStore *audit.Store
	if strings.TrimSpace(cfg.Audit.Path) != "" {
		store, err := audit.NewStore(cfg.Audit.Path, log)
		if err != nil {
			return fmt.Errorf("failed to open audit store: %w", err)
		}
		defer store.Close()
		auditStore = store
		observers = append(observers, store)
	}
	if publisher := events.NewPublisher(cfg.Events, log); publisher != nil {
		defer publisher.Close()
		observers = append(observers, publisher)
		log.Info("dispatch events enabled", "topic", cfg.Events.Topic)
	}

	registry := commands.DefaultRegistry()
	dispatcher := commands.NewDispatcher(registry, env, log, observers...)

	// The expert roster is advisory; the gateway still serves the core
	// definition when the processor is down.
	var extra []commands.Definition
	infoCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if roster, err := processorClient.BotInfo(infoCtx); err == nil {
		extra = commands.ExpertDefinitions(roster)
	} else {
		log.Warn("bot info unavailable", "error", err)
	}
	cancel()
	doc := registry.Document("FoundrGate founder assistant", extra...)

	opts := gateway.Options{
		Ledger: ledgerClient,
		Log:    log,
	}
	if auditStore != nil {
		opts.Stats = auditStore
	}
	if strings.TrimSpace(cfg.Gateway.PublicKey) != "" {
		verifier, err := auth.NewEnvelopeVerifier(cfg.Gateway.PublicKey)
		if err != nil {
			return err
		}
		opts.Verifier = verifier
	} else {
		log.Warn("no envelope public key configured; bot surface will reject commands")
	}
	if cfg.Slack.Enabled {
		sink, err := reply.NewSlackSink(cfg.Slack)
		if err != nil {
			return err
		}
		opts.Sink = sink
	}

	srv := gateway.NewServer(cfg.Gateway, dispatcher, doc, opts)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Start(ctx)
}
