package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vbonduro/fieldtech/internal/auth"
	"github.com/vbonduro/fieldtech/internal/config"
	"github.com/vbonduro/fieldtech/internal/db"
	"github.com/vbonduro/fieldtech/internal/events"
	"github.com/vbonduro/fieldtech/internal/events/kafka"
	"github.com/vbonduro/fieldtech/internal/harp"
	"github.com/vbonduro/fieldtech/internal/job"
	"github.com/vbonduro/fieldtech/internal/logging"
	"github.com/vbonduro/fieldtech/internal/mailer"
	"github.com/vbonduro/fieldtech/internal/photostore/local"
	"github.com/vbonduro/fieldtech/internal/realtime"
	"github.com/vbonduro/fieldtech/internal/service"
	"github.com/vbonduro/fieldtech/internal/store"
	"github.com/vbonduro/fieldtech/internal/vision"
	claudevision "github.com/vbonduro/fieldtech/internal/vision/claude"
	ollamavision "github.com/vbonduro/fieldtech/internal/vision/ollama"
	"github.com/vbonduro/fieldtech/internal/web"
)

const (
	shutdownTimeout = 15 * time.Second
	// reminderWindow is how far ahead service and inspection reminders look.
	reminderWindow = 14 * 24 * time.Hour
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	if err := run(cfg, logger); err != nil {
		logger.Error("fieldtech stopped", "error", err)
		cleanup()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	blobs, err := local.New(cfg.PhotoPath)
	if err != nil {
		return err
	}

	checklist, err := harp.LoadChecklist()
	if err != nil {
		return err
	}

	hub := realtime.NewHub(64)
	publishers := events.Fanout{hub}
	if cfg.KafkaEnabled() {
		producer := kafka.NewProducer(logger, cfg.Kafka.Brokers, cfg.Kafka.EventsTopic)
		defer producer.Close()
		publishers = append(publishers, producer)
		logger.Info("publishing change events to kafka", "topic", cfg.Kafka.EventsTopic)
	}
	if cfg.MailEnabled() {
		logger.Info("email notifications enabled", "host", cfg.SMTP.Host)
	}

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	svc := service.New(service.Deps{
		Stores:    store.New(database),
		Blobs:     blobs,
		Vision:    newVisionAnalyzer(cfg, logger),
		Mailer:    mailer.New(cfg.SMTP),
		Events:    publishers,
		Tokens:    tokens,
		Checklist: checklist,
		Billing:   cfg.Billing,
		Logger:    logger,
	})

	if _, err := svc.Users.Bootstrap(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		return err
	}

	jobs := job.NewService().
		RegisterJob("sweep overdue invoices", cfg.Jobs.OverdueInterval, func(ctx context.Context) error {
			_, err := svc.Invoices.SweepOverdue(ctx, time.Now())
			return err
		}).
		RegisterJob("notify low stock", cfg.Jobs.LowStockInterval, svc.Parts.NotifyLowStock).
		RegisterJob("remind service due", cfg.Jobs.ServiceDueInterval, func(ctx context.Context) error {
			_, err := svc.Reminders.ServiceDue(ctx, reminderWindow)
			return err
		}).
		RegisterJob("remind inspection due", cfg.Jobs.ServiceDueInterval, func(ctx context.Context) error {
			_, err := svc.Reminders.InspectionDue(ctx, reminderWindow)
			return err
		})
	jobs.Start(ctx)
	defer func() {
		stop()
		jobs.Stop()
	}()

	server := web.NewServer(web.Options{
		Services:       svc,
		Tokens:         tokens,
		Hub:            hub,
		Health:         database.PingContext,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	}).HTTPServer(cfg.ListenAddr)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newVisionAnalyzer returns nil when nameplate reading is disabled.
func newVisionAnalyzer(cfg *config.Config, logger *slog.Logger) vision.Analyzer {
	switch cfg.Vision.Backend {
	case "claude":
		if cfg.Vision.ClaudeAPIKey == "" {
			logger.Error("CLAUDE_API_KEY is required when VISION_BACKEND=claude")
			return nil
		}
		logger.Info("using Claude vision backend", "model", cfg.Vision.ClaudeModel)
		return claudevision.NewClaudeAnalyzer(cfg.Vision.ClaudeAPIKey, cfg.Vision.ClaudeModel)
	case "ollama":
		logger.Info("using Ollama vision backend", "model", cfg.Vision.OllamaModel)
		return ollamavision.NewOllamaAnalyzer(cfg.Vision.OllamaHost, cfg.Vision.OllamaModel, logger)
	default:
		logger.Info("nameplate reading disabled")
		return nil
	}
}
