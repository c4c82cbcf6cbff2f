// Package container provides dependency injection and lifecycle management
// for the collaboration approval service.
package container

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/collab-approval/internal/application/port"
	"github.com/garyjia/collab-approval/internal/application/service"
	"github.com/garyjia/collab-approval/internal/config"
	"github.com/garyjia/collab-approval/internal/infrastructure/external/console"
	"github.com/garyjia/collab-approval/internal/infrastructure/external/eventbrite"
	"github.com/garyjia/collab-approval/internal/infrastructure/external/lark"
	"github.com/garyjia/collab-approval/internal/infrastructure/external/openai"
	"github.com/garyjia/collab-approval/internal/infrastructure/external/ses"
	"github.com/garyjia/collab-approval/internal/infrastructure/persistence/repository"
	"github.com/garyjia/collab-approval/internal/infrastructure/worker"
	"github.com/garyjia/collab-approval/migrations"
	"github.com/garyjia/collab-approval/pkg/database"
)

// ServiceDeps holds the ports the application services are built from
type ServiceDeps struct {
	Repo      port.PlanRepository
	Notifier  port.Notifier
	Publisher port.Publisher
	Attendees port.AttendeeSource
	Generator port.PlanGenerator
	Logger    *zap.Logger
}

// ProvideDatabase opens the database and applies the embedded migrations
func ProvideDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*database.DB, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(databaseConfig(cfg), logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(db, logger).Run(ctx, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// ProvideRepository creates the plan repository
func ProvideRepository(db *database.DB, logger *zap.Logger) (port.PlanRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	return repository.NewPlanRepository(db.DB, logger), nil
}

// ProvideNotifier creates the transport selected by notifier.provider
func ProvideNotifier(ctx context.Context, cfg *config.Config, logger *zap.Logger) (port.Notifier, error) {
	switch cfg.Notifier.Provider {
	case config.NotifierSES:
		notifier, err := ses.NewNotifier(ctx, sesConfig(cfg.SES), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create ses notifier: %w", err)
		}
		return notifier, nil
	case config.NotifierLark:
		return lark.NewNotifier(lark.NewSDKClient(larkConfig(cfg.Lark)), logger), nil
	case config.NotifierLog, "":
		return console.NewNotifier(logger, consoleNotifierKeep), nil
	default:
		return nil, fmt.Errorf("unknown notifier provider %q", cfg.Notifier.Provider)
	}
}

// ProvidePublisher creates the Eventbrite client, which also serves attendee lookups
func ProvidePublisher(cfg config.EventbriteConfig, logger *zap.Logger) (*eventbrite.Client, error) {
	client, err := eventbrite.NewClient(eventbriteConfig(cfg), nil, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create eventbrite client: %w", err)
	}
	return client, nil
}

// ProvideGenerator creates the OpenAI plan generator with prompts from
// openai.prompts_path, or the built-in prompts
func ProvideGenerator(cfg config.OpenAIConfig, logger *zap.Logger) (port.PlanGenerator, error) {
	prompts, err := openai.LoadPrompts(cfg.PromptsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}
	return openai.NewGenerator(openAIConfig(cfg), prompts, logger), nil
}

// ProvideWorkflowService wires the notification and workflow services
func ProvideWorkflowService(cfg *config.Config, deps *ServiceDeps) (service.WorkflowService, error) {
	if deps == nil || deps.Repo == nil || deps.Notifier == nil || deps.Publisher == nil || deps.Generator == nil {
		return nil, fmt.Errorf("service dependencies are incomplete")
	}

	logger := &zapLoggerAdapter{logger: deps.Logger}
	notifications := service.NewNotificationService(deps.Notifier, notificationConfig(cfg), logger)

	return service.NewWorkflowService(
		deps.Repo,
		notifications,
		deps.Publisher,
		deps.Attendees,
		deps.Generator,
		workflowConfig(cfg),
		logger,
	), nil
}

// ProvideWorkers registers the background workers enabled in cfg
func ProvideWorkers(cfg config.ReminderConfig, reminder worker.Reminder, logger *zap.Logger) *worker.Manager {
	manager := worker.NewManager(logger)
	if cfg.Enabled {
		manager.Register(worker.NewReminderWorker(reminder, reminderConfig(cfg), logger))
	}
	return manager
}
