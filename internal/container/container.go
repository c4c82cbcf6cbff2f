package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/collab-approval/internal/application/port"
	"github.com/garyjia/collab-approval/internal/application/service"
	"github.com/garyjia/collab-approval/internal/config"
	"github.com/garyjia/collab-approval/internal/infrastructure/external/eventbrite"
	"github.com/garyjia/collab-approval/internal/infrastructure/worker"
	httpapi "github.com/garyjia/collab-approval/internal/interfaces/http"
	"github.com/garyjia/collab-approval/pkg/database"
)

// Container holds every component and manages their lifecycle
type Container struct {
	config *config.Config
	logger *zap.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	ready  atomic.Bool
	closed atomic.Bool

	db        *database.DB
	repo      port.PlanRepository
	notifier  port.Notifier
	publisher *eventbrite.Client
	generator port.PlanGenerator
	workflow  service.WorkflowService
	workers   *worker.Manager
	server    *httpapi.Server
}

// NewContainer creates a new container from configuration.
// It does not initialize components; call Start to initialize.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components in dependency order:
// database and repository, external clients, services, workers, HTTP server.
// The HTTP server is built but not started; see Server.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)
	c.logger.Info("Starting container initialization")

	if err := c.initDatabase(); err != nil {
		return c.abort(fmt.Errorf("failed to initialize database: %w", err))
	}
	c.logger.Info("Database initialized")

	if err := c.initExternalClients(); err != nil {
		return c.abort(fmt.Errorf("failed to initialize external clients: %w", err))
	}
	c.logger.Info("External clients initialized",
		zap.String("notifier", c.config.Notifier.Provider))

	if err := c.initServices(); err != nil {
		return c.abort(fmt.Errorf("failed to initialize services: %w", err))
	}
	c.logger.Info("Application services initialized")

	if err := c.initWorkers(); err != nil {
		return c.abort(fmt.Errorf("failed to initialize workers: %w", err))
	}
	c.logger.Info("Workers initialized and started")

	c.server = httpapi.NewServer(serverConfig(c.config.Server), c.workflow, c, &zapLoggerAdapter{logger: c.logger})

	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

// abort releases what a failed Start already opened
func (c *Container) abort(err error) error {
	if c.workers != nil {
		_ = c.workers.StopAll()
	}
	if c.db != nil {
		_ = c.db.Close()
		c.db = nil
	}
	c.cancel()
	return err
}

// Close gracefully shuts down all components in reverse order
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error

	if c.cancel != nil {
		c.cancel()
	}

	if c.server != nil {
		if err := c.server.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop http server: %w", err))
		}
	}

	if c.workers != nil {
		if err := c.workers.StopAll(); err != nil {
			c.logger.Error("Failed to stop workers", zap.Error(err))
			errs = append(errs, fmt.Errorf("stop workers: %w", err))
		} else {
			c.logger.Info("Workers stopped")
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		} else {
			c.logger.Info("Database closed")
		}
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// Ready returns true when all components are initialized
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Check reports component health for the /health endpoint
func (c *Container) Check(ctx context.Context) map[string]error {
	status := make(map[string]error)

	if c.db != nil {
		if err := c.db.PingContext(ctx); err != nil {
			status["database"] = fmt.Errorf("ping failed: %w", err)
		} else {
			status["database"] = nil
		}
	} else {
		status["database"] = fmt.Errorf("not initialized")
	}

	if c.config.Reminder.Enabled {
		if c.workers != nil && c.workers.Running() {
			status["workers"] = nil
		} else {
			status["workers"] = fmt.Errorf("not running")
		}
	}

	return status
}

func (c *Container) initDatabase() error {
	db, err := ProvideDatabase(c.ctx, c.config.Database, c.logger)
	if err != nil {
		return err
	}
	c.db = db

	repo, err := ProvideRepository(db, c.logger)
	if err != nil {
		return err
	}
	c.repo = repo
	return nil
}

func (c *Container) initExternalClients() error {
	notifier, err := ProvideNotifier(c.ctx, c.config, c.logger)
	if err != nil {
		return err
	}
	c.notifier = notifier

	publisher, err := ProvidePublisher(c.config.Eventbrite, c.logger)
	if err != nil {
		return err
	}
	c.publisher = publisher

	generator, err := ProvideGenerator(c.config.OpenAI, c.logger)
	if err != nil {
		return err
	}
	c.generator = generator
	return nil
}

func (c *Container) initServices() error {
	wf, err := ProvideWorkflowService(c.config, &ServiceDeps{
		Repo:      c.repo,
		Notifier:  c.notifier,
		Publisher: c.publisher,
		Attendees: c.publisher,
		Generator: c.generator,
		Logger:    c.logger,
	})
	if err != nil {
		return err
	}
	c.workflow = wf
	return nil
}

func (c *Container) initWorkers() error {
	c.workers = ProvideWorkers(c.config.Reminder, c.workflow, c.logger)
	return c.workers.StartAll(c.ctx)
}

// WorkflowService returns the workflow service
func (c *Container) WorkflowService() service.WorkflowService {
	return c.workflow
}

// Server returns the HTTP server built by Start
func (c *Container) Server() *httpapi.Server {
	return c.server
}

// Notifier returns the configured notification transport
func (c *Container) Notifier() port.Notifier {
	return c.notifier
}

// Config returns the container configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// zapLoggerAdapter adapts zap.Logger to the service and http Logger interfaces
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Warn(msg string, keysAndValues ...interface{}) {
	a.logger.Warn(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		if err, isErr := keysAndValues[i+1].(error); isErr {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
