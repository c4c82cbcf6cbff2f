package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Reminder resends review requests for plans waiting longer than olderThan
type Reminder interface {
	RemindStale(ctx context.Context, olderThan time.Duration) (int, error)
}

// ReminderConfig controls when reminders run
type ReminderConfig struct {
	Schedule   string
	StaleAfter time.Duration
}

// ReminderWorker nudges reviewers of stale plans on a cron schedule
type ReminderWorker struct {
	reminder Reminder
	config   ReminderConfig
	logger   *zap.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// NewReminderWorker creates a new reminder worker
func NewReminderWorker(reminder Reminder, config ReminderConfig, logger *zap.Logger) *ReminderWorker {
	return &ReminderWorker{
		reminder: reminder,
		config:   config,
		logger:   logger,
	}
}

// Name returns the worker name
func (w *ReminderWorker) Name() string {
	return "reminder_worker"
}

// Start registers the reminder job and starts the scheduler
func (w *ReminderWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cron != nil {
		return fmt.Errorf("reminder worker already running")
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{w.logger})))
	if _, err := c.AddFunc(w.config.Schedule, func() { _, _ = w.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", w.config.Schedule, err)
	}

	c.Start()
	w.cron = c

	w.logger.Info("Reminder worker scheduled",
		zap.String("schedule", w.config.Schedule),
		zap.Duration("stale_after", w.config.StaleAfter))
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (w *ReminderWorker) Stop() error {
	w.mu.Lock()
	c := w.cron
	w.cron = nil
	w.mu.Unlock()

	if c == nil {
		return nil
	}
	<-c.Stop().Done()
	return nil
}

// RunOnce sends reminders for every stale plan
func (w *ReminderWorker) RunOnce(ctx context.Context) (int, error) {
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	sent, err := w.reminder.RemindStale(ctx, w.config.StaleAfter)
	if err != nil {
		w.logger.Error("Reminder run failed", zap.Error(err))
		return sent, err
	}

	if sent > 0 {
		w.logger.Info("Review reminders sent", zap.Int("count", sent))
	} else {
		w.logger.Debug("No stale plans to remind")
	}
	return sent, nil
}

// cronLogger routes cron's own messages to zap
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
