package container

import (
	"github.com/garyjia/collab-approval/internal/application/service"
	"github.com/garyjia/collab-approval/internal/config"
	"github.com/garyjia/collab-approval/internal/infrastructure/external/eventbrite"
	"github.com/garyjia/collab-approval/internal/infrastructure/external/lark"
	"github.com/garyjia/collab-approval/internal/infrastructure/external/openai"
	"github.com/garyjia/collab-approval/internal/infrastructure/external/ses"
	"github.com/garyjia/collab-approval/internal/infrastructure/worker"
	httpapi "github.com/garyjia/collab-approval/internal/interfaces/http"
	"github.com/garyjia/collab-approval/pkg/database"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// consoleNotifierKeep is how many messages the log notifier retains for inspection
const consoleNotifierKeep = 50

// The functions below translate application configuration into the
// settings structs each component owns.

func databaseConfig(cfg config.DatabaseConfig) database.Config {
	return database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}
}

func sesConfig(cfg config.SESConfig) ses.Config {
	return ses.Config{
		Region:           cfg.Region,
		FromAddress:      cfg.FromAddress,
		ConfigurationSet: cfg.ConfigurationSet,
		AccessKeyID:      cfg.AccessKeyID,
		SecretAccessKey:  cfg.SecretAccessKey,
	}
}

func larkConfig(cfg config.LarkConfig) lark.Config {
	return lark.Config{
		AppID:     cfg.AppID,
		AppSecret: cfg.AppSecret,
	}
}

func openAIConfig(cfg config.OpenAIConfig) openai.Config {
	return openai.Config{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}
}

func eventbriteConfig(cfg config.EventbriteConfig) eventbrite.Config {
	return eventbrite.Config{
		Token:          cfg.Token,
		OrganizationID: cfg.OrganizationID,
		BaseURL:        cfg.BaseURL,
		Timeout:        cfg.Timeout,
	}
}

func notificationConfig(cfg *config.Config) service.NotificationConfig {
	return service.NotificationConfig{
		AppBaseURL: cfg.App.BaseURL,
		SenderName: cfg.App.SenderName,
		Timeout:    cfg.Workflow.NotifyTimeout,
	}
}

func workflowConfig(cfg *config.Config) service.WorkflowConfig {
	listing := service.DefaultListingOptions()
	if cfg.Eventbrite.Timezone != "" {
		listing.Timezone = cfg.Eventbrite.Timezone
	}
	if cfg.Eventbrite.Currency != "" {
		listing.Currency = cfg.Eventbrite.Currency
	}
	if cfg.Eventbrite.Capacity > 0 {
		listing.Capacity = cfg.Eventbrite.Capacity
	}
	if cfg.Eventbrite.LeadTime > 0 {
		listing.LeadTime = cfg.Eventbrite.LeadTime
	}
	listing.Online = cfg.Eventbrite.Online
	listing.Listed = cfg.Eventbrite.Listed

	return service.WorkflowConfig{
		MaxConflictRetries: cfg.Workflow.MaxConflictRetries,
		StoreTimeout:       cfg.Workflow.StoreTimeout,
		PublishTimeout:     cfg.Workflow.PublishTimeout,
		GenerateTimeout:    cfg.OpenAI.Timeout,
		AutoPublish:        cfg.Workflow.AutoPublish,
		Listing:            listing,
	}
}

func reminderConfig(cfg config.ReminderConfig) worker.ReminderConfig {
	return worker.ReminderConfig{
		Schedule:   cfg.Schedule,
		StaleAfter: cfg.StaleAfter,
	}
}

func serverConfig(cfg config.ServerConfig) httpapi.ServerConfig {
	return httpapi.ServerConfig{
		Host:            cfg.Host,
		Port:            cfg.Port,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Version:         Version,
	}
}
