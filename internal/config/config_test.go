package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("EVENTBRITE_TOKEN", "eb-token")
	t.Setenv("EVENTBRITE_ORG_ID", "org-1")
	t.Setenv("AWS_REGION", "")
	t.Setenv("NOTIFIER_PROVIDER", "")
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, NotifierLog, cfg.Notifier.Provider)
	assert.Equal(t, 3, cfg.Workflow.MaxConflictRetries)
	assert.Equal(t, 5*time.Second, cfg.Workflow.StoreTimeout)
	assert.False(t, cfg.Workflow.AutoPublish)
	assert.Equal(t, "Asia/Singapore", cfg.Eventbrite.Timezone)
	assert.Equal(t, "SGD", cfg.Eventbrite.Currency)
	assert.Equal(t, 100, cfg.Eventbrite.Capacity)
	assert.Equal(t, 30*24*time.Hour, cfg.Eventbrite.LeadTime)
	assert.Equal(t, "0 9 * * *", cfg.Reminder.Schedule)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "org-1", cfg.Eventbrite.OrganizationID)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("WORKFLOW_AUTO_PUBLISH", "true")
	t.Setenv("SES_FROM_ADDRESS", "events@collab.example.com")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
notifier:
  provider: ses
workflow:
  max_conflict_retries: 5
  store_timeout: 2s
reminder:
  schedule: "@every 6h"
  stale_after: 24h
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, NotifierSES, cfg.Notifier.Provider)
	assert.Equal(t, "events@collab.example.com", cfg.SES.FromAddress)
	assert.Equal(t, "ap-southeast-1", cfg.SES.Region)
	assert.Equal(t, 5, cfg.Workflow.MaxConflictRetries)
	assert.Equal(t, 2*time.Second, cfg.Workflow.StoreTimeout)
	assert.True(t, cfg.Workflow.AutoPublish)
	assert.Equal(t, 24*time.Hour, cfg.Reminder.StaleAfter)
}

func TestLoad_MissingFile(t *testing.T) {
	setRequiredEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func validConfig() Config {
	return Config{
		App:        AppConfig{BaseURL: "https://app.example.com"},
		Server:     ServerConfig{Port: 8080},
		Database:   DatabaseConfig{Path: "data/collab.db"},
		Notifier:   NotifierConfig{Provider: NotifierLog},
		OpenAI:     OpenAIConfig{APIKey: "sk"},
		Eventbrite: EventbriteConfig{Token: "t", OrganizationID: "o", Capacity: 100},
		Reminder:   ReminderConfig{Enabled: true, Schedule: "0 9 * * *", StaleAfter: time.Hour},
	}
}

func TestValidate(t *testing.T) {
	valid := validConfig()
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"relative base url", func(c *Config) { c.App.BaseURL = "/review" }},
		{"unknown provider", func(c *Config) { c.Notifier.Provider = "smtp" }},
		{"ses without sender", func(c *Config) { c.Notifier.Provider = NotifierSES; c.SES.Region = "ap-southeast-1" }},
		{"lark without secret", func(c *Config) { c.Notifier.Provider = NotifierLark; c.Lark.AppID = "cli_x" }},
		{"missing openai key", func(c *Config) { c.OpenAI.APIKey = "" }},
		{"missing eventbrite org", func(c *Config) { c.Eventbrite.OrganizationID = "" }},
		{"negative retries", func(c *Config) { c.Workflow.MaxConflictRetries = -1 }},
		{"bad schedule", func(c *Config) { c.Reminder.Schedule = "daily" }},
		{"zero stale_after", func(c *Config) { c.Reminder.StaleAfter = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	disabled := validConfig()
	disabled.Reminder = ReminderConfig{Enabled: false, Schedule: "nonsense"}
	assert.NoError(t, disabled.Validate())
}
