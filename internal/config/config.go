package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Notifier providers
const (
	NotifierSES  = "ses"
	NotifierLark = "lark"
	NotifierLog  = "log"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Notifier   NotifierConfig   `mapstructure:"notifier"`
	Lark       LarkConfig       `mapstructure:"lark"`
	SES        SESConfig        `mapstructure:"ses"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Eventbrite EventbriteConfig `mapstructure:"eventbrite"`
	Workflow   WorkflowConfig   `mapstructure:"workflow"`
	Reminder   ReminderConfig   `mapstructure:"reminder"`
	Logger     LoggerConfig     `mapstructure:"logger"`
}

// AppConfig holds settings used in outgoing messages
type AppConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	SenderName string `mapstructure:"sender_name"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// NotifierConfig selects the message transport
type NotifierConfig struct {
	Provider string `mapstructure:"provider"`
}

// LarkConfig holds Lark app credentials
type LarkConfig struct {
	AppID     string `mapstructure:"app_id"`
	AppSecret string `mapstructure:"app_secret"`
}

// SESConfig holds Amazon SES settings
type SESConfig struct {
	Region           string `mapstructure:"region"`
	FromAddress      string `mapstructure:"from_address"`
	ConfigurationSet string `mapstructure:"configuration_set"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
}

// OpenAIConfig holds OpenAI API configuration
type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
	PromptsPath string        `mapstructure:"prompts_path"`
}

// EventbriteConfig holds publisher credentials and listing defaults
type EventbriteConfig struct {
	Token          string        `mapstructure:"token"`
	OrganizationID string        `mapstructure:"organization_id"`
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	Timezone       string        `mapstructure:"timezone"`
	Currency       string        `mapstructure:"currency"`
	Capacity       int           `mapstructure:"capacity"`
	Online         bool          `mapstructure:"online"`
	Listed         bool          `mapstructure:"listed"`
	LeadTime       time.Duration `mapstructure:"lead_time"`
}

// WorkflowConfig tunes approval orchestration
type WorkflowConfig struct {
	MaxConflictRetries int           `mapstructure:"max_conflict_retries"`
	StoreTimeout       time.Duration `mapstructure:"store_timeout"`
	NotifyTimeout      time.Duration `mapstructure:"notify_timeout"`
	PublishTimeout     time.Duration `mapstructure:"publish_timeout"`
	AutoPublish        bool          `mapstructure:"auto_publish"`
}

// ReminderConfig controls stale review reminders
type ReminderConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Schedule   string        `mapstructure:"schedule"`
	StaleAfter time.Duration `mapstructure:"stale_after"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load reads .env (when present), the YAML file at configPath (optional when
// empty) and environment overrides, then validates the result
func Load(configPath string) (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	bindEnvVars(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.base_url", "http://localhost:8080")
	v.SetDefault("app.sender_name", "Collaboration Events")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.path", "data/collab.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("notifier.provider", NotifierLog)

	v.SetDefault("ses.region", "ap-southeast-1")

	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("openai.timeout", 120*time.Second)

	v.SetDefault("eventbrite.base_url", "https://www.eventbriteapi.com/v3")
	v.SetDefault("eventbrite.timeout", 30*time.Second)
	v.SetDefault("eventbrite.timezone", "Asia/Singapore")
	v.SetDefault("eventbrite.currency", "SGD")
	v.SetDefault("eventbrite.capacity", 100)
	v.SetDefault("eventbrite.online", true)
	v.SetDefault("eventbrite.listed", true)
	v.SetDefault("eventbrite.lead_time", 30*24*time.Hour)

	v.SetDefault("workflow.max_conflict_retries", 3)
	v.SetDefault("workflow.store_timeout", 5*time.Second)
	v.SetDefault("workflow.notify_timeout", 15*time.Second)
	v.SetDefault("workflow.publish_timeout", 30*time.Second)
	v.SetDefault("workflow.auto_publish", false)

	v.SetDefault("reminder.enabled", true)
	v.SetDefault("reminder.schedule", "0 9 * * *")
	v.SetDefault("reminder.stale_after", 48*time.Hour)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds provider-style environment variable names
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("app.base_url", "APP_BASE_URL")
	_ = v.BindEnv("lark.app_id", "LARK_APP_ID")
	_ = v.BindEnv("lark.app_secret", "LARK_APP_SECRET")
	_ = v.BindEnv("ses.region", "AWS_REGION")
	_ = v.BindEnv("ses.from_address", "SES_FROM_ADDRESS")
	_ = v.BindEnv("ses.access_key_id", "AWS_ACCESS_KEY_ID")
	_ = v.BindEnv("ses.secret_access_key", "AWS_SECRET_ACCESS_KEY")
	_ = v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("eventbrite.token", "EVENTBRITE_TOKEN")
	_ = v.BindEnv("eventbrite.organization_id", "EVENTBRITE_ORG_ID")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if u, err := url.Parse(c.App.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("app.base_url must be an absolute URL")
	}

	switch c.Notifier.Provider {
	case NotifierSES:
		if c.SES.FromAddress == "" {
			return fmt.Errorf("ses.from_address is required for the ses notifier")
		}
		if c.SES.Region == "" {
			return fmt.Errorf("ses.region is required for the ses notifier")
		}
	case NotifierLark:
		if c.Lark.AppID == "" || c.Lark.AppSecret == "" {
			return fmt.Errorf("lark.app_id and lark.app_secret are required for the lark notifier")
		}
	case NotifierLog:
	default:
		return fmt.Errorf("notifier.provider must be one of %s, %s, %s", NotifierSES, NotifierLark, NotifierLog)
	}

	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required")
	}
	if c.Eventbrite.Token == "" || c.Eventbrite.OrganizationID == "" {
		return fmt.Errorf("eventbrite.token and eventbrite.organization_id are required")
	}
	if c.Eventbrite.Capacity <= 0 {
		return fmt.Errorf("eventbrite.capacity must be positive")
	}

	if c.Workflow.MaxConflictRetries < 0 {
		return fmt.Errorf("workflow.max_conflict_retries cannot be negative")
	}

	if c.Reminder.Enabled {
		if _, err := cron.ParseStandard(c.Reminder.Schedule); err != nil {
			return fmt.Errorf("reminder.schedule is invalid: %w", err)
		}
		if c.Reminder.StaleAfter <= 0 {
			return fmt.Errorf("reminder.stale_after must be positive")
		}
	}

	return nil
}
