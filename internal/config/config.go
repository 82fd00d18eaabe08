package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/sevigo/repo-pilot/internal/logger"
)

// Default model names per task.
const (
	DefaultFastModel = "gemini-3-flash-preview"
	DefaultProModel  = "gemini-3-pro-preview"
)

// Config holds the application's configuration values.
type Config struct {
	Server     ServerConfig
	GitHub     GitHubConfig
	AI         AIConfig
	Database   DBConfig
	Logging    logger.Config
	Security   SecurityConfig
	MaxWorkers int `validate:"min=1,max=64"`
}

type ServerConfig struct {
	Port          string `validate:"required,numeric"`
	WebhookSecret string
	// CronSecret guards the batch endpoints when set.
	CronSecret string
}

// GitHubConfig carries the fallback token and the optional GitHub App identity
// used for webhook-triggered jobs.
type GitHubConfig struct {
	Token          string
	AppID          int64 `validate:"min=0"`
	PrivateKeyPath string
}

// AppConfigured reports whether installation tokens can be minted.
func (g GitHubConfig) AppConfigured() bool {
	return g.AppID > 0 && g.PrivateKeyPath != ""
}

// AIConfig holds the fallback Gemini key and the model used for each task.
type AIConfig struct {
	APIKey      string
	IssueModel  string `validate:"required"`
	TriageModel string `validate:"required"`
	ReviewModel string `validate:"required"`
	CIModel     string `validate:"required"`
	DocsModel   string `validate:"required"`
}

type DBConfig struct {
	Host            string
	Port            int `validate:"min=0,max=65535"`
	Username        string
	Password        string
	Database        string
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Enabled reports whether a Postgres connection is configured. Without one,
// results are kept in memory.
func (d DBConfig) Enabled() bool {
	return d.Host != "" && d.Database != ""
}

type SecurityConfig struct {
	// EncryptionKey is the AES-256 key for stored profile secrets.
	EncryptionKey string
}

// LoadConfig reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates required fields. It uses the Viper
// library to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	setDefaults(v)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Debug("no .env file loaded", "error", err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_OUTPUT", "stdout")
	v.SetDefault("MAX_WORKERS", 5)
	v.SetDefault("GEMINI_ISSUE_MODEL", DefaultFastModel)
	v.SetDefault("GEMINI_TRIAGE_MODEL", DefaultFastModel)
	v.SetDefault("GEMINI_REVIEW_MODEL", DefaultProModel)
	v.SetDefault("GEMINI_CI_MODEL", DefaultProModel)
	v.SetDefault("GEMINI_DOCS_MODEL", DefaultProModel)
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", 5*time.Minute)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:          v.GetString("SERVER_PORT"),
			WebhookSecret: v.GetString("GITHUB_WEBHOOK_SECRET"),
			CronSecret:    v.GetString("CRON_SECRET"),
		},
		GitHub: GitHubConfig{
			Token:          v.GetString("GITHUB_TOKEN"),
			AppID:          v.GetInt64("GITHUB_APP_ID"),
			PrivateKeyPath: v.GetString("GITHUB_PRIVATE_KEY_PATH"),
		},
		AI: AIConfig{
			APIKey:      v.GetString("GEMINI_API_KEY"),
			IssueModel:  v.GetString("GEMINI_ISSUE_MODEL"),
			TriageModel: v.GetString("GEMINI_TRIAGE_MODEL"),
			ReviewModel: v.GetString("GEMINI_REVIEW_MODEL"),
			CIModel:     v.GetString("GEMINI_CI_MODEL"),
			DocsModel:   v.GetString("GEMINI_DOCS_MODEL"),
		},
		Database: DBConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			Username:        v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Database:        v.GetString("DB_NAME"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
			ConnMaxIdleTime: v.GetDuration("DB_CONN_MAX_IDLE_TIME"),
		},
		Logging: logger.Config{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
			Output: v.GetString("LOG_OUTPUT"),
		},
		Security: SecurityConfig{
			EncryptionKey: v.GetString("ENCRYPTION_KEY"),
		},
		MaxWorkers: v.GetInt("MAX_WORKERS"),
	}
}

// Validate checks struct constraints and the cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.GitHub.AppID > 0 && c.GitHub.PrivateKeyPath == "" {
		return fmt.Errorf("GITHUB_PRIVATE_KEY_PATH must be set when GITHUB_APP_ID is set")
	}
	if key := c.Security.EncryptionKey; key != "" && len(key) != 32 {
		return fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes, got %d", len(key))
	}
	return nil
}
