package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
	Feeds      FeedsConfig      `mapstructure:"feeds"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port          int           `mapstructure:"port"`
	Host          string        `mapstructure:"host"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	InternalToken string        `mapstructure:"internal_token"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// PipelineConfig holds orchestrator configuration
type PipelineConfig struct {
	WindowDays          int           `mapstructure:"window_days"`
	RawRetentionDays    int           `mapstructure:"raw_retention_days"`
	SupplierConcurrency int           `mapstructure:"supplier_concurrency"`
	PacingDelay         time.Duration `mapstructure:"pacing_delay"`
	AIItemLimit         int           `mapstructure:"ai_item_limit"`
	SkipEnrichment      bool          `mapstructure:"skip_enrichment"`
	SkipAI              bool          `mapstructure:"skip_ai"`
}

// FeedsConfig holds supplier feed ingestion configuration
type FeedsConfig struct {
	DropDir     string `mapstructure:"drop_dir"`
	ArchiveDir  string `mapstructure:"archive_dir"`
	ArchiveType string `mapstructure:"archive_type"` // local or none
}

// EnrichmentConfig holds external enrichment provider configuration
type EnrichmentConfig struct {
	ICecatBaseURL  string  `mapstructure:"icecat_base_url"`
	ICecatUsername string  `mapstructure:"icecat_username"`
	ICecatLanguage string  `mapstructure:"icecat_language"`
	OpenAIKey      string  `mapstructure:"openai_key"`
	OpenAIBaseURL  string  `mapstructure:"openai_base_url"`
	OpenAIModel    string  `mapstructure:"openai_model"`
	Temperature    float64 `mapstructure:"temperature"`
}

// NotifyConfig holds completion notification configuration
type NotifyConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
}

// RateLimitConfig holds outbound rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond int `mapstructure:"requests_per_second"`
	MaxRetries        int `mapstructure:"max_retries"`
	InitialBackoffMs  int `mapstructure:"initial_backoff_ms"`
	MaxBackoffMs      int `mapstructure:"max_backoff_ms"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

var globalConfig *Config

// Load loads the configuration from file, .env, and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// .env is optional
	if err := loadEnvFile(); err != nil {
		log.Warn().Err(err).Msg("Warning: .env file not loaded")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("CATALOG_SERVICE")

	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	globalConfig = &cfg
	return &cfg, nil
}

// loadEnvFile loads the first .env file found in the usual locations
func loadEnvFile() error {
	envPaths := []string{".", "./config"}

	for _, path := range envPaths {
		envFile := fmt.Sprintf("%s/.env", path)
		if _, err := os.Stat(envFile); err == nil {
			if err := loadDotEnvFile(envFile); err == nil {
				return nil
			}
		}
	}
	return fmt.Errorf("no .env file found")
}

// loadDotEnvFile reads a .env file and sets environment variables
func loadDotEnvFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			value = strings.Trim(value, "\"'")
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

// bindEnvVars binds well-known environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("database.url", "DATABASE_URL")

	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.host", "HOST")
	v.BindEnv("server.internal_token", "INTERNAL_TOKEN")

	v.BindEnv("logging.level", "LOG_LEVEL")

	v.BindEnv("feeds.drop_dir", "FEEDS_DROP_DIR")
	v.BindEnv("feeds.archive_dir", "FEEDS_ARCHIVE_DIR")

	v.BindEnv("enrichment.icecat_username", "ICECAT_USERNAME")
	v.BindEnv("enrichment.openai_key", "OPENAI_API_KEY")

	v.BindEnv("notify.webhook_url", "NOTIFY_WEBHOOK_URL")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_connections", 5)
	v.SetDefault("database.max_conn_lifetime", 1*time.Hour)
	v.SetDefault("database.max_conn_idle_time", 30*time.Minute)

	v.SetDefault("pipeline.window_days", 7)
	v.SetDefault("pipeline.raw_retention_days", 7)
	v.SetDefault("pipeline.supplier_concurrency", 4)
	v.SetDefault("pipeline.pacing_delay", 500*time.Millisecond)
	v.SetDefault("pipeline.ai_item_limit", 50)

	v.SetDefault("feeds.drop_dir", "./data/feeds")
	v.SetDefault("feeds.archive_dir", "./data/archives")
	v.SetDefault("feeds.archive_type", "local")

	v.SetDefault("enrichment.icecat_base_url", "https://live.icecat.biz/api")
	v.SetDefault("enrichment.icecat_language", "en")
	v.SetDefault("enrichment.openai_model", "gpt-4o-mini")
	v.SetDefault("enrichment.temperature", 0.3)

	v.SetDefault("rate_limit.requests_per_second", 2)
	v.SetDefault("rate_limit.max_retries", 3)
	v.SetDefault("rate_limit.initial_backoff_ms", 100)
	v.SetDefault("rate_limit.max_backoff_ms", 30000)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.no_color", false)
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// GetDatabaseURL returns the database URL from config or environment
func GetDatabaseURL() string {
	if cfg := Get(); cfg != nil && cfg.Database.URL != "" {
		return cfg.Database.URL
	}
	return os.Getenv("DATABASE_URL")
}
