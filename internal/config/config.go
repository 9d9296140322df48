// Package config loads application configuration from file, environment,
// and defaults via viper.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App        App        `mapstructure:"app"`
	Agent      Agent      `mapstructure:"agent"`
	HackerNews HackerNews `mapstructure:"hackernews"`
	Server     Server     `mapstructure:"server"`
	Database   Database   `mapstructure:"database"`
	Email      Email      `mapstructure:"email"`
	Scheduler  Scheduler  `mapstructure:"scheduler"`
}

// App holds general application configuration.
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	DataDir  string `mapstructure:"data_dir"`
}

// Agent holds external agent process configuration.
type Agent struct {
	Enabled    bool          `mapstructure:"enabled"`
	Command    string        `mapstructure:"command"`
	Args       []string      `mapstructure:"args"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxCalls   int           `mapstructure:"max_calls"`
	RateWindow time.Duration `mapstructure:"rate_window"`
}

// HackerNews holds live story API configuration.
type HackerNews struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Concurrency int           `mapstructure:"concurrency"`
}

// Server holds HTTP server configuration.
type Server struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORS         CORS          `mapstructure:"cors"`
}

// CORS holds cross-origin configuration for the admin API.
type CORS struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Database holds storage configuration.
type Database struct {
	DataDir string `mapstructure:"data_dir"`
}

// Email holds SMTP delivery configuration. With an empty host the mailer
// runs in log-only mode and nothing is actually sent.
type Email struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
}

// Scheduler holds scheduled-send configuration.
type Scheduler struct {
	Enabled  bool   `mapstructure:"enabled"`
	Timezone string `mapstructure:"timezone"`
}

var globalConfig *Config

// Load reads configuration from the given file (or the default search
// paths), the environment, and built-in defaults, in ascending precedence
// of defaults < file < environment.
func Load(configFile string) (*Config, error) {
	// Load .env if present, matching local development setups.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".newsly")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary.
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.data_dir", ".newsly-data")

	viper.SetDefault("agent.enabled", false)
	viper.SetDefault("agent.command", "")
	viper.SetDefault("agent.timeout", "30s")
	viper.SetDefault("agent.max_calls", 5)
	viper.SetDefault("agent.rate_window", "1m")

	viper.SetDefault("hackernews.base_url", "https://hacker-news.firebaseio.com")
	viper.SetDefault("hackernews.timeout", "15s")
	viper.SetDefault("hackernews.concurrency", 5)

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.cors.enabled", true)
	viper.SetDefault("server.cors.allowed_origins", []string{"*"})

	viper.SetDefault("database.data_dir", ".newsly-data")

	viper.SetDefault("email.smtp_port", 587)
	viper.SetDefault("email.from_name", "Newsly")

	viper.SetDefault("scheduler.enabled", false)
	viper.SetDefault("scheduler.timezone", "UTC")
}

func bindEnvironmentVariables() {
	bindEnvKeys("agent.command", []string{"NEWSLY_AGENT_COMMAND"})
	bindEnvKeys("agent.enabled", []string{"NEWSLY_AGENT_ENABLED"})
	bindEnvKeys("email.smtp_host", []string{"NEWSLY_SMTP_HOST", "SMTP_HOST"})
	bindEnvKeys("email.username", []string{"NEWSLY_SMTP_USERNAME", "EMAIL_USER"})
	bindEnvKeys("email.password", []string{"NEWSLY_SMTP_PASSWORD", "EMAIL_PASS"})
	bindEnvKeys("email.from", []string{"NEWSLY_EMAIL_FROM", "EMAIL_FROM"})
}

func bindEnvKeys(configKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if err := viper.BindEnv(configKey, envKey); err != nil {
			fmt.Printf("Warning: failed to bind %s: %v\n", envKey, err)
		}
	}
}

func validate(config *Config) error {
	if config.Agent.Enabled && config.Agent.Command == "" {
		return fmt.Errorf("agent.enabled is set but agent.command is empty")
	}
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", config.Server.Port)
	}
	return nil
}
