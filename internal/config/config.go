// Package config handles configuration loading and management for
// Vantage. It supports XDG config paths, project-level overrides, and
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for Vantage.
type Config struct {
	// Model is the Anthropic model id used by LLM-backed executors.
	Model string `mapstructure:"model"`
	// APIKey is the Anthropic API key. ${VAR} references are expanded.
	APIKey string `mapstructure:"api_key"`

	// UseAWSBedrock routes API calls through AWS Bedrock.
	UseAWSBedrock bool   `mapstructure:"use_aws_bedrock"`
	AWSRegion     string `mapstructure:"aws_region"`
	AWSProfile    string `mapstructure:"aws_profile"`

	Executors ExecutorsConfig `mapstructure:"executors"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`

	// SignalsDir is the directory watched for cancel signal files.
	SignalsDir string `mapstructure:"signals_dir"`
	// DebugLog is the path of the debug log file; empty disables it.
	DebugLog string `mapstructure:"debug_log"`
}

// Executor modes.
const (
	// ModeCanned runs the built-in offline providers.
	ModeCanned = "canned"
	// ModeLLM runs model-backed providers through the Anthropic API.
	ModeLLM = "llm"
)

// ExecutorsConfig selects how task executors produce results.
type ExecutorsConfig struct {
	// Mode is ModeCanned or ModeLLM.
	Mode string `mapstructure:"mode"`
}

// SchedulerConfig holds the dispatch limits for a run.
type SchedulerConfig struct {
	MaxParallel int           `mapstructure:"max_parallel"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	TaskTimeout time.Duration `mapstructure:"task_timeout"`
	RunTimeout  time.Duration `mapstructure:"run_timeout"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY)
// 2. Project config (.vantage.yaml in current directory or parent)
// 3. User config (~/.config/vantage/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Load user config from XDG path
	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Load project config if present
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			// Merge project config (takes precedence)
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	// Environment variable overrides
	v.AutomaticEnv()
	v.SetEnvPrefix("")

	// Map specific environment variables
	v.BindEnv("api_key", "ANTHROPIC_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references
	cfg.APIKey = expandEnv(cfg.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.APIKey = expandEnv(cfg.APIKey)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("model", cfg.Model)
	v.Set("api_key", cfg.APIKey)
	v.Set("use_aws_bedrock", cfg.UseAWSBedrock)
	v.Set("aws_region", cfg.AWSRegion)
	v.Set("aws_profile", cfg.AWSProfile)
	v.Set("executors.mode", cfg.Executors.Mode)
	v.Set("scheduler.max_parallel", cfg.Scheduler.MaxParallel)
	v.Set("scheduler.max_attempts", cfg.Scheduler.MaxAttempts)
	v.Set("scheduler.task_timeout", cfg.Scheduler.TaskTimeout.String())
	v.Set("scheduler.run_timeout", cfg.Scheduler.RunTimeout.String())
	v.Set("signals_dir", cfg.SignalsDir)
	v.Set("debug_log", cfg.DebugLog)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("model", "claude-sonnet-4-20250514")
	v.SetDefault("api_key", "")
	v.SetDefault("use_aws_bedrock", false)
	v.SetDefault("aws_region", "")
	v.SetDefault("aws_profile", "")

	// Executor defaults
	v.SetDefault("executors.mode", ModeCanned)

	// Scheduler defaults
	v.SetDefault("scheduler.max_parallel", 3)
	v.SetDefault("scheduler.max_attempts", 2)
	v.SetDefault("scheduler.task_timeout", "2m")
	v.SetDefault("scheduler.run_timeout", "10m")

	// Control surface defaults
	v.SetDefault("signals_dir", filepath.Join(".vantage", "signals"))
	v.SetDefault("debug_log", "")
}

// getUserConfigDir returns the XDG config directory for Vantage.
func getUserConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "vantage")
	}

	// Fall back to ~/.config/vantage
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "vantage")
	}
	return filepath.Join(home, ".config", "vantage")
}

// findProjectConfig searches for .vantage.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".vantage.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Model:  "claude-sonnet-4-20250514",
		APIKey: "",
		Executors: ExecutorsConfig{
			Mode: ModeCanned,
		},
		Scheduler: SchedulerConfig{
			MaxParallel: 3,
			MaxAttempts: 2,
			TaskTimeout: 2 * time.Minute,
			RunTimeout:  10 * time.Minute,
		},
		SignalsDir: filepath.Join(".vantage", "signals"),
		DebugLog:   "",
	}
}
