package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantfoundry/vantage/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify Vantage configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/vantage/config.yaml
Project-specific overrides can be placed in .vantage.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default user config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.GetUserConfigPath()
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("Config already exists at %s\n", path)
			return nil
		}

		if err := config.Save(config.Default()); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Printf("Wrote default config to %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	fmt.Printf("model: %s\n", cfg.Model)
	fmt.Printf("api_key: %s\n", describeAPIKey(cfg))
	fmt.Printf("use_aws_bedrock: %t\n", cfg.UseAWSBedrock)
	fmt.Printf("aws_region: %s\n", cfg.AWSRegion)
	fmt.Printf("aws_profile: %s\n", cfg.AWSProfile)
	fmt.Printf("executors.mode: %s\n", cfg.Executors.Mode)
	fmt.Printf("scheduler.max_parallel: %d\n", cfg.Scheduler.MaxParallel)
	fmt.Printf("scheduler.max_attempts: %d\n", cfg.Scheduler.MaxAttempts)
	fmt.Printf("scheduler.task_timeout: %s\n", cfg.Scheduler.TaskTimeout)
	fmt.Printf("scheduler.run_timeout: %s\n", cfg.Scheduler.RunTimeout)
	fmt.Printf("signals_dir: %s\n", cfg.SignalsDir)
	fmt.Printf("debug_log: %s\n", cfg.DebugLog)
}

// describeAPIKey renders the key masked, with its source.
func describeAPIKey(cfg *config.Config) string {
	key, err := config.GetAPIKey(cfg)
	if err != nil {
		return "(not set)"
	}
	return fmt.Sprintf("%s (from %s)", config.MaskAPIKey(key), config.GetAPIKeySource(cfg))
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "model":
		return cfg.Model, nil
	case "api_key":
		return describeAPIKey(cfg), nil
	case "use_aws_bedrock":
		return strconv.FormatBool(cfg.UseAWSBedrock), nil
	case "aws_region":
		return cfg.AWSRegion, nil
	case "aws_profile":
		return cfg.AWSProfile, nil
	case "executors.mode":
		return cfg.Executors.Mode, nil
	case "scheduler.max_parallel":
		return strconv.Itoa(cfg.Scheduler.MaxParallel), nil
	case "scheduler.max_attempts":
		return strconv.Itoa(cfg.Scheduler.MaxAttempts), nil
	case "scheduler.task_timeout":
		return cfg.Scheduler.TaskTimeout.String(), nil
	case "scheduler.run_timeout":
		return cfg.Scheduler.RunTimeout.String(), nil
	case "signals_dir":
		return cfg.SignalsDir, nil
	case "debug_log":
		return cfg.DebugLog, nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "model":
		cfg.Model = value
	case "api_key":
		if err := config.ValidateAPIKey(value); err != nil {
			return err
		}
		cfg.APIKey = value
	case "use_aws_bedrock":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for use_aws_bedrock: %w", err)
		}
		cfg.UseAWSBedrock = b
	case "aws_region":
		cfg.AWSRegion = value
	case "aws_profile":
		cfg.AWSProfile = value
	case "executors.mode":
		if value != config.ModeCanned && value != config.ModeLLM {
			return fmt.Errorf("invalid executor mode %q: must be %s or %s",
				value, config.ModeCanned, config.ModeLLM)
		}
		cfg.Executors.Mode = value
	case "scheduler.max_parallel":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for max_parallel: %w", err)
		}
		cfg.Scheduler.MaxParallel = n
	case "scheduler.max_attempts":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for max_attempts: %w", err)
		}
		cfg.Scheduler.MaxAttempts = n
	case "scheduler.task_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for task_timeout: %w", err)
		}
		cfg.Scheduler.TaskTimeout = d
	case "scheduler.run_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for run_timeout: %w", err)
		}
		cfg.Scheduler.RunTimeout = d
	case "signals_dir":
		cfg.SignalsDir = value
	case "debug_log":
		cfg.DebugLog = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
