package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Model != "claude-sonnet-4-20250514" {
		t.Errorf("expected default model 'claude-sonnet-4-20250514', got %q", cfg.Model)
	}

	if cfg.Executors.Mode != "canned" {
		t.Errorf("expected default executors mode 'canned', got %q", cfg.Executors.Mode)
	}

	if cfg.Scheduler.MaxParallel != 3 {
		t.Errorf("expected default max_parallel 3, got %d", cfg.Scheduler.MaxParallel)
	}

	if cfg.Scheduler.MaxAttempts != 2 {
		t.Errorf("expected default max_attempts 2, got %d", cfg.Scheduler.MaxAttempts)
	}

	if cfg.Scheduler.TaskTimeout != 2*time.Minute {
		t.Errorf("expected default task timeout 2m, got %v", cfg.Scheduler.TaskTimeout)
	}

	if cfg.Scheduler.RunTimeout != 10*time.Minute {
		t.Errorf("expected default run timeout 10m, got %v", cfg.Scheduler.RunTimeout)
	}

	if cfg.SignalsDir != filepath.Join(".vantage", "signals") {
		t.Errorf("expected default signals dir '.vantage/signals', got %q", cfg.SignalsDir)
	}

	if cfg.UseAWSBedrock {
		t.Error("expected use_aws_bedrock to default to false")
	}
}

func TestLoadFromPath(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
model: claude-3-5-haiku-20241022
api_key: test-key
use_aws_bedrock: true
aws_region: us-west-2
aws_profile: research
executors:
  mode: llm
scheduler:
  max_parallel: 5
  max_attempts: 3
  task_timeout: 90s
  run_timeout: 20m
signals_dir: /tmp/vantage-signals
debug_log: /tmp/vantage-debug.log
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Model != "claude-3-5-haiku-20241022" {
		t.Errorf("expected model 'claude-3-5-haiku-20241022', got %q", cfg.Model)
	}

	if cfg.APIKey != "test-key" {
		t.Errorf("expected api_key 'test-key', got %q", cfg.APIKey)
	}

	if !cfg.UseAWSBedrock {
		t.Error("expected use_aws_bedrock to be true")
	}

	if cfg.AWSRegion != "us-west-2" {
		t.Errorf("expected aws_region 'us-west-2', got %q", cfg.AWSRegion)
	}

	if cfg.Executors.Mode != "llm" {
		t.Errorf("expected executors mode 'llm', got %q", cfg.Executors.Mode)
	}

	if cfg.Scheduler.MaxParallel != 5 {
		t.Errorf("expected max_parallel 5, got %d", cfg.Scheduler.MaxParallel)
	}

	if cfg.Scheduler.MaxAttempts != 3 {
		t.Errorf("expected max_attempts 3, got %d", cfg.Scheduler.MaxAttempts)
	}

	if cfg.Scheduler.TaskTimeout != 90*time.Second {
		t.Errorf("expected task timeout 90s, got %v", cfg.Scheduler.TaskTimeout)
	}

	if cfg.Scheduler.RunTimeout != 20*time.Minute {
		t.Errorf("expected run timeout 20m, got %v", cfg.Scheduler.RunTimeout)
	}

	if cfg.SignalsDir != "/tmp/vantage-signals" {
		t.Errorf("expected signals dir '/tmp/vantage-signals', got %q", cfg.SignalsDir)
	}

	if cfg.DebugLog != "/tmp/vantage-debug.log" {
		t.Errorf("expected debug log '/tmp/vantage-debug.log', got %q", cfg.DebugLog)
	}
}

func TestLoadFromPathKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
api_key: only-key
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.APIKey != "only-key" {
		t.Errorf("expected api_key 'only-key', got %q", cfg.APIKey)
	}

	if cfg.Executors.Mode != "canned" {
		t.Errorf("expected executors mode to keep default 'canned', got %q", cfg.Executors.Mode)
	}

	if cfg.Scheduler.MaxParallel != 3 {
		t.Errorf("expected max_parallel to keep default 3, got %d", cfg.Scheduler.MaxParallel)
	}

	if cfg.Scheduler.TaskTimeout != 2*time.Minute {
		t.Errorf("expected task timeout to keep default 2m, got %v", cfg.Scheduler.TaskTimeout)
	}
}

func TestExpandEnv(t *testing.T) {
	// Set environment variable
	os.Setenv("TEST_VAR", "expanded-value")
	defer os.Unsetenv("TEST_VAR")

	result := expandEnv("${TEST_VAR}")
	if result != "expanded-value" {
		t.Errorf("expected 'expanded-value', got %q", result)
	}

	result = expandEnv("prefix-${TEST_VAR}-suffix")
	if result != "prefix-expanded-value-suffix" {
		t.Errorf("expected 'prefix-expanded-value-suffix', got %q", result)
	}
}

func TestGetUserConfigDir(t *testing.T) {
	// Test with XDG_CONFIG_HOME set
	os.Setenv("XDG_CONFIG_HOME", "/custom/config")
	defer os.Unsetenv("XDG_CONFIG_HOME")

	dir := getUserConfigDir()
	expected := "/custom/config/vantage"
	if dir != expected {
		t.Errorf("expected %q, got %q", expected, dir)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	os.Setenv("XDG_CONFIG_HOME", tmpDir)
	defer os.Unsetenv("XDG_CONFIG_HOME")

	cfg := Default()
	cfg.APIKey = "sk-test"
	cfg.Executors.Mode = "llm"
	cfg.Scheduler.MaxParallel = 7

	if err := Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFromPath(GetUserConfigPath())
	if err != nil {
		t.Fatalf("LoadFromPath after Save failed: %v", err)
	}

	if loaded.APIKey != "sk-test" {
		t.Errorf("expected api_key 'sk-test', got %q", loaded.APIKey)
	}

	if loaded.Executors.Mode != "llm" {
		t.Errorf("expected executors mode 'llm', got %q", loaded.Executors.Mode)
	}

	if loaded.Scheduler.MaxParallel != 7 {
		t.Errorf("expected max_parallel 7, got %d", loaded.Scheduler.MaxParallel)
	}

	if loaded.Scheduler.TaskTimeout != 2*time.Minute {
		t.Errorf("expected task timeout 2m after round trip, got %v", loaded.Scheduler.TaskTimeout)
	}
}
