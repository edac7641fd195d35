package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Schedule.WorkStart != "09:00" {
		t.Errorf("expected work_start 09:00, got %s", cfg.Schedule.WorkStart)
	}
	if cfg.Schedule.WorkEnd != "18:00" {
		t.Errorf("expected work_end 18:00, got %s", cfg.Schedule.WorkEnd)
	}
	if cfg.Schedule.BufferMinutes != 15 {
		t.Errorf("expected buffer_minutes 15, got %d", cfg.Schedule.BufferMinutes)
	}
	if cfg.Schedule.GridIntervalMinutes != 15 {
		t.Errorf("expected grid_interval_minutes 15, got %d", cfg.Schedule.GridIntervalMinutes)
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("expected provider openai, got %s", cfg.LLM.Provider)
	}
	if cfg.User.ID != "default" {
		t.Errorf("expected user id default, got %s", cfg.User.ID)
	}
}

func TestLoadFrom_FileNotExists(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing", "config.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Should return defaults
	if cfg.Schedule.WorkStart != "09:00" {
		t.Errorf("expected default work_start, got %s", cfg.Schedule.WorkStart)
	}
}

func TestLoadFrom_ValidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")

	content := `
[user]
id = "alice"

[schedule]
work_start = "08:00"
work_end = "16:00"
buffer_minutes = 5
grid_interval_minutes = 30

[llm]
provider = "ollama"
model = "llama3"
base_url = "http://localhost:11434"

[storage]
db_path = "/tmp/test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.User.ID != "alice" {
		t.Errorf("expected user alice, got %s", cfg.User.ID)
	}
	if cfg.Schedule.WorkStart != "08:00" {
		t.Errorf("expected work_start 08:00, got %s", cfg.Schedule.WorkStart)
	}
	if cfg.Schedule.BufferMinutes != 5 {
		t.Errorf("expected buffer_minutes 5, got %d", cfg.Schedule.BufferMinutes)
	}
	if cfg.LLM.Provider != "ollama" {
		t.Errorf("expected provider ollama, got %s", cfg.LLM.Provider)
	}
	if cfg.Storage.DBPath != "/tmp/test.db" {
		t.Errorf("expected db_path /tmp/test.db, got %s", cfg.Storage.DBPath)
	}
}

func TestLoadFrom_InvalidWorkingHours(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")

	content := `
[schedule]
work_start = "18:00"
work_end = "09:00"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := LoadFrom(configPath); err == nil {
		t.Fatal("expected validation error for inverted working hours")
	}
}

func TestLoadFrom_MalformedTime(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")

	content := `
[schedule]
work_start = "9am"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := LoadFrom(configPath); err == nil {
		t.Fatal("expected validation error for malformed time")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TASKTIMEFLOW_USER", "bob")
	t.Setenv("TASKTIMEFLOW_WORK_START", "07:00")
	t.Setenv("TASKTIMEFLOW_BUFFER_MINUTES", "0")
	t.Setenv("TASKTIMEFLOW_LLM_PROVIDER", "ollama")
	t.Setenv("TASKTIMEFLOW_LLM_MODEL", "llama3")
	t.Setenv("TASKTIMEFLOW_DB_PATH", "/tmp/env.db")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.User.ID != "bob" {
		t.Errorf("expected user bob, got %s", cfg.User.ID)
	}
	if cfg.Schedule.WorkStart != "07:00" {
		t.Errorf("expected work_start 07:00, got %s", cfg.Schedule.WorkStart)
	}
	if cfg.Schedule.BufferMinutes != 0 {
		t.Errorf("expected buffer_minutes 0, got %d", cfg.Schedule.BufferMinutes)
	}
	if cfg.LLM.Provider != "ollama" {
		t.Errorf("expected provider ollama, got %s", cfg.LLM.Provider)
	}
	if cfg.Storage.DBPath != "/tmp/env.db" {
		t.Errorf("expected db_path /tmp/env.db, got %s", cfg.Storage.DBPath)
	}
}

func TestSaveAndReload(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.User.ID = "carol"
	cfg.Schedule.WorkEnd = "17:00"
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.User.ID != "carol" {
		t.Errorf("expected user carol, got %s", loaded.User.ID)
	}
	if loaded.Schedule.WorkEnd != "17:00" {
		t.Errorf("expected work_end 17:00, got %s", loaded.Schedule.WorkEnd)
	}
}
