package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
database:
  host: localhost
  port: 5432
  user: postgres
  password: secret
  database: attendance
rabbitmq:
  host: localhost
  port: 5672
  user: guest
  password: guest
attendance:
  default_break_minutes: 30
  history_page_size: 25
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Host != "localhost" || cfg.Database.Port != 5432 {
		t.Errorf("unexpected database config: %+v", cfg.Database)
	}
	if cfg.RabbitMQ.User != "guest" {
		t.Errorf("unexpected rabbitmq config: %+v", cfg.RabbitMQ)
	}
	if cfg.Attendance.DefaultBreakMinutes != 30 {
		t.Errorf("default_break_minutes = %d, want 30", cfg.Attendance.DefaultBreakMinutes)
	}
	if cfg.Attendance.HistoryPageSize != 25 {
		t.Errorf("history_page_size = %d, want 25", cfg.Attendance.HistoryPageSize)
	}
}

func TestLoadDefaultsPageSize(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
attendance:
  default_break_minutes: 0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Attendance.HistoryPageSize != 50 {
		t.Errorf("history_page_size = %d, want default 50", cfg.Attendance.HistoryPageSize)
	}
}

func TestLoadRejectsNegativeBreak(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
attendance:
  default_break_minutes: -10
`)

	if _, err := Load(path); err == nil {
		t.Error("expected error for negative break minutes")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "database: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}
