package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	RabbitMQ   RabbitMQConfig   `yaml:"rabbitmq"`
	Attendance AttendanceConfig `yaml:"attendance"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type AttendanceConfig struct {
	// DefaultBreakMinutes is credited to every automated session at creation.
	DefaultBreakMinutes int `yaml:"default_break_minutes"`
	// HistoryPageSize caps a single history read.
	HistoryPageSize int `yaml:"history_page_size"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Attendance.DefaultBreakMinutes < 0 {
		return nil, fmt.Errorf("default_break_minutes must not be negative")
	}
	if cfg.Attendance.HistoryPageSize <= 0 {
		cfg.Attendance.HistoryPageSize = 50
	}

	return &cfg, nil
}
