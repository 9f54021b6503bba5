package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config конфигурация утилиты. Флаги командной строки перекрывают эти значения.
type Config struct {
	Logger   Logger
	Database Database
	Split    Split
}

// Load читает необязательные .env файлы (по умолчанию ./.env), затем окружение.
// Уже заданные переменные окружения .env не перезаписывает.
func Load(paths ...string) (*Config, error) {
	const op = "config.Load"

	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: load .env: %w", op, err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	if _, err := zap.ParseAtomicLevel(c.Logger.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Logger.Level, err)
	}

	if strings.TrimSpace(c.Split.RulesPath) == "" {
		return fmt.Errorf("rules path is required")
	}

	if c.Database.Enabled && strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database path is required when database is enabled")
	}

	return nil
}
