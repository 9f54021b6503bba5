package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedVars = []string{
	"LOGGER_LEVEL", "LOGGER_AS_JSON",
	"BOMSPLIT_DB_PATH", "BOMSPLIT_DB_ENABLED",
	"BOMSPLIT_RULES_PATH", "BOMSPLIT_STRICT", "BOMSPLIT_TXT_DIR", "BOMSPLIT_COMBINE",
}

// clearEnv убирает переменные на время теста и возвращает их после
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range managedVars {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.False(t, cfg.Logger.AsJSON)
	assert.Equal(t, "components.db", cfg.Database.Path)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "rules.json", cfg.Split.RulesPath)
	assert.False(t, cfg.Split.Strict)
	assert.Empty(t, cfg.Split.TxtDir)
}

func TestLoadDotenv(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOMSPLIT_STRICT", "true")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"LOGGER_LEVEL=debug\nBOMSPLIT_DB_ENABLED=false\nBOMSPLIT_RULES_PATH=rules.yaml\nBOMSPLIT_STRICT=false\n",
	), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "rules.yaml", cfg.Split.RulesPath)
	assert.True(t, cfg.Split.Strict, "окружение важнее .env")
}

func TestValidate(t *testing.T) {
	valid := Config{
		Logger:   Logger{Level: "info"},
		Database: Database{Path: "components.db", Enabled: true},
		Split:    Split{RulesPath: "rules.json"},
	}

	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{"Корректная конфигурация", func(c *Config) {}, false},
		{"Неизвестный уровень логов", func(c *Config) { c.Logger.Level = "loud" }, true},
		{"Пустой путь правил", func(c *Config) { c.Split.RulesPath = " " }, true},
		{"Пустой путь базы", func(c *Config) { c.Database.Path = "" }, true},
		{"Пустой путь отключенной базы", func(c *Config) { c.Database.Path, c.Database.Enabled = "", false }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
