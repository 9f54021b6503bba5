package database

import (
	"database/sql"
	"fmt"
	"time"
)

// InitialVersion версия пустой базы: первый импорт дает 1.0, первое ручное добавление 0.1
const InitialVersion = "0.0"

// InitSchema создает таблицы базы компонентов
func InitSchema(db *sql.DB) error {
	schema := `
	-- Компоненты: наименование и ключи для нестрогого поиска
	CREATE TABLE IF NOT EXISTS components (
		name TEXT PRIMARY KEY,
		name_lower TEXT NOT NULL,
		name_nospace TEXT NOT NULL,
		name_compact TEXT NOT NULL,
		category TEXT NOT NULL,
		source TEXT,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_components_lower ON components(name_lower);
	CREATE INDEX IF NOT EXISTS idx_components_nospace ON components(name_nospace);
	CREATE INDEX IF NOT EXISTS idx_components_compact ON components(name_compact);

	-- Метаданные: версия, хэши, даты
	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	-- История изменений, новые записи с большим seq
	CREATE TABLE IF NOT EXISTS history (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT UNIQUE NOT NULL,
		version TEXT NOT NULL,
		action TEXT NOT NULL,
		source TEXT,
		components_added INTEGER DEFAULT 0,
		component_names TEXT,
		previous_hash TEXT,
		current_hash TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	now := time.Now().Format(timeLayout)
	_, err := db.Exec(`
		INSERT OR IGNORE INTO metadata (key, value) VALUES
			('version', ?), ('created', ?), ('last_updated', ?), ('previous_hash', ''), ('current_hash', '')
	`, InitialVersion, now, now)
	if err != nil {
		return fmt.Errorf("failed to init metadata: %w", err)
	}
	return nil
}
