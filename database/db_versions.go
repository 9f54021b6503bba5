package database

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"bomsplit/logger"
)

const (
	timeLayout = "2006-01-02 15:04:05"

	// historyLimit сколько последних записей истории хранится
	historyLimit = 50
	// historyNames сколько наименований сохраняется в одной записи истории
	historyNames = 10
)

// Действия, которые меняют базу
const (
	ActionManualAdd       = "manual_add"
	ActionImportFromFile  = "import_from_file"
	ActionImportFromExcel = "import_from_excel"
)

// HistoryEntry запись истории изменений
type HistoryEntry struct {
	ID              string    `json:"id"`
	Version         string    `json:"version"`
	Action          string    `json:"action"`
	Source          string    `json:"source,omitempty"`
	ComponentsAdded int       `json:"components_added"`
	ComponentNames  []string  `json:"component_names,omitempty"`
	PreviousHash    string    `json:"previous_hash"`
	CurrentHash     string    `json:"current_hash"`
	CreatedAt       time.Time `json:"created_at"`
}

// NextVersion следующая версия в формате X.Y.
// Ручное добавление увеличивает Y, импорт увеличивает X и сбрасывает Y.
// Нечитаемая версия превращается в 1.0.
func NextVersion(current string, manual bool) string {
	majorStr, minorStr, hasDot := strings.Cut(strings.TrimSpace(current), ".")
	major, err := strconv.Atoi(majorStr)
	if err != nil || major < 0 {
		return "1.0"
	}
	minor := 0
	if hasDot {
		// X.Y.Z из старых баз читается как X.Y
		minorStr, _, _ = strings.Cut(minorStr, ".")
		if minor, err = strconv.Atoi(minorStr); err != nil || minor < 0 {
			return "1.0"
		}
	}

	if manual {
		return fmt.Sprintf("%d.%d", major, minor+1)
	}
	return fmt.Sprintf("%d.0", major+1)
}

// contentHash первые 16 символов SHA256 от отсортированного списка пар [имя, категория]
func contentHash(ctx context.Context, tx *sql.Tx) (string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT name, category FROM components ORDER BY name`)
	if err != nil {
		return "", fmt.Errorf("failed to read components: %w", err)
	}
	defer rows.Close()

	var pairs [][2]string
	for rows.Next() {
		var p [2]string
		if err := rows.Scan(&p[0], &p[1]); err != nil {
			return "", fmt.Errorf("failed to scan component: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if len(pairs) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(pairs); err != nil {
		return "", err
	}
	sum := sha256.Sum256(bytes.TrimSpace(buf.Bytes()))
	return hex.EncodeToString(sum[:])[:16], nil
}

// queryRower *sql.DB или *sql.Tx
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getMeta(ctx context.Context, q queryRower, key string) (string, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read metadata %s: %w", key, err)
	}
	return value, nil
}

func setMeta(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write metadata %s: %w", key, err)
	}
	return nil
}

// commitVersion пересчитывает хэш после изменения и, если содержимое изменилось,
// поднимает версию и пишет запись истории
func (db *DB) commitVersion(ctx context.Context, tx *sql.Tx, action, source string, added int, names []string) error {
	previous, err := getMeta(ctx, tx, "current_hash")
	if err != nil {
		return err
	}
	current, err := contentHash(ctx, tx)
	if err != nil {
		return err
	}
	if err := setMeta(ctx, tx, "last_updated", time.Now().Format(timeLayout)); err != nil {
		return err
	}
	if current == previous || current == "" {
		return nil
	}

	version, err := getMeta(ctx, tx, "version")
	if err != nil {
		return err
	}
	version = NextVersion(version, action == ActionManualAdd)

	for key, value := range map[string]string{"version": version, "previous_hash": previous, "current_hash": current} {
		if err := setMeta(ctx, tx, key, value); err != nil {
			return err
		}
	}

	if len(names) > historyNames {
		names = append(names[:historyNames:historyNames], fmt.Sprintf("... и еще %d", len(names)-historyNames))
	}
	namesJSON, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("failed to encode history names: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO history (id, version, action, source, components_added, component_names, previous_hash, current_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), version, action, source, added, string(namesJSON), previous, current)
	if err != nil {
		return fmt.Errorf("failed to add history entry: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM history WHERE seq NOT IN (SELECT seq FROM history ORDER BY seq DESC LIMIT ?)
	`, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to trim history: %w", err)
	}

	db.log.Debug("Версия базы компонентов обновлена", logger.String("version", version), logger.String("action", action))
	return nil
}

// History записи истории, новые первыми
func (db *DB) History(ctx context.Context) ([]HistoryEntry, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, version, action, COALESCE(source, ''), components_added, COALESCE(component_names, ''),
		       COALESCE(previous_hash, ''), COALESCE(current_hash, ''), created_at
		FROM history
		ORDER BY seq DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var names string
		err := rows.Scan(&e.ID, &e.Version, &e.Action, &e.Source, &e.ComponentsAdded, &names,
			&e.PreviousHash, &e.CurrentHash, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		if names != "" {
			if err := json.Unmarshal([]byte(names), &e.ComponentNames); err != nil {
				return nil, fmt.Errorf("failed to decode history names: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
