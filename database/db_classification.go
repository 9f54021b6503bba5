package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bomsplit/logger"
	"bomsplit/model"
)

// ErrUnknownCategory категория не входит в закрытый набор
var ErrUnknownCategory = errors.New("unknown category")

// Component запись базы
type Component struct {
	Name     string
	Category model.Category
}

// Stats сводка по базе
type Stats struct {
	Version     string
	Created     string
	LastUpdated string
	CurrentHash string
	Total       int
	ByCategory  map[model.Category]int
}

type nameKeys struct {
	lower, nospace, compact string
}

func keysOf(name string) nameKeys {
	lower := strings.ToLower(name)
	nospace := strings.ReplaceAll(lower, " ", "")
	return nameKeys{
		lower:   lower,
		nospace: nospace,
		compact: strings.ReplaceAll(nospace, "-", ""),
	}
}

// lookupTiers от точного совпадения к самому грубому
var lookupTiers = []struct {
	column string
	key    func(name string, k nameKeys) string
}{
	{"name", func(name string, _ nameKeys) string { return name }},
	{"name_lower", func(_ string, k nameKeys) string { return k.lower }},
	{"name_nospace", func(_ string, k nameKeys) string { return k.nospace }},
	{"name_compact", func(_ string, k nameKeys) string { return k.compact }},
}

// Lookup ищет категорию по наименованию: точно, без учета регистра,
// без пробелов, без пробелов и дефисов
func (db *DB) Lookup(ctx context.Context, name string) (model.Category, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false, nil
	}
	keys := keysOf(name)

	for _, tier := range lookupTiers {
		var category string
		query := fmt.Sprintf(`SELECT category FROM components WHERE %s = ? ORDER BY rowid LIMIT 1`, tier.column)
		err := db.conn.QueryRowContext(ctx, query, tier.key(name, keys)).Scan(&category)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("failed to lookup component: %w", err)
		}
		return model.Category(category), true, nil
	}
	return "", false, nil
}

func upsertComponent(ctx context.Context, tx *sql.Tx, c Component, source string) (bool, error) {
	var existing string
	err := tx.QueryRowContext(ctx, `SELECT category FROM components WHERE name = ?`, c.Name).Scan(&existing)
	switch {
	case err == nil && existing == string(c.Category):
		return false, nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return false, fmt.Errorf("failed to read component: %w", err)
	}

	k := keysOf(c.Name)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO components (name, name_lower, name_nospace, name_compact, category, source)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			category = excluded.category,
			source = excluded.source,
			updated_at = CURRENT_TIMESTAMP
	`, c.Name, k.lower, k.nospace, k.compact, string(c.Category), source)
	if err != nil {
		return false, fmt.Errorf("failed to save component: %w", err)
	}
	return true, nil
}

func validComponent(c Component) (Component, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return c, fmt.Errorf("empty component name")
	}
	cat, ok := model.ParseCategory(string(c.Category))
	if !ok {
		return c, fmt.Errorf("%w: %q", ErrUnknownCategory, c.Category)
	}
	c.Category = cat
	return c, nil
}

// Add добавляет компонент или меняет его категорию.
// Пустой source означает ручное добавление (растет младшая часть версии).
// Возвращает false, если база уже содержит то же самое.
func (db *DB) Add(ctx context.Context, name string, category model.Category, source string) (bool, error) {
	c, err := validComponent(Component{Name: name, Category: category})
	if err != nil {
		return false, err
	}

	action := ActionManualAdd
	if source != "" {
		action = ActionImportFromFile
	}

	changed := false
	err = db.withTx(ctx, func(tx *sql.Tx) error {
		if changed, err = upsertComponent(ctx, tx, c, source); err != nil || !changed {
			return err
		}
		return db.commitVersion(ctx, tx, action, source, 1, []string{c.Name})
	})
	if err != nil {
		return false, fmt.Errorf("failed to add component: %w", err)
	}
	if changed {
		db.log.Info("✓ Добавлено в базу", logger.String("name", c.Name), logger.String("category", string(c.Category)))
	}
	return changed, nil
}

// AddBatch сохраняет набор компонентов одной версией.
// replace очищает базу перед загрузкой. Возвращает число записанных компонентов.
func (db *DB) AddBatch(ctx context.Context, items []Component, action, source string, replace bool) (int, error) {
	written := 0
	var names []string
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		if replace {
			if _, err := tx.ExecContext(ctx, `DELETE FROM components`); err != nil {
				return fmt.Errorf("failed to clear components: %w", err)
			}
		}
		for _, item := range items {
			c, err := validComponent(item)
			if err != nil {
				db.log.Warn("⚠ Компонент пропущен", logger.String("name", item.Name), logger.ErrorF(err))
				continue
			}
			changed, err := upsertComponent(ctx, tx, c, source)
			if err != nil {
				return err
			}
			if changed {
				written++
				names = append(names, c.Name)
			}
		}
		return db.commitVersion(ctx, tx, action, source, written, names)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to import components: %w", err)
	}
	return written, nil
}

// Components все компоненты, отсортированные по наименованию
func (db *DB) Components(ctx context.Context) ([]Component, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT name, category FROM components ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list components: %w", err)
	}
	defer rows.Close()

	var out []Component
	for rows.Next() {
		var c Component
		var cat string
		if err := rows.Scan(&c.Name, &cat); err != nil {
			return nil, fmt.Errorf("failed to scan component: %w", err)
		}
		c.Category = model.Category(cat)
		out = append(out, c)
	}
	return out, rows.Err()
}

// Stats версия, даты и количество компонентов по категориям
func (db *DB) Stats(ctx context.Context) (Stats, error) {
	st := Stats{ByCategory: make(map[model.Category]int)}

	for key, dst := range map[string]*string{
		"version":      &st.Version,
		"created":      &st.Created,
		"last_updated": &st.LastUpdated,
		"current_hash": &st.CurrentHash,
	} {
		value, err := getMeta(ctx, db.conn, key)
		if err != nil {
			return st, err
		}
		*dst = value
	}

	rows, err := db.conn.QueryContext(ctx, `SELECT category, COUNT(*) FROM components GROUP BY category`)
	if err != nil {
		return st, fmt.Errorf("failed to get stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return st, fmt.Errorf("failed to scan stats: %w", err)
		}
		st.ByCategory[model.Category(cat)] = n
		st.Total += n
	}
	return st, rows.Err()
}

// Classify назначает категории из базы записям, оставшимся нераспределенными
func (db *DB) Classify(ctx context.Context, records []model.ComponentRecord) (int, error) {
	found := 0
	for i := range records {
		if records[i].Category != model.CategoryUnclassified {
			continue
		}
		cat, ok, err := db.Lookup(ctx, records[i].Description)
		if err != nil {
			return found, err
		}
		if ok {
			records[i].Category = cat
			found++
		}
	}
	if found > 0 {
		db.log.Info("✓ Записи классифицированы по базе компонентов", logger.Int("records", found))
	}
	return found, nil
}
