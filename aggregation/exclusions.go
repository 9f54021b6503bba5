package aggregation

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"bomsplit/logger"
	"bomsplit/model"
)

// Exclusion позиция, которую нужно убрать из BOM в заданном количестве
type Exclusion struct {
	Name     string
	Quantity int
}

// LoadExclusions читает файл исключений
func LoadExclusions(path string, log *zap.Logger) ([]Exclusion, error) {
	const op = "aggregation.LoadExclusions"

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	items, err := ParseExclusions(f, log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// ParseExclusions разбирает строки "Название, количество".
// Пустые строки и комментарии "#" пропускаются, ошибочные строки логируются и пропускаются.
func ParseExclusions(r io.Reader, log *zap.Logger) ([]Exclusion, error) {
	log = logger.OrNop(log)

	var items []Exclusion
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		comma := strings.LastIndex(line, ",")
		if comma < 0 {
			log.Warn("⚠ Строка исключений без запятой", logger.Int("line", lineNum), logger.String("text", line))
			continue
		}

		name := strings.TrimSpace(line[:comma])
		qty, err := strconv.Atoi(strings.TrimSpace(line[comma+1:]))
		if err != nil || name == "" {
			log.Warn("⚠ Неверное количество в строке исключений", logger.Int("line", lineNum), logger.String("text", line))
			continue
		}
		items = append(items, Exclusion{Name: name, Quantity: qty})
	}
	if err := scanner.Err(); err != nil {
		return items, fmt.Errorf("failed to read exclusions: %w", err)
	}
	return items, nil
}

// ApplyExclusions уменьшает количество совпавших позиций (подстрока без учета регистра).
// Строка удаляется целиком, если ее количество не больше остатка исключения.
func ApplyExclusions(records []model.ComponentRecord, items []Exclusion, log *zap.Logger) []model.ComponentRecord {
	log = logger.OrNop(log)
	if len(items) == 0 {
		return records
	}

	removed := make([]bool, len(records))
	excluded, reduced := 0, 0

	for _, item := range items {
		needle := strings.ToLower(item.Name)
		remaining := item.Quantity
		matched := false

		for i := range records {
			if remaining <= 0 {
				break
			}
			if removed[i] || !strings.Contains(strings.ToLower(records[i].Description), needle) {
				continue
			}
			matched = true

			if records[i].Quantity <= remaining {
				remaining -= records[i].Quantity
				removed[i] = true
				excluded++
				log.Info("✓ Исключена позиция", logger.String("name", records[i].Description), logger.Int("qty", records[i].Quantity))
				continue
			}

			before := records[i].Quantity
			records[i].Quantity -= remaining
			remaining = 0
			reduced++
			log.Info("✓ Уменьшено количество", logger.String("name", records[i].Description),
				logger.Int("before", before), logger.Int("after", records[i].Quantity))
		}

		if !matched {
			log.Warn("⚠ Позиция для исключения не найдена", logger.String("name", item.Name))
			continue
		}
		if remaining > 0 {
			log.Warn("⚠ Не удалось исключить полное количество", logger.String("name", item.Name), logger.Int("remaining", remaining))
		}
	}

	out := make([]model.ComponentRecord, 0, len(records))
	for i, r := range records {
		if !removed[i] {
			out = append(out, r)
		}
	}
	if excluded > 0 || reduced > 0 {
		log.Info("Исключения применены", logger.Int("excluded", excluded), logger.Int("reduced", reduced))
	}
	return out
}
