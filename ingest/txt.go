package ingest

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"bomsplit/logger"
	"bomsplit/model"
)

var lineBreakRegex = regexp.MustCompile(`\r\n|\r|\n`)

// ReadTXT читает текстовый перечень: одна позиция на строку.
// Файл в UTF-8, при невалидной последовательности байт декодируется как Windows-1251.
func ReadTXT(path string, log *zap.Logger) ([]model.ComponentRecord, error) {
	const op = "ingest.ReadTXT"
	log = logger.OrNop(log)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	text, err := decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !utf8.Valid(data) {
		log.Debug("Файл прочитан в кодировке Windows-1251", logger.String("file", path))
	}

	return ParseText(text), nil
}

// ParseText разбирает содержимое текстового перечня
func ParseText(text string) []model.ComponentRecord {
	var records []model.ComponentRecord
	for _, raw := range lineBreakRegex.Split(text, -1) {
		line := normalizeCell(raw)
		if line == "" {
			continue
		}
		if rec, ok := lineRecord(line); ok {
			records = append(records, rec)
		}
	}

	if len(records) == 0 && strings.TrimSpace(text) != "" {
		records = append(records, model.ComponentRecord{Description: strings.TrimSpace(text), Quantity: 1})
	}
	return records
}

func decodeText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return strings.TrimPrefix(string(data), "\ufeff"), nil
	}
	decoded, _, err := transform.Bytes(charmap.Windows1251.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("cp1251 decode: %w", err)
	}
	return string(decoded), nil
}
