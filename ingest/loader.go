package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"bomsplit/logger"
	"bomsplit/model"
)

var (
	// ErrUnsupportedFormat формат входного файла не поддерживается
	ErrUnsupportedFormat = errors.New("unsupported input format")
	// ErrInvalidMultiplier множитель в "файл:N" не положительный
	ErrInvalidMultiplier = errors.New("multiplier must be positive")
)

// Input входной файл и множитель количества
type Input struct {
	Path       string
	Multiplier int
}

// ParseInput разбирает "файл" или "файл:N".
// Двоеточие после буквы диска Windows множителем не считается. При N <= 0
// возвращается ErrInvalidMultiplier и вход целиком считается путем с множителем 1.
func ParseInput(spec string) (Input, error) {
	in := Input{Path: spec, Multiplier: 1}

	i := strings.LastIndex(spec, ":")
	if i <= 0 || isDriveColon(spec, i) {
		return in, nil
	}
	n, err := strconv.Atoi(spec[i+1:])
	if err != nil {
		return in, nil
	}
	if n <= 0 {
		return in, fmt.Errorf("%q: %w", spec, ErrInvalidMultiplier)
	}
	return Input{Path: spec[:i], Multiplier: n}, nil
}

func isDriveColon(spec string, i int) bool {
	if i != 1 {
		return false
	}
	c := spec[0]
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// Loader читает все входные файлы в один список записей
type Loader struct {
	// Sheets листы Excel для чтения, пусто = все
	Sheets []string

	log *zap.Logger
}

// NewLoader создает загрузчик
func NewLoader(sheets []string, log *zap.Logger) *Loader {
	return &Loader{Sheets: sheets, log: logger.OrNop(log)}
}

// Load читает входы по очереди. Файл, который не удалось прочитать,
// пропускается с предупреждением.
func (l *Loader) Load(ctx context.Context, specs []string) ([]model.ComponentRecord, error) {
	var all []model.ComponentRecord

	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		in, err := ParseInput(spec)
		if err != nil {
			l.log.Warn("Множитель должен быть положительным числом", logger.ErrorF(err))
		}

		records, err := l.read(in.Path)
		if err != nil {
			l.log.Warn("Не удалось прочитать входной файл",
				logger.String("file", in.Path), logger.ErrorF(err))
			continue
		}

		if in.Multiplier > 1 {
			for i := range records {
				records[i].Quantity *= in.Multiplier
			}
			l.log.Info("Умножено количество элементов",
				logger.String("file", filepath.Base(in.Path)), logger.Int("multiplier", in.Multiplier))
		}

		l.log.Info("Файл прочитан",
			logger.String("file", filepath.Base(in.Path)), logger.Int("records", len(records)))
		all = append(all, records...)
	}

	return MarkSheets(all), nil
}

func (l *Loader) read(path string) ([]model.ComponentRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(path, l.Sheets, l.log)
	case ".docx":
		records, err := ReadDOCX(path, l.log)
		if err != nil {
			return nil, err
		}
		return withSource(records, path), nil
	case ".txt":
		records, err := ReadTXT(path, l.log)
		if err != nil {
			return nil, err
		}
		return withSource(records, path), nil
	default:
		return nil, fmt.Errorf("%s: %w", filepath.Ext(path), ErrUnsupportedFormat)
	}
}

// withSource проставляет файл-источник и выделяет подборы и замены
func withSource(records []model.ComponentRecord, path string) []model.ComponentRecord {
	base := filepath.Base(path)
	for i := range records {
		records[i].SourceFile = base
		records[i].SourceSheet = ""
	}
	return ExtractAlternates(records)
}

// MarkSheets для файлов, из которых прочитано несколько листов, дописывает
// к источнику номер листа: "bom.xlsx Лист_2". Номер идет по порядку первого появления.
func MarkSheets(records []model.ComponentRecord) []model.ComponentRecord {
	sheetNo := make(map[string]map[string]int)
	for _, r := range records {
		if sheetNo[r.SourceFile] == nil {
			sheetNo[r.SourceFile] = make(map[string]int)
		}
		if _, ok := sheetNo[r.SourceFile][r.SourceSheet]; !ok {
			sheetNo[r.SourceFile][r.SourceSheet] = len(sheetNo[r.SourceFile]) + 1
		}
	}

	for i, r := range records {
		sheets := sheetNo[r.SourceFile]
		if len(sheets) > 1 {
			records[i].SourceFile = fmt.Sprintf("%s Лист_%d", r.SourceFile, sheets[r.SourceSheet])
		}
	}
	return records
}
