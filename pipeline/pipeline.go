package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"bomsplit/aggregation"
	"bomsplit/classification"
	"bomsplit/database"
	"bomsplit/ingest"
	"bomsplit/logger"
	"bomsplit/model"
	"bomsplit/normalization"
	"bomsplit/report"
	"bomsplit/rules"
)

// ErrNoRecords ни один входной файл не дал записей
var ErrNoRecords = errors.New("no records loaded from inputs")

// DefaultRulesPath файл правил по умолчанию
const DefaultRulesPath = "rules.json"

// Options параметры одного запуска
type Options struct {
	Inputs []string
	// Sheets листы Excel (имена или номера с 1), пусто = все
	Sheets []string

	// Output путь книги отчета, пусто = книга не пишется
	Output string
	// TxtDir каталог текстовых отчетов, пусто = не писать
	TxtDir string

	// Combine объединяет одинаковые позиции из разных файлов и добавляет SUMMARY
	Combine bool
	Strict  bool

	RulesPath      string
	ExclusionsPath string
	// ExcludePodbor убирает подборы и замены
	ExcludePodbor bool

	// DB база известных компонентов, nil = не использовать
	DB *database.DB
	// Resolver интерактивная разметка нераспределенных записей, nil = без разметки
	Resolver rules.Resolver
}

// Result итог запуска
type Result struct {
	RunID        string
	Loaded       int
	Records      []model.ComponentRecord
	Unclassified int
	Decided      int
	TxtFiles     []string
}

// Run выполняет полный цикл: чтение, очистка, классификация, правила, база,
// интерактивная разметка, исключения, агрегация и запись отчетов
func Run(ctx context.Context, opts Options, log *zap.Logger) (*Result, error) {
	const op = "pipeline.Run"

	res := &Result{RunID: uuid.NewString()}
	log = logger.OrNop(log).With(logger.String("run_id", res.RunID))

	records, err := ingest.NewLoader(opts.Sheets, log).Load(ctx, opts.Inputs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNoRecords)
	}
	res.Loaded = len(records)
	log.Info("Загружено записей", logger.Int("records", len(records)), logger.Int("files", len(opts.Inputs)))

	if res.Records, res.Decided, err = Process(ctx, records, opts, log); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	records = res.Records
	res.Unclassified = lo.CountBy(records, func(r model.ComponentRecord) bool {
		return r.Category == model.CategoryUnclassified
	})
	if res.Unclassified > 0 {
		log.Warn("⚠ Остались нераспределенные записи", logger.Int("records", res.Unclassified))
	}

	if opts.Output != "" {
		if err := report.WriteXLSX(opts.Output, records, report.Options{Summary: opts.Combine}, log); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		log.Info("✓ Отчет записан", logger.String("path", opts.Output))
	}
	if opts.TxtDir != "" {
		if res.TxtFiles, err = report.WriteTXT(opts.TxtDir, records, log); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return res, nil
}

// Process обрабатывает загруженные записи без чтения и записи файлов.
// Возвращает итоговые записи и число решений, принятых в интерактивной разметке.
func Process(ctx context.Context, records []model.ComponentRecord, opts Options, log *zap.Logger) ([]model.ComponentRecord, int, error) {
	log = logger.OrNop(log)
	decided := 0

	records = Prepare(records)

	classified := classification.ClassifyAll(records, opts.Strict)
	log.Info("✓ Классификация выполнена",
		logger.Int("classified", classified), logger.Bool("strict", opts.Strict))

	file := loadRules(opts.RulesPath, log)
	if file != nil {
		if n := file.Apply(records); n > 0 {
			log.Info("✓ Применены правила", logger.String("path", file.Path), logger.Int("records", n))
		}
	}

	if opts.DB != nil {
		if _, err := opts.DB.Classify(ctx, records); err != nil {
			log.Warn("⚠ Не удалось классифицировать по базе компонентов", logger.ErrorF(err))
		}
	}

	if opts.Resolver != nil {
		session := rules.NewSession(file, opts.Resolver, log)
		if opts.DB != nil {
			session.Remember = func(rec model.ComponentRecord, cat model.Category) {
				if _, err := opts.DB.Add(ctx, rec.Description, cat, ""); err != nil {
					log.Warn("⚠ Решение не сохранено в базу", logger.String("name", rec.Description), logger.ErrorF(err))
				}
			}
		}
		var err error
		if decided, err = session.Run(ctx, records); err != nil {
			return nil, decided, err
		}
	}

	if opts.ExcludePodbor {
		before := len(records)
		records = DropAlternates(records)
		log.Info("Подборы и замены исключены", logger.Int("removed", before-len(records)))
	}

	if opts.ExclusionsPath != "" {
		items, err := aggregation.LoadExclusions(opts.ExclusionsPath, log)
		if err != nil {
			log.Warn("⚠ Файл исключений не прочитан", logger.String("path", opts.ExclusionsPath), logger.ErrorF(err))
		} else {
			records = aggregation.ApplyExclusions(records, items, log)
		}
	}

	records = DropEmpty(records)

	total := aggregation.TotalQuantity(records)
	records = aggregation.Aggregate(records, aggregation.Options{CombineAcrossFiles: opts.Combine})
	log.Info("✓ Дубликаты объединены",
		logger.Int("records", len(records)), logger.Int("quantity", total), logger.Bool("combine", opts.Combine))

	records = DropAMFI(records)

	return records, decided, nil
}

// loadRules читает файл правил. Нечитаемый файл не перезаписывается:
// правила и интерактивное сохранение отключаются.
func loadRules(path string, log *zap.Logger) *rules.File {
	if path == "" {
		path = DefaultRulesPath
	}
	file, err := rules.Load(path, log)
	if err != nil {
		log.Warn("⚠ Файл правил не прочитан, правила не применяются", logger.String("path", path), logger.ErrorF(err))
		return nil
	}
	return file
}

// Prepare приводит записи к общему виду до классификации:
// очищает наименования новых записей, нормализует тире и выносит ТУ из наименования.
// Запись, у которой уже есть и категория, и ТУ, не трогается.
func Prepare(records []model.ComponentRecord) []model.ComponentRecord {
	for i := range records {
		r := &records[i]
		if !r.HasCategory() {
			r.Description = normalization.CleanComponentName(r.Description, r.Note)
		}
		r.Reference = normalization.NormalizeDashes(r.Reference)
		r.Value = normalization.NormalizeDashes(r.Value)
		r.TU = normalization.NormalizeDashes(r.TU)

		if r.HasCategory() && strings.TrimSpace(r.TU) != "" {
			continue
		}
		rest, code := normalization.ExtractTUCode(r.Description)
		r.Description = rest
		if code == "" {
			continue
		}
		if strings.TrimSpace(r.TU) == "" {
			r.TU = code
		}

		note := strings.TrimSpace(r.Note)
		switch {
		case note == "":
			r.Note = code
		case !strings.Contains(strings.ToUpper(note), "ТУ"):
			r.Note = code + " | " + note
		}
	}
	return records
}

// DropAlternates убирает записи подборов и замен
func DropAlternates(records []model.ComponentRecord) []model.ComponentRecord {
	return lo.Reject(records, func(r model.ComponentRecord, _ int) bool {
		return aggregation.IsAlternateSource(r.SourceFile)
	})
}

// DropEmpty убирает записи без наименования. Наши разработки остаются:
// в отчете им подставляется имя файла.
func DropEmpty(records []model.ComponentRecord) []model.ComponentRecord {
	return lo.Filter(records, func(r model.ComponentRecord, _ int) bool {
		return strings.TrimSpace(r.Description) != "" || r.Category == model.CategoryOurDevelopments
	})
}

// DropAMFI убирает позиции АМФИ, они не попадают в отчет
func DropAMFI(records []model.ComponentRecord) []model.ComponentRecord {
	return lo.Reject(records, func(r model.ComponentRecord, _ int) bool {
		return strings.Contains(strings.ToUpper(r.Description), "АМФИ")
	})
}
