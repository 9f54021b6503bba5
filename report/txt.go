package report

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"bomsplit/logger"
	"bomsplit/model"
	"bomsplit/normalization"
)

// ImportedReportName файл отчета по импортным компонентам
const ImportedReportName = "Импортные_компоненты.txt"

var (
	rule80 = strings.Repeat("=", 80)
	dash80 = strings.Repeat("-", 80)
)

// WriteTXT пишет в dir по файлу "<лист>.txt" на каждую непустую категорию
// и отчет по импортным компонентам. Возвращает пути созданных файлов.
func WriteTXT(dir string, records []model.ComponentRecord, log *zap.Logger) ([]string, error) {
	const op = "report.WriteTXT"
	log = logger.OrNop(log)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var written []string
	for _, cat := range model.OutputOrder {
		rows := lo.Filter(SortedRows(records, cat), func(r Row, _ int) bool { return r.Name != "" })
		if len(rows) == 0 {
			continue
		}

		path := filepath.Join(dir, cat.SheetName()+".txt")
		err := writeLines(path, func(w *bufio.Writer) {
			fmt.Fprintf(w, "=== %s ===\n", strings.ToUpper(cat.SheetName()))
			fmt.Fprintf(w, "Всего элементов: %d\n", len(rows))
			fmt.Fprintf(w, "%s\n\n", rule80)
			for i, r := range rows {
				line := fmt.Sprintf("%d. %s", i+1, r.Name)
				if tu := strings.TrimSpace(r.TU); tu != "" && tu != "-" {
					line += " | ТУ: " + tu
				}
				fmt.Fprintln(w, line)
			}
			fmt.Fprintf(w, "\n%s\n", rule80)
		})
		if err != nil {
			return written, fmt.Errorf("%s: %w", op, err)
		}
		written = append(written, path)
	}

	path, err := writeImported(dir, records)
	if err != nil {
		return written, fmt.Errorf("%s: %w", op, err)
	}
	if path != "" {
		written = append(written, path)
	}

	log.Info("✓ TXT отчеты записаны", logger.String("dir", dir), logger.Int("files", len(written)))
	return written, nil
}

func writeLines(path string, fill func(w *bufio.Writer)) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	fill(w)
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

var (
	domesticTURegex    = regexp.MustCompile(`(?i)^[А-ЯЁ\d]+\.\d+\.\d+ТУ`)
	domesticNameRegexs = lo.Map([]string{
		`^Р\d+[-\s]`, `^С\d+[-\s]`, `^НР\d+[-\s]`, `^МЛТ`, `^СП\d+`,
		`^К\d+[-\s]`, `^КМ[-\s]`, `^КД[-\s]`, `^\d[ДСТ]\d+`, `^КД\d+`,
		`^КТ\d+`, `^\d{3,4}[А-ЯЁ]{2}\d`,
	}, func(p string, _ int) *regexp.Regexp { return regexp.MustCompile("(?i)" + p) })
)

// ImportedItem компонент без отечественного ТУ
type ImportedItem struct {
	Name         string
	Manufacturer string
	Category     model.Category
}

// IsDomesticName наименование похоже на отечественное обозначение (Р1-12, К10-17, 1594ТЛ2Т)
func IsDomesticName(name string) bool {
	return lo.SomeBy(domesticNameRegexs, func(re *regexp.Regexp) bool { return re.MatchString(name) })
}

// ImportedComponents отбирает импортные компоненты: без ТУ и с неотечественным
// наименованием, либо с неотечественным ТУ (тогда это производитель)
func ImportedComponents(records []model.ComponentRecord) []ImportedItem {
	var items []ImportedItem
	for _, r := range records {
		name := strings.TrimSpace(r.Description)
		if name == "" {
			continue
		}
		tu := strings.TrimSpace(TUColumn(r))
		if tu == "-" {
			tu = ""
		}

		var manufacturer string
		switch {
		case tu == "" && !IsDomesticName(name):
		case tu != "" && !domesticTURegex.MatchString(tu):
			manufacturer = tu
		default:
			continue
		}

		clean, _ := normalization.ExtractTUCode(normalization.CleanComponentName(name, ""))
		if clean == "" {
			clean = name
		}
		items = append(items, ImportedItem{Name: clean, Manufacturer: manufacturer, Category: r.Category})
	}
	return items
}

func writeImported(dir string, records []model.ComponentRecord) (string, error) {
	items := ImportedComponents(records)
	if len(items) == 0 {
		return "", nil
	}

	byCategory := lo.GroupBy(items, func(it ImportedItem) string { return it.Category.SheetName() })
	names := lo.Keys(byCategory)
	slices.Sort(names)

	path := filepath.Join(dir, ImportedReportName)
	err := writeLines(path, func(w *bufio.Writer) {
		fmt.Fprintln(w, "=== ИМПОРТНЫЕ КОМПОНЕНТЫ (ИВП) ===")
		fmt.Fprintf(w, "Всего импортных компонентов: %d\n", len(items))
		fmt.Fprintf(w, "Категорий: %d\n", len(names))
		fmt.Fprintln(w, rule80)

		for _, name := range names {
			group := byCategory[name]
			slices.SortStableFunc(group, func(a, b ImportedItem) int { return strings.Compare(a.Name, b.Name) })

			fmt.Fprintf(w, "\n>>> %s\n", strings.ToUpper(name))
			fmt.Fprintln(w, dash80)
			for i, it := range group {
				line := fmt.Sprintf("%d. %s", i+1, it.Name)
				if it.Manufacturer != "" {
					line += " | Производитель: " + it.Manufacturer
				}
				fmt.Fprintln(w, line)
			}
		}

		fmt.Fprintf(w, "\n%s\n", rule80)
		fmt.Fprintf(w, "Итого импортных компонентов: %d\n", len(items))
	})
	if err != nil {
		return "", err
	}
	return path, nil
}
