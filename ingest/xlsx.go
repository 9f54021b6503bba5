package ingest

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"bomsplit/logger"
	"bomsplit/model"
)

// serviceSheets листы отчета, которые не являются данными
var serviceSheets = []string{"SUMMARY", "SOURCES", "INFO"}

// headerHints слова, по которым первая строка данных признается заголовком
var headerHints = []string{"наименование", "количество", "кол.", "код", "description", "qty"}

// ReadXLSX читает записи из книги Excel.
// Пустой sheets означает все листы, кроме служебных. Элемент sheets может
// быть именем листа или его номером, начиная с 1.
func ReadXLSX(path string, sheets []string, log *zap.Logger) ([]model.ComponentRecord, error) {
	const op = "ingest.ReadXLSX"
	log = logger.OrNop(log)

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	names, err := selectSheets(f.GetSheetList(), sheets)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	base := filepath.Base(path)
	var records []model.ComponentRecord
	for _, name := range names {
		rows, err := f.GetRows(name)
		if err != nil {
			log.Warn("Не удалось прочитать лист",
				logger.String("file", base), logger.String("sheet", name), logger.ErrorF(err))
			continue
		}

		sheetRecords := Reconcile(tableFromRows(rows))
		category, preset := model.CategoryFromSheet(name)
		if preset {
			log.Info("Категория сохранена из имени листа",
				logger.String("sheet", name), logger.String("category", string(category)))
		}
		for i := range sheetRecords {
			sheetRecords[i].SourceFile = base
			sheetRecords[i].SourceSheet = name
			if preset {
				sheetRecords[i].Category = category
			}
		}
		records = append(records, sheetRecords...)
	}

	return records, nil
}

// selectSheets разрешает запрошенные листы в имена
func selectSheets(all, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return lo.Filter(all, func(name string, _ int) bool {
			return !lo.Contains(serviceSheets, strings.ToUpper(name))
		}), nil
	}

	out := make([]string, 0, len(requested))
	for _, token := range requested {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if n, err := strconv.Atoi(token); err == nil {
			if n < 1 || n > len(all) {
				return nil, fmt.Errorf("лист %d вне диапазона 1..%d", n, len(all))
			}
			out = append(out, all[n-1])
			continue
		}
		if !lo.Contains(all, token) {
			return nil, fmt.Errorf("лист %q не найден", token)
		}
		out = append(out, token)
	}
	return lo.Uniq(out), nil
}

// tableFromRows выделяет заголовок.
// Если первая строка листа в основном пустая, а следующая похожа на заголовок,
// заголовком становится вторая строка.
func tableFromRows(rows [][]string) Table {
	if len(rows) == 0 {
		return Table{}
	}

	width := lo.Max(lo.Map(rows, func(r []string, _ int) int { return len(r) }))
	header := rows[0]
	filled := lo.CountBy(header, func(c string) bool { return strings.TrimSpace(c) != "" })

	if width > 0 && (width-filled)*2 >= width && len(rows) > 1 && looksLikeHeader(rows[1]) {
		return Table{Header: rows[1], Rows: rows[2:], FirstRow: 3}
	}
	return Table{Header: header, Rows: rows[1:], FirstRow: 2}
}

func looksLikeHeader(row []string) bool {
	text := strings.ToLower(strings.Join(row, " "))
	return lo.SomeBy(headerHints, func(h string) bool { return strings.Contains(text, h) })
}
