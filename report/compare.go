package report

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"bomsplit/logger"
	"bomsplit/model"
	"bomsplit/normalization"
)

// CompareSheet лист с результатом сравнения
const CompareSheet = "Сравнение"

// Виды изменений
const (
	ChangeAdded   = "Добавлено"
	ChangeRemoved = "Удалено"
	ChangeChanged = "Изменено"
)

// ErrNotProcessed в книге нет ни одного листа категории
var ErrNotProcessed = errors.New("workbook has no category sheets")

var (
	compareNameHeaders = []string{"наименование ивп", "наименование"}
	compareQtyHeaders  = []string{"шт.", "кол-во", "количество", "qty"}
)

// Diff расхождение по одной позиции
type Diff struct {
	Category model.Category
	Change   string
	Name     string
	Qty1     int
	Qty2     int
}

// Delta разница количеств (второй файл минус первый)
func (d Diff) Delta() int {
	return d.Qty2 - d.Qty1
}

// Compare сравнивает две обработанные книги по листам категорий.
// Позиции сопоставляются по наименованию со схлопнутыми пробелами, количества суммируются.
func Compare(path1, path2 string) ([]Diff, error) {
	const op = "report.Compare"

	first, err := readProcessed(path1)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, path1, err)
	}
	second, err := readProcessed(path2)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, path2, err)
	}

	categories := lo.Uniq(append(lo.Keys(first), lo.Keys(second)...))
	slices.SortFunc(categories, func(a, b model.Category) int {
		return strings.Compare(a.SheetName(), b.SheetName())
	})

	var diffs []Diff
	for _, cat := range categories {
		q1, q2 := first[cat], second[cat]
		names := lo.Uniq(append(lo.Keys(q1), lo.Keys(q2)...))
		slices.Sort(names)

		for _, name := range names {
			a, b := q1[name], q2[name]
			if a == b {
				continue
			}
			d := Diff{Category: cat, Name: name, Qty1: a, Qty2: b, Change: ChangeChanged}
			switch {
			case a == 0:
				d.Change = ChangeAdded
			case b == 0:
				d.Change = ChangeRemoved
			}
			diffs = append(diffs, d)
		}
	}
	return diffs, nil
}

// CompareProcessed сравнивает две книги и пишет лист "Сравнение" в out
func CompareProcessed(path1, path2, out string, log *zap.Logger) ([]Diff, error) {
	const op = "report.CompareProcessed"
	log = logger.OrNop(log)

	diffs, err := Compare(path1, path2)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	st, err := newStyles(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	w := &workbook{f: f, styles: st, first: true}

	if len(diffs) == 0 {
		err = w.table(CompareSheet, []string{"Результат"}, [][]any{{"Файлы идентичны, различий не найдено"}}, []int{0}, nil)
	} else {
		rows := lo.Map(diffs, func(d Diff, _ int) []any {
			return []any{d.Category.SheetName(), d.Change, d.Name, d.Qty1, d.Qty2, d.Delta()}
		})
		err = w.table(CompareSheet,
			[]string{"Категория", "Изменение", "Наименование ИВП", "Кол-во в файле 1", "Кол-во в файле 2", "Разница"},
			rows, []int{0, 2}, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := save(f, out, op); err != nil {
		return nil, err
	}

	counts := lo.CountValuesBy(diffs, func(d Diff) string { return d.Change })
	log.Info("✓ Сравнение записано",
		logger.String("output", out),
		logger.Int("added", counts[ChangeAdded]),
		logger.Int("removed", counts[ChangeRemoved]),
		logger.Int("changed", counts[ChangeChanged]))
	return diffs, nil
}

// readProcessed количества по категориям и наименованиям
func readProcessed(path string) (map[model.Category]map[string]int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make(map[model.Category]map[string]int)
	for _, sheet := range f.GetSheetList() {
		cat, ok := model.CategoryFromSheet(sheet)
		if !ok || cat == model.CategoryUnclassified {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, err
		}
		qty := make(map[string]int)
		out[cat] = qty
		if len(rows) == 0 {
			continue
		}

		nameCol, qtyCol := headerIndex(rows[0], compareNameHeaders), headerIndex(rows[0], compareQtyHeaders)
		if nameCol < 0 {
			continue
		}
		for _, row := range rows[1:] {
			if nameCol >= len(row) {
				continue
			}
			name := normalization.CollapseSpaces(row[nameCol])
			if name == "" {
				continue
			}
			n := 1
			if qtyCol >= 0 && qtyCol < len(row) {
				if v, err := strconv.Atoi(strings.TrimSpace(row[qtyCol])); err == nil {
					n = v
				}
			}
			qty[name] += n
		}
	}
	if len(out) == 0 {
		return nil, ErrNotProcessed
	}
	return out, nil
}

// headerIndex первая колонка заголовка из списка вариантов (по порядку вариантов)
func headerIndex(header, variants []string) int {
	normalized := lo.Map(header, func(h string, _ int) string { return strings.ToLower(strings.TrimSpace(h)) })
	for _, v := range variants {
		if i := lo.IndexOf(normalized, v); i >= 0 {
			return i
		}
	}
	return -1
}
