package report

import (
	"math"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/samber/lo"

	"bomsplit/model"
	"bomsplit/normalization"
)

// Row строка листа категории. Пустая строка (Blank) разделяет исходные файлы.
type Row struct {
	Number    int
	Name      string
	TU        string
	MRCode    string
	Reference string
	Source    string
	Quantity  int
	Blank     bool
}

// Sheet лист одной категории
type Sheet struct {
	Category model.Category
	Rows     []Row
}

// Positions число позиций без разделителей
func (s Sheet) Positions() int {
	return lo.CountBy(s.Rows, func(r Row) bool { return !r.Blank })
}

// TotalQuantity сумма количеств
func (s Sheet) TotalQuantity() int {
	return lo.SumBy(s.Rows, func(r Row) int { return r.Quantity })
}

type sortKind int

const (
	sortInput sortKind = iota
	sortNominal
	sortAlpha
	sortLatinFirst
)

var sortKinds = map[model.Category]sortKind{
	model.CategoryResistors:      sortNominal,
	model.CategoryCapacitors:     sortNominal,
	model.CategoryInductors:      sortNominal,
	model.CategoryICs:            sortLatinFirst,
	model.CategoryDevBoards:      sortAlpha,
	model.CategoryPowerModules:   sortAlpha,
	model.CategoryOptics:         sortAlpha,
	model.CategorySemiconductors: sortAlpha,
	model.CategoryConnectors:     sortAlpha,
	model.CategoryCables:         sortAlpha,
	model.CategoryRFModules:      sortAlpha,
	model.CategoryOthers:         sortAlpha,
}

// BuildSheets раскладывает записи по листам в порядке model.OutputOrder.
// Внутри листа строки группируются по исходному файлу (в порядке появления),
// сортируются внутри группы, группы разделяются пустой строкой.
func BuildSheets(records []model.ComponentRecord) []Sheet {
	byCategory := lo.GroupBy(records, func(r model.ComponentRecord) model.Category {
		if r.Category.IsEmpty() {
			return model.CategoryUnclassified
		}
		return r.Category
	})

	var sheets []Sheet
	for _, cat := range model.OutputOrder {
		items := byCategory[cat]
		if len(items) == 0 {
			continue
		}

		groups := lo.GroupBy(items, func(r model.ComponentRecord) string { return CleanSource(r.SourceFile) })
		order := lo.Uniq(lo.Map(items, func(r model.ComponentRecord, _ int) string { return CleanSource(r.SourceFile) }))

		sheet := Sheet{Category: cat}
		n := 0
		for gi, source := range order {
			if gi > 0 {
				sheet.Rows = append(sheet.Rows, Row{Blank: true})
			}
			rows := lo.Map(groups[source], func(r model.ComponentRecord, _ int) Row { return buildRow(r) })
			sortRows(rows, cat)
			for _, row := range rows {
				n++
				row.Number = n
				sheet.Rows = append(sheet.Rows, row)
			}
		}
		sheets = append(sheets, sheet)
	}
	return sheets
}

// SortedRows строки категории без разделителей, в порядке отчета
func SortedRows(records []model.ComponentRecord, cat model.Category) []Row {
	rows := lo.FilterMap(records, func(r model.ComponentRecord, _ int) (Row, bool) {
		return buildRow(r), r.Category == cat
	})
	sortRows(rows, cat)
	for i := range rows {
		rows[i].Number = i + 1
	}
	return rows
}

func buildRow(r model.ComponentRecord) Row {
	name := AddPlusMinus(RemoveDuplicateSuffix(strings.TrimSpace(r.Description)))
	tu := TUColumn(r)

	if r.Category == model.CategoryOurDevelopments {
		tu = ""
		if name == "" {
			base := filepath.Base(CleanSource(r.SourceFile))
			name = strings.TrimSuffix(base, filepath.Ext(base))
		}
	}

	source := r.SourceFile
	if r.RowNumber > 0 {
		source += ", п/п " + strconv.Itoa(r.RowNumber)
	}

	return Row{
		Name:      name,
		TU:        tu,
		MRCode:    r.MRCode,
		Reference: r.Reference,
		Source:    source,
		Quantity:  r.Quantity,
	}
}

// TUColumn значение колонки ТУ: извлеченный код, иначе часть примечания с "ТУ",
// иначе само примечание, иначе ТУ из наименования
func TUColumn(r model.ComponentRecord) string {
	if tu := strings.TrimSpace(r.TU); tu != "" {
		return tu
	}
	if note := strings.TrimSpace(r.Note); note != "" {
		if first, second, ok := strings.Cut(note, "|"); ok {
			first, second = strings.TrimSpace(first), strings.TrimSpace(second)
			if strings.Contains(strings.ToUpper(first), "ТУ") || second == "" {
				return first
			}
			return second
		}
		return note
	}
	_, code := normalization.ExtractTUCode(r.Description)
	return code
}

func sortRows(rows []Row, cat model.Category) {
	switch sortKinds[cat] {
	case sortNominal:
		nominal := func(r Row) float64 {
			if v, ok := normalization.ExtractNominalValue(r.Name, cat); ok {
				return v
			}
			return math.Inf(1)
		}
		slices.SortStableFunc(rows, func(a, b Row) int {
			va, vb := nominal(a), nominal(b)
			switch {
			case va < vb:
				return -1
			case va > vb:
				return 1
			}
			return strings.Compare(a.Name, b.Name)
		})
	case sortAlpha:
		slices.SortStableFunc(rows, func(a, b Row) int { return strings.Compare(a.Name, b.Name) })
	case sortLatinFirst:
		slices.SortStableFunc(rows, func(a, b Row) int {
			ga, gb := scriptGroup(a.Name), scriptGroup(b.Name)
			if ga != gb {
				return ga - gb
			}
			return strings.Compare(strings.ToUpper(a.Name), strings.ToUpper(b.Name))
		})
	}
}

// scriptGroup 0 для латиницы, 1 для кириллицы, 2 для остального
func scriptGroup(name string) int {
	for _, r := range name {
		if !unicode.IsLetter(r) {
			continue
		}
		switch {
		case unicode.Is(unicode.Latin, r):
			return 0
		case unicode.Is(unicode.Cyrillic, r):
			return 1
		}
		return 2
	}
	return 2
}

var sourceTagRegex = regexp.MustCompile(`\s*\([^)]*\)`)

// CleanSource имя источника без пометок в скобках и хвостовых запятых
func CleanSource(source string) string {
	cleaned := sourceTagRegex.ReplaceAllString(source, "")
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(cleaned), ","))
}
