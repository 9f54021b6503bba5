package ingest

import (
	"strconv"
	"strings"

	"github.com/samber/lo"

	"bomsplit/model"
)

// Синонимы заголовков колонок. Порядок важен: FindColumn берет первое совпадение.
var (
	referenceAliases = []string{
		"ref", "reference", "designator", "refdes", "reference designator",
		"обозначение", "позиционное обозначение", "примечание (references)",
	}
	descriptionAliases = []string{
		"description", "desc", "наименование ивп", "наименование", "имя",
		"item", "part", "part name", "наим.",
	}
	valueAliases    = []string{"value", "значение", "номинал"}
	partAliases     = []string{"partnumber", "mfr part", "mpn", "pn", "art", "артикул", "part", "part name"}
	quantityAliases = []string{
		"qty", "quantity", "количество", "кол.", "кол-во", "кол. в ктд", "кол в ктд",
		"кол. в спецификации", "кол. в кдт", "кол. в ктд, шт", "кол. в ктд (шт)",
		"кол. в ктд, шт.", "шт.", "шт",
	}
	mrCodeAliases = []string{
		"код мр", "код ивп", "код мр/ивп", "код позиции", "код изделия",
		"код мр позиции", "код мр ивп",
	}
	noteAliases     = []string{"примечание", "note", "notes"}
	tuAliases       = []string{"ту", "tu"}
	rowNumberPrefix = "№ п"

	// префиксы колонок, которые сливаются в одну
	descriptionPrefixes = []string{"description", "наименование", "desc", "имя"}
	quantityPrefixes    = []string{"qty", "quantity", "количество", "кол"}
)

// ColumnMap индексы найденных колонок, -1 если колонки нет
type ColumnMap struct {
	Reference   int
	Description []int
	Value       int
	Part        int
	Quantity    []int
	MRCode      int
	Note        int
	TU          int
	RowNumber   int
}

// Usable есть хотя бы одна колонка с текстом для классификации
func (m ColumnMap) Usable() bool {
	return m.Reference >= 0 || len(m.Description) > 0 || m.Value >= 0 || m.Part >= 0
}

// Table заголовок и строки одного листа
type Table struct {
	Header []string
	Rows   [][]string
	// FirstRow номер строки Excel первой строки данных
	FirstRow int
}

// NormalizeHeader приводит имена колонок к нижнему регистру без крайних пробелов
func NormalizeHeader(header []string) []string {
	return lo.Map(header, func(h string, _ int) string {
		return strings.ToLower(strings.TrimSpace(h))
	})
}

// FindColumn ищет колонку сначала по точному имени, затем по префиксу.
// Кандидаты проверяются в порядке списка. Возвращает -1, если ничего не найдено.
func FindColumn(candidates, columns []string) int {
	for _, cand := range candidates {
		if i := lo.IndexOf(columns, cand); i >= 0 {
			return i
		}
	}
	for _, cand := range candidates {
		for i, col := range columns {
			if strings.HasPrefix(col, cand) {
				return i
			}
		}
	}
	return -1
}

// MapColumns сопоставляет заголовок листа с полями записи
func MapColumns(header []string) ColumnMap {
	cols := NormalizeHeader(header)
	m := ColumnMap{
		Reference: FindColumn(referenceAliases, cols),
		Value:     FindColumn(valueAliases, cols),
		Part:      FindColumn(partAliases, cols),
		MRCode:    FindColumn(mrCodeAliases, cols),
		Note:      FindColumn(noteAliases, cols),
		TU:        FindColumn(tuAliases, cols),
		RowNumber: -1,
	}
	if m.Note == m.Reference {
		m.Note = -1
	}

	for i, raw := range header {
		if strings.HasPrefix(strings.TrimSpace(raw), rowNumberPrefix) {
			m.RowNumber = i
			break
		}
	}

	m.Description = prefixedColumns(cols, descriptionPrefixes)
	if len(m.Description) <= 1 {
		m.Description = nil
		if i := FindColumn(descriptionAliases, cols); i >= 0 {
			m.Description = []int{i}
		}
	}
	m.Quantity = prefixedColumns(cols, quantityPrefixes)
	if len(m.Quantity) <= 1 {
		m.Quantity = nil
		if i := FindColumn(quantityAliases, cols); i >= 0 {
			m.Quantity = []int{i}
		}
	}

	return m
}

func prefixedColumns(cols, prefixes []string) []int {
	var out []int
	for i, col := range cols {
		if col == "" {
			continue
		}
		if lo.SomeBy(prefixes, func(p string) bool { return strings.HasPrefix(col, p) }) {
			out = append(out, i)
		}
	}
	return out
}

// Reconcile превращает строки листа в записи.
// Несколько колонок наименования сливаются по первому непустому значению,
// несколько колонок количества по первому числовому. Если ни одной текстовой
// колонки не найдено, описанием становится весь текст строки.
func Reconcile(t Table) []model.ComponentRecord {
	m := MapColumns(t.Header)
	records := make([]model.ComponentRecord, 0, len(t.Rows))

	for i, row := range t.Rows {
		if lo.EveryBy(row, func(c string) bool { return strings.TrimSpace(c) == "" }) {
			continue
		}

		rec := model.ComponentRecord{
			Reference:  cell(row, m.Reference),
			Value:      cell(row, m.Value),
			PartNumber: cell(row, m.Part),
			MRCode:     cell(row, m.MRCode),
			Note:       cell(row, m.Note),
			TU:         cell(row, m.TU),
			RowNumber:  t.FirstRow + i,
		}
		rec.OriginalNote = rec.Note

		if m.Usable() {
			rec.Description = firstNonEmpty(row, m.Description)
		} else {
			rec.Description = strings.Join(lo.Compact(lo.Map(row, func(c string, _ int) string {
				return strings.TrimSpace(c)
			})), " ")
		}

		if n, err := strconv.Atoi(strings.TrimSpace(cell(row, m.RowNumber))); err == nil {
			rec.RowNumber = n
		}

		rec.Quantity = 1
		if qty, ok := firstQuantity(row, m.Quantity); ok {
			rec.Quantity = qty
			rec.HasExplicitQty = true
		} else if rec.Reference != "" {
			rec.Quantity = CountFromReference(rec.Reference)
		}

		records = append(records, rec)
	}

	return records
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func firstNonEmpty(row []string, idxs []int) string {
	for _, i := range idxs {
		if v := cell(row, i); v != "" {
			return v
		}
	}
	return ""
}

func firstQuantity(row []string, idxs []int) (int, bool) {
	for _, i := range idxs {
		if q, ok := model.ParseQuantity(cell(row, i)); ok {
			return q, true
		}
	}
	return 0, false
}
