package report

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"bomsplit/logger"
	"bomsplit/model"
)

// Служебные листы отчета
const (
	SummarySheet = "SUMMARY"
	SourcesSheet = "SOURCES"
	InfoSheet    = "INFO"
)

// Columns колонки листа категории
var Columns = []string{"№ п/п", "Наименование ИВП", "ТУ", "Код МР", "Примечание (references)", "Источник", "шт."}

const (
	maxColWidth = 100
	minColWidth = 6
	textNumFmt  = 49 // "@"
)

// Options параметры книги
type Options struct {
	// Summary добавляет первым лист SUMMARY со сводкой по категориям
	Summary bool
}

// styles идентификаторы стилей книги
type styles struct {
	header, left, center, text int
}

func newStyles(f *excelize.File) (styles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}

	var s styles
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{
		Border:    border,
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	}); err != nil {
		return s, err
	}
	if s.left, err = f.NewStyle(&excelize.Style{
		Border:    border,
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	}); err != nil {
		return s, err
	}
	if s.center, err = f.NewStyle(&excelize.Style{
		Border:    border,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}); err != nil {
		return s, err
	}
	s.text, err = f.NewStyle(&excelize.Style{
		Border:    border,
		NumFmt:    textNumFmt,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	return s, err
}

// workbook собирает книгу по листам в порядке добавления
type workbook struct {
	f      *excelize.File
	styles styles
	first  bool
}

func (w *workbook) addSheet(name string) error {
	if w.first {
		w.first = false
		return w.f.SetSheetName("Sheet1", name)
	}
	_, err := w.f.NewSheet(name)
	return err
}

// table пишет заголовок и строки, ставит стили и ширину колонок.
// alignLeft перечисляет колонки (с нуля) с выравниванием влево, textCols колонки текстового формата.
func (w *workbook) table(sheet string, header []string, rows [][]any, alignLeft, textCols []int) error {
	if err := w.addSheet(sheet); err != nil {
		return err
	}

	widths := lo.Map(header, func(h string, _ int) int { return utf8.RuneCountInString(h) })
	headerRow := lo.Map(header, func(h string, _ int) any { return h })
	if err := w.f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := w.f.SetCellStyle(sheet, "A1", last, w.styles.header); err != nil {
		return err
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := w.f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
		for col, v := range row {
			if n := utf8.RuneCountInString(fmt.Sprint(v)); col < len(widths) && n > widths[col] {
				widths[col] = n
			}
			style := w.styles.center
			switch {
			case slices.Contains(alignLeft, col):
				style = w.styles.left
			case slices.Contains(textCols, col):
				style = w.styles.text
			}
			ref, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := w.f.SetCellStyle(sheet, ref, ref, style); err != nil {
				return err
			}
		}
	}

	for col, width := range widths {
		name, _ := excelize.ColumnNumberToName(col + 1)
		if err := w.f.SetColWidth(sheet, name, name, float64(min(max(width+2, minColWidth), maxColWidth))); err != nil {
			return err
		}
	}
	return w.f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// WriteXLSX пишет книгу отчета: листы категорий с русскими названиями,
// SUMMARY (если включен), SOURCES и INFO, когда писать нечего
func WriteXLSX(path string, records []model.ComponentRecord, opts Options, log *zap.Logger) error {
	const op = "report.WriteXLSX"
	log = logger.OrNop(log)

	f := excelize.NewFile()
	defer f.Close()

	st, err := newStyles(f)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	w := &workbook{f: f, styles: st, first: true}

	sheets := BuildSheets(records)
	if len(sheets) == 0 {
		if err := w.table(InfoSheet, []string{"Сообщение"}, [][]any{{"Нет данных для записи"}}, []int{0}, nil); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		log.Warn("⚠ Нет данных для записи, создан лист INFO", logger.String("path", path))
		return save(f, path, op)
	}

	if opts.Summary {
		if err := w.table(SummarySheet, []string{"№ п/п", "Категория", "Кол-во позиций", "Общее количество"},
			summaryRows(sheets), []int{1}, nil); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	for _, sheet := range sheets {
		rows := lo.Map(sheet.Rows, func(r Row, _ int) []any {
			if r.Blank {
				return nil
			}
			return []any{r.Number, r.Name, r.TU, r.MRCode, r.Reference, r.Source, r.Quantity}
		})
		if err := w.table(sheet.Category.SheetName(), Columns, rows, []int{1, 2, 4, 5}, []int{3}); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		log.Info("Лист записан",
			logger.String("sheet", sheet.Category.SheetName()),
			logger.Int("positions", sheet.Positions()),
			logger.Int("quantity", sheet.TotalQuantity()))
	}

	if err := w.table(SourcesSheet, []string{"source_file", "source_sheet"}, sourceRows(records), []int{0, 1}, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return save(f, path, op)
}

func save(f *excelize.File, path, op string) error {
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func summaryRows(sheets []Sheet) [][]any {
	return lo.Map(sheets, func(s Sheet, i int) []any {
		return []any{i + 1, s.Category.SheetName(), s.Positions(), s.TotalQuantity()}
	})
}

// sourceRows уникальные пары (файл без пометок, лист), отсортированные
func sourceRows(records []model.ComponentRecord) [][]any {
	pairs := lo.Uniq(lo.Map(records, func(r model.ComponentRecord, _ int) [2]string {
		return [2]string{CleanSource(r.SourceFile), r.SourceSheet}
	}))
	slices.SortFunc(pairs, func(a, b [2]string) int {
		if c := strings.Compare(a[0], b[0]); c != 0 {
			return c
		}
		return strings.Compare(a[1], b[1])
	})
	return lo.Map(pairs, func(p [2]string, _ int) []any { return []any{p[0], p[1]} })
}
