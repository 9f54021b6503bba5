package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"bomsplit/logger"
	"bomsplit/model"
)

const (
	componentsSheet = "Компоненты"
	infoSheet       = "Информация"

	nameHeader         = "Наименование компонента"
	categoryKeyHeader  = "Категория (ключ)"
	categoryNameHeader = "Категория (название)"
)

// ErrBadWorkbook в книге нет листа или колонок базы компонентов
var ErrBadWorkbook = errors.New("workbook is not a component database export")

// ExportExcel пишет книгу с листами "Информация" и "Компоненты"
func (db *DB) ExportExcel(ctx context.Context, path string) error {
	const op = "database.ExportExcel"

	items, err := db.Components(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	st, err := db.Stats(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", infoSheet); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	info := [][]any{
		{"Версия базы данных", st.Version},
		{"Дата создания", st.Created},
		{"Последнее обновление", st.LastUpdated},
		{"Всего компонентов", st.Total},
		{"Хэш", st.CurrentHash},
		{},
		{categoryKeyHeader, categoryNameHeader, "Количество"},
	}
	for _, cat := range model.OutputOrder {
		if n := st.ByCategory[cat]; n > 0 {
			info = append(info, []any{string(cat), cat.SheetName(), n})
		}
	}
	if err := writeRows(f, infoSheet, info); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := f.NewSheet(componentsSheet); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rows := [][]any{{nameHeader, categoryKeyHeader, categoryNameHeader}}
	for _, c := range items {
		rows = append(rows, []any{c.Name, string(c.Category), c.Category.SheetName()})
	}
	if err := writeRows(f, componentsSheet, rows); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := f.SetColWidth(componentsSheet, "A", "A", 60); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := f.SetColWidth(componentsSheet, "B", "C", 24); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := f.SetColWidth(infoSheet, "A", "C", 28); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	db.log.Info("✓ База компонентов экспортирована", logger.String("path", path), logger.Int("components", len(items)))
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// ImportExcel загружает лист "Компоненты". replace заменяет базу целиком,
// иначе записи объединяются с существующими. Каждый импорт поднимает старшую часть версии.
func (db *DB) ImportExcel(ctx context.Context, path string, replace bool) (int, error) {
	const op = "database.ImportExcel"

	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	rows, err := f.GetRows(componentsSheet)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %v", op, ErrBadWorkbook, err)
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("%s: %w", op, ErrBadWorkbook)
	}

	nameCol, catCol := -1, -1
	for i, h := range rows[0] {
		switch strings.TrimSpace(h) {
		case nameHeader:
			nameCol = i
		case categoryKeyHeader:
			catCol = i
		}
	}
	if nameCol < 0 || catCol < 0 {
		return 0, fmt.Errorf("%s: %w: нужны колонки %q и %q", op, ErrBadWorkbook, nameHeader, categoryKeyHeader)
	}

	var items []Component
	for _, row := range rows[1:] {
		if nameCol >= len(row) || catCol >= len(row) {
			continue
		}
		name, cat := strings.TrimSpace(row[nameCol]), strings.TrimSpace(row[catCol])
		if name == "" || cat == "" {
			continue
		}
		items = append(items, Component{Name: name, Category: model.Category(cat)})
	}

	source, err := filepath.Abs(path)
	if err != nil {
		source = path
	}
	written, err := db.AddBatch(ctx, items, ActionImportFromExcel, source, replace)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	db.log.Info("✓ База компонентов импортирована", logger.String("path", path), logger.Int("components", written))
	return written, nil
}
