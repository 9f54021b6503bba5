package ingest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bomsplit/model"
)

func writeWorkbook(t *testing.T, sheets map[string][][]any, order []string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cellRef, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cellRef, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "bom.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadXLSX(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"Спецификация": {
			{"", "", "Перечень"},
			{"№ п/п", "Наименование", "Количество"},
			{"", "Резистор Р1-12-0,125-10 кОм", 4},
			{7, "Микросхема 1594ТЛ2Т", 1},
		},
		"Резисторы": {
			{"Наименование", "шт."},
			{"Р1-12-0,125-1 кОм", 2},
		},
		"SUMMARY": {
			{"Категория", "Количество"},
			{"Резисторы", 6},
		},
	}, []string{"Спецификация", "Резисторы", "SUMMARY"})

	t.Run("Все листы кроме служебных", func(t *testing.T) {
		got, err := ReadXLSX(path, nil, nil)
		require.NoError(t, err)
		require.Len(t, got, 3)

		assert.Equal(t, "Резистор Р1-12-0,125-10 кОм", got[0].Description)
		assert.Equal(t, 4, got[0].Quantity)
		assert.Equal(t, 3, got[0].RowNumber, "заголовок во второй строке")
		assert.Equal(t, 7, got[1].RowNumber)
		assert.Equal(t, "bom.xlsx", got[0].SourceFile)
		assert.Equal(t, "Спецификация", got[0].SourceSheet)
		assert.True(t, got[0].Category.IsEmpty())

		assert.Equal(t, model.CategoryResistors, got[2].Category, "категория из имени листа")
		assert.Equal(t, 2, got[2].Quantity)
	})

	t.Run("Лист по номеру", func(t *testing.T) {
		got, err := ReadXLSX(path, []string{"2"}, nil)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Резисторы", got[0].SourceSheet)
	})

	t.Run("Несуществующий лист", func(t *testing.T) {
		_, err := ReadXLSX(path, []string{"Нет такого"}, nil)
		assert.Error(t, err)
	})
}

func TestTableFromRows(t *testing.T) {
	t.Run("Обычный заголовок", func(t *testing.T) {
		tbl := tableFromRows([][]string{{"Description", "Qty"}, {"LM317", "1"}})
		assert.Equal(t, []string{"Description", "Qty"}, tbl.Header)
		assert.Equal(t, 2, tbl.FirstRow)
	})

	t.Run("Пустая первая строка без заголовка ниже", func(t *testing.T) {
		tbl := tableFromRows([][]string{{"", "", "Титул"}, {"LM317", "1", ""}})
		assert.Equal(t, []string{"", "", "Титул"}, tbl.Header)
		assert.Len(t, tbl.Rows, 1)
	})
}
