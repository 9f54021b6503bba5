package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bomsplit/model"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	_, err := db.Add(ctx, "Р1-12-0,125-10 кОм", model.CategoryResistors, "")
	require.NoError(t, err)
	_, err = db.Add(ctx, "1594ТЛ2Т", model.CategoryICs, "")
	require.NoError(t, err)

	tests := []struct {
		name     string
		query    string
		expected model.Category
		found    bool
	}{
		{"Точное совпадение", "1594ТЛ2Т", model.CategoryICs, true},
		{"Регистр", "1594тл2т", model.CategoryICs, true},
		{"Пробелы", "Р1-12-0,125-10кОм", model.CategoryResistors, true},
		{"Пробелы и дефисы", "р1 12 0,125 10 ком", model.CategoryResistors, true},
		{"Пробелы по краям", "  1594ТЛ2Т ", model.CategoryICs, true},
		{"Не найдено", "К10-17в", "", false},
		{"Пустое наименование", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := db.Lookup(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestAdd(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	changed, err := db.Add(ctx, "Корпус G104", model.CategoryOthers, "")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = db.Add(ctx, "Корпус G104", model.CategoryOthers, "")
	require.NoError(t, err)
	assert.False(t, changed, "повторное добавление ничего не меняет")

	changed, err = db.Add(ctx, "Корпус G104", "Разъемы", "")
	require.NoError(t, err)
	assert.True(t, changed)

	cat, _, err := db.Lookup(ctx, "Корпус G104")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryConnectors, cat)

	_, err = db.Add(ctx, "Корпус", "nonsense", "")
	assert.ErrorIs(t, err, ErrUnknownCategory)
	_, err = db.Add(ctx, "  ", model.CategoryOthers, "")
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	_, err := db.Add(ctx, "Корпус G104", model.CategoryOthers, "")
	require.NoError(t, err)

	records := []model.ComponentRecord{
		{Description: "корпус g104", Category: model.CategoryUnclassified},
		{Description: "Шильдик", Category: model.CategoryUnclassified},
		{Description: "Корпус G104", Category: model.CategoryICs},
	}

	found, err := db.Classify(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 1, found)
	assert.Equal(t, model.CategoryOthers, records[0].Category)
	assert.Equal(t, model.CategoryUnclassified, records[1].Category)
	assert.Equal(t, model.CategoryICs, records[2].Category)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	st, err := db.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, InitialVersion, st.Version)
	assert.Zero(t, st.Total)
	assert.NotEmpty(t, st.Created)

	_, err = db.AddBatch(ctx, []Component{
		{Name: "LM317", Category: model.CategoryICs},
		{Name: "AD9221AR", Category: model.CategoryICs},
		{Name: "BNC-75", Category: model.CategoryConnectors},
	}, ActionImportFromFile, "bom.xlsx", false)
	require.NoError(t, err)

	st, err = db.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 2, st.ByCategory[model.CategoryICs])
	assert.Len(t, st.CurrentHash, 16)
}

func TestExcelRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestDB(t)

	_, err := src.AddBatch(ctx, []Component{
		{Name: "LM317", Category: model.CategoryICs},
		{Name: "Корпус G104", Category: model.CategoryOthers},
	}, ActionImportFromFile, "bom.xlsx", false)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "components.xlsx")
	require.NoError(t, src.ExportExcel(ctx, path))

	dst := newTestDB(t)
	_, err = dst.Add(ctx, "Шильдик", model.CategoryOthers, "")
	require.NoError(t, err)

	n, err := dst.ImportExcel(ctx, path, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	items, err := dst.Components(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Component{
		{Name: "LM317", Category: model.CategoryICs},
		{Name: "Корпус G104", Category: model.CategoryOthers},
		{Name: "Шильдик", Category: model.CategoryOthers},
	}, items)

	n, err = dst.ImportExcel(ctx, path, true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	items, err = dst.Components(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2, "replace убирает старые записи")
}

func TestImportExcelBadWorkbook(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	other := newTestDB(t)
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, other.ExportExcel(ctx, path))

	n, err := db.ImportExcel(ctx, path, false)
	require.NoError(t, err, "пустой экспорт читается")
	assert.Zero(t, n)

	f := excelize.NewFile()
	bad := filepath.Join(t.TempDir(), "bad.xlsx")
	require.NoError(t, f.SaveAs(bad))
	require.NoError(t, f.Close())
	_, err = db.ImportExcel(ctx, bad, false)
	assert.ErrorIs(t, err, ErrBadWorkbook)

	_, err = db.ImportExcel(ctx, filepath.Join(t.TempDir(), "missing.xlsx"), false)
	assert.Error(t, err)
}
