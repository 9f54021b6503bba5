package database

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bomsplit/model"
)

func TestNextVersion(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		manual   bool
		expected string
	}{
		{"Первое ручное добавление", "0.0", true, "0.1"},
		{"Первый импорт", "0.0", false, "1.0"},
		{"Ручное добавление", "1.5", true, "1.6"},
		{"Импорт сбрасывает младшую часть", "1.5", false, "2.0"},
		{"Трехзначная версия", "1.0.3", true, "1.1"},
		{"Без точки", "3", false, "4.0"},
		{"Мусор", "Build x", false, "1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NextVersion(tt.current, tt.manual))
		})
	}
}

func TestVersionHistory(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	_, err := db.Add(ctx, "LM317", model.CategoryICs, "")
	require.NoError(t, err)
	_, err = db.AddBatch(ctx, []Component{{Name: "BNC-75", Category: model.CategoryConnectors}}, ActionImportFromExcel, "db.xlsx", false)
	require.NoError(t, err)
	_, err = db.Add(ctx, "LM317", model.CategoryICs, "")
	require.NoError(t, err)

	st, err := db.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.0", st.Version)

	history, err := db.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2, "изменение без новых данных не пишется в историю")

	assert.Equal(t, "1.0", history[0].Version)
	assert.Equal(t, ActionImportFromExcel, history[0].Action)
	assert.Equal(t, "db.xlsx", history[0].Source)
	assert.Equal(t, []string{"BNC-75"}, history[0].ComponentNames)
	assert.Equal(t, history[1].CurrentHash, history[0].PreviousHash, "хэши образуют цепочку")
	assert.NotEmpty(t, history[0].ID)
	assert.False(t, history[0].CreatedAt.IsZero())

	assert.Equal(t, "0.1", history[1].Version)
	assert.Equal(t, ActionManualAdd, history[1].Action)
	assert.Equal(t, "", history[1].PreviousHash)
}

func TestHistoryLimit(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	for i := range historyLimit + 5 {
		_, err := db.Add(ctx, fmt.Sprintf("Компонент %d", i), model.CategoryOthers, "")
		require.NoError(t, err)
	}

	history, err := db.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, historyLimit)
	assert.Equal(t, fmt.Sprintf("0.%d", historyLimit+5), history[0].Version)
}

func TestHistoryNamesTruncated(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	items := make([]Component, historyNames+3)
	for i := range items {
		items[i] = Component{Name: fmt.Sprintf("R%d", i), Category: model.CategoryResistors}
	}
	n, err := db.AddBatch(ctx, items, ActionImportFromFile, "bom.xlsx", false)
	require.NoError(t, err)
	assert.Equal(t, len(items), n)

	history, err := db.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Len(t, history[0].ComponentNames, historyNames+1)
	assert.Equal(t, "... и еще 3", history[0].ComponentNames[historyNames])
	assert.Equal(t, len(items), history[0].ComponentsAdded)
}
