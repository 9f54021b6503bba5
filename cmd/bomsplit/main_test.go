package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bomsplit/config"
)

func testApp(t *testing.T) (*application, *bytes.Buffer) {
	t.Helper()
	a := &application{
		cfg: &config.Config{
			Logger:   config.Logger{Level: "error"},
			Database: config.Database{Path: filepath.Join(t.TempDir(), "components.db"), Enabled: true},
			Split:    config.Split{RulesPath: filepath.Join(t.TempDir(), "rules.json")},
		},
		log: zap.NewNop(),
	}
	return a, &bytes.Buffer{}
}

func run(t *testing.T, a *application, out *bytes.Buffer, args ...string) error {
	t.Helper()
	app := a.cli()
	app.Writer = out
	return app.RunContext(context.Background(), append([]string{"bomsplit"}, args...))
}

func TestSheetList(t *testing.T) {
	assert.Equal(t, []string{"1", "2"}, sheetList("1, 2", ""))
	assert.Equal(t, []string{"1", "Резисторы"}, sheetList("1,,", "Резисторы"))
	assert.Empty(t, sheetList("", ""))
}

func TestDBCommands(t *testing.T) {
	a, out := testApp(t)

	require.NoError(t, run(t, a, out, "db", "add", "LM317", "ics"))
	require.NoError(t, run(t, a, out, "db", "stats"))
	assert.Contains(t, out.String(), "Версия: 0.1")
	assert.Contains(t, out.String(), "Всего компонентов: 1")

	out.Reset()
	require.NoError(t, run(t, a, out, "db", "history"))
	assert.Contains(t, out.String(), "manual_add")

	export := filepath.Join(t.TempDir(), "db.xlsx")
	require.NoError(t, run(t, a, out, "db", "export", export))

	out.Reset()
	require.NoError(t, run(t, a, out, "db", "import", export))
	assert.Contains(t, out.String(), "Импортировано компонентов: 0")

	assert.Error(t, run(t, a, out, "db", "add", "LM317", "nonsense"))
	assert.Error(t, run(t, a, out, "db", "add", "LM317"))
}

func TestSplitRequiresInputs(t *testing.T) {
	a, out := testApp(t)
	assert.Error(t, run(t, a, out, "split", "--xlsx", "out.xlsx"))
	assert.Error(t, run(t, a, out, "split", "bom.xlsx"))
}

func TestCompareRequiresTwoFiles(t *testing.T) {
	a, out := testApp(t)
	assert.Error(t, run(t, a, out, "compare", "one.xlsx"))
}
