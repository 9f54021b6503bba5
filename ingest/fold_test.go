package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fold(rows ...Row) GroupState {
	var st GroupState
	for _, r := range rows {
		FoldRow(&st, r)
	}
	return st
}

func TestFoldRowGroupHeader(t *testing.T) {
	st := fold(
		Row{Name: "Резисторы Р1-12 ШКАБ.434110.018 ТУ"},
		Row{Reference: "R1", Name: "Р1-12-0,125-10 кОм ±5%", Qty: "1"},
		Row{Reference: "C1", Name: "К10-17в 100 нФ", Qty: "2"},
	)

	assert.Equal(t, "ШКАБ.434110.018 ТУ", st.TU)
	assert.Equal(t, "Резисторы", st.Type)

	require.Len(t, st.Records, 2)
	assert.Equal(t, "ШКАБ.434110.018 ТУ", st.Records[0].Note)
	assert.Equal(t, "Резисторы", st.Records[0].GroupType)

	assert.Equal(t, "", st.Records[1].Note, "ТУ резисторов не переносится на конденсатор")
	assert.Equal(t, "", st.Records[1].GroupType)
}

func TestFoldRowPrefixTU(t *testing.T) {
	st := fold(
		Row{Name: "Конденсаторы К10-17в ОЖ0.460.107ТУ"},
		Row{Name: "Конденсаторы К53-65 АДПК.673546.004ТУ"},
		Row{Reference: "C1", Name: "К10-17в-Н90-0,1 мкФ", Qty: "1"},
		Row{Reference: "C2", Name: "К53-65-16 В-47 мкФ", Qty: "1"},
	)

	require.Len(t, st.Records, 2)
	assert.Equal(t, "ОЖ0.460.107ТУ", st.Records[0].Note)
	assert.Equal(t, "АДПК.673546.004ТУ", st.Records[1].Note)
}

func TestFoldRowContinuations(t *testing.T) {
	t.Run("Наименование на двух строках", func(t *testing.T) {
		st := fold(
			Row{Reference: "L1", Name: "Дроссель высокочастотный ДМ-3-10 ±5%-В"},
			Row{Name: "«Н» ЦКСН.671342.001ТУ", Qty: "1"},
		)

		require.Len(t, st.Records, 1)
		assert.Equal(t, "Дроссель высокочастотный ДМ-3-10 ±5%-В «Н» ЦКСН.671342.001ТУ", st.Records[0].Description)
		assert.Equal(t, 1, st.Records[0].Quantity)
		assert.True(t, st.Records[0].HasExplicitQty)
	})

	t.Run("Продолжение примечания", func(t *testing.T) {
		st := fold(
			Row{Reference: "R48*", Name: "Р1-12-0,1-536 Ом ±2%-Т", Qty: "1", Note: "1 кОм;"},
			Row{Note: "1,87 кОм"},
		)

		require.Len(t, st.Records, 1)
		assert.Equal(t, "1 кОм; 1,87 кОм", st.Records[0].OriginalNote)
	})

	t.Run("Строка производителя", func(t *testing.T) {
		st := fold(
			Row{Reference: "A1", Name: "Аттенюатор PAT-3+", Qty: "1"},
			Row{Name: "ф. Mini-Circuits"},
		)

		require.Len(t, st.Records, 1)
		assert.Equal(t, "Mini-Circuits", st.Records[0].Note)
	})
}

func TestFoldRowRecords(t *testing.T) {
	t.Run("Производитель в наименовании", func(t *testing.T) {
		st := fold(Row{Reference: "A2", Name: "PAT-0+ ф. Mini-Circuits", Qty: "2"})

		require.Len(t, st.Records, 1)
		assert.Equal(t, "PAT-0+", st.Records[0].Description)
		assert.Equal(t, "Mini-Circuits", st.Records[0].Note)
		assert.Equal(t, 2, st.Records[0].Quantity)
	})

	t.Run("Количество из диапазона обозначений", func(t *testing.T) {
		st := fold(Row{Reference: "FU1-FU6", Name: "Вставка плавкая ВП1-1 2 А"})

		require.Len(t, st.Records, 1)
		assert.Equal(t, 6, st.Records[0].Quantity)
		assert.False(t, st.Records[0].HasExplicitQty)
	})

	t.Run("Служебные строки штампа", func(t *testing.T) {
		st := fold(
			Row{Name: "Лист регистрации изменений"},
			Row{Name: "Подп. и дата"},
			Row{},
		)

		assert.Empty(t, st.Records)
	})

	t.Run("Служебное примечание заменяется ТУ группы", func(t *testing.T) {
		st := fold(
			Row{Name: "Микросхемы АЕЯР.431320.420ТУ"},
			Row{Reference: "DD1", Name: "1594ТЛ2Т", Qty: "1", Note: "Допускается отсутствие"},
		)

		require.Len(t, st.Records, 1)
		assert.Equal(t, "АЕЯР.431320.420ТУ", st.Records[0].Note)
		assert.Equal(t, "Допускается отсутствие", st.Records[0].OriginalNote)
	})
}
