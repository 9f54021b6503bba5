package classification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bomsplit/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		input    Input
		expected model.Category
	}{
		// Позиционные обозначения
		{"Резистор по R", Input{Reference: "R1", Description: "Резистор 100 Ом ± 5% - М"}, model.CategoryResistors},
		{"Конденсатор по C", Input{Reference: "C2", Description: "К10-17Б 0,1 мкФ"}, model.CategoryCapacitors},
		{"Отечественная микросхема по DD", Input{Reference: "DD1", Description: "1594ТЛ2Т"}, model.CategoryICs},
		{"Импортная микросхема по U", Input{Reference: "U1", Description: "HMC435AMS8GE"}, model.CategoryICs},
		{"Диод по VD", Input{Reference: "VD1", Description: "Диод 1N4148"}, model.CategorySemiconductors},
		{"Транзистор по VT", Input{Reference: "VT1", Description: "Транзистор 2N2222"}, model.CategorySemiconductors},
		{"Розетка по J", Input{Reference: "J1", Description: "Розетка USB Type-C"}, model.CategoryConnectors},
		{"Дроссель по L", Input{Reference: "L1", Description: "Дроссель 10 мкГн"}, model.CategoryInductors},
		{"Кириллическая С", Input{Reference: "С1", Description: "XYZ"}, model.CategoryCapacitors},
		{"Обозначение важнее слов", Input{Reference: "R1", Description: "Диод КД522"}, model.CategoryResistors},
		{"Микросхема при VT", Input{Reference: "VT1", Description: "микросхема xyz"}, model.CategoryICs},
		{"Одиночная A", Input{Reference: "A1", Description: "Модуль"}, model.CategoryDevBoards},
		{"Оптический аттенюатор с длинным A", Input{Reference: "ATT1", Description: "Аттенюатор FC/APC 5 дБ"}, model.CategoryOptics},
		{"Переключатель по S", Input{Reference: "SA1", Description: "Тумблер МТ-1"}, model.CategoryOthers},
		{"W без СВЧ слов уходит дальше", Input{Reference: "W1", Description: "Кабель RG-58"}, model.CategoryCables},

		// Контекстные переопределения
		{"Маркер собственной разработки", Input{Reference: "A2", Description: "Плата АМФИ.468351.001"}, model.CategoryOurDevelopments},
		{"Явный тип важнее маркера", Input{Reference: "", Description: "Резистор АМФИ.123 10 кОм"}, model.CategoryResistors},
		{"Адаптер", Input{Description: "Адаптер SMA-N"}, model.CategoryConnectors},
		{"Оптический адаптер", Input{Description: "Адаптер оптический FC/APC"}, model.CategoryOptics},
		{"Делитель Qualwave", Input{Description: "Делитель мощности Qualwave"}, model.CategoryRFModules},
		{"Аттенюатор QFA", Input{Description: "Аттенюатор QFA-0205 ф.Qualwave"}, model.CategoryOthers},
		{"QFA вместе с QPD", Input{Description: "Аттенюатор QFA-0205 QPD"}, model.CategoryRFModules},
		{"Rittal", Input{Description: "Шкаф Rittal TS8"}, model.CategoryOthers},
		{"Согласованная нагрузка", Input{Description: "Нагрузка согласованная 50 Ом"}, model.CategoryRFModules},
		{"Вентиль СВЧ", Input{Description: "Вентиль СВЧ ФВК3-12"}, model.CategoryInductors},
		{"Плата производителя", Input{Description: "Плата инструментальная Hittite 117212"}, model.CategoryDevBoards},
		{"Оптический модуль", Input{Description: "Модуль оптический 10G"}, model.CategoryOptics},

		// Номиналы и словари
		{"Резистор по номиналу", Input{Description: "P1-12-0,1-100 Ом 5%-Т"}, model.CategoryResistors},
		{"Конденсатор по номиналу", Input{Description: "GRM188 100 нФ"}, model.CategoryCapacitors},
		{"Индуктивность по номиналу", Input{Description: "LQW18 100 нГн"}, model.CategoryInductors},
		{"Предохранитель", Input{Description: "Предохранитель 1A"}, model.CategoryOthers},
		{"Оптопара", Input{Description: "Оптопара PC817"}, model.CategorySemiconductors},
		{"Контроллер", Input{Description: "Контроллер STM32F407"}, model.CategoryICs},
		{"Разъем", Input{Description: "Разъем SMA-female"}, model.CategoryConnectors},
		{"Отладочная плата", Input{Description: "NUCLEO-F401RE"}, model.CategoryDevBoards},
		{"Лазер", Input{Description: "Лазер DFB 1550"}, model.CategoryOptics},
		{"СВЧ усилитель", Input{Description: "Усилитель ZX60-V63+"}, model.CategoryRFModules},
		{"Кабель", Input{Description: "Кабель RG-58"}, model.CategoryCables},
		{"Провод", Input{Description: "Провод МГТФ 0.5"}, model.CategoryCables},
		{"DC-DC", Input{Description: "Преобразователь DC-DC 5V -> 3.3V"}, model.CategoryPowerModules},
		{"Модуль МДМ", Input{Description: "МДМ10-1В05МУП"}, model.CategoryPowerModules},
		{"Крепеж", Input{Description: "Болт М3х10"}, model.CategoryOthers},
		{"Не распознано", Input{Description: "Непонятный компонент XYZ123"}, model.CategoryUnclassified},
		{"Пустая запись", Input{}, model.CategoryUnclassified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.input))
		})
	}
}

func TestClassifySelfReference(t *testing.T) {
	got, rule := Explain(Input{Description: "SK-117", SourceFile: "docs/SK-117.xlsx"})
	assert.Equal(t, model.CategoryOurDevelopments, got)
	assert.Equal(t, "self_reference", rule)

	got = Classify(Input{Description: "Резистор SK-117", SourceFile: "SK-117.xlsx"})
	assert.Equal(t, model.CategoryResistors, got)

	got = Classify(Input{Description: "SK-117", SourceFile: "SK-117.xlsx (п/б R48*)"})
	assert.Equal(t, model.CategoryOurDevelopments, got)
}

func TestClassifyGroupType(t *testing.T) {
	t.Run("Подсказка без обозначения", func(t *testing.T) {
		got, rule := Explain(Input{Description: "XYZ-0805", GroupType: "Резисторы"})
		assert.Equal(t, model.CategoryResistors, got)
		assert.Equal(t, "group_type", rule)
	})

	t.Run("Противоречащая подсказка отбрасывается", func(t *testing.T) {
		assert.Equal(t, model.CategoryUnclassified, Classify(Input{Reference: "Z1", Description: "XYZ", GroupType: "Резисторы"}))
	})

	t.Run("Обозначение важнее подсказки", func(t *testing.T) {
		assert.Equal(t, model.CategoryCapacitors, Classify(Input{Reference: "C5", Description: "XYZ", GroupType: "Резисторы"}))
	})
}

func TestClassifyStrict(t *testing.T) {
	tests := []struct {
		name   string
		input  Input
		loose  model.Category
		strict model.Category
	}{
		{"Обрывок eval", Input{Description: "Модуль eval XYZ"}, model.CategoryDevBoards, model.CategoryUnclassified},
		{"Общий крепеж", Input{Description: "Болт М3х10"}, model.CategoryOthers, model.CategoryUnclassified},
		{"Явный номинал не зависит от режима", Input{Description: "GRM188 100 нФ"}, model.CategoryCapacitors, model.CategoryCapacitors},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.loose, Classify(tt.input))
			strict := tt.input
			strict.Strict = true
			assert.Equal(t, tt.strict, Classify(strict))
		})
	}
}

func TestClassifyAllKeepsCategory(t *testing.T) {
	records := []model.ComponentRecord{
		{Reference: "R1", Description: "Резистор 10 кОм", Category: model.CategoryOthers},
		{Reference: "R2", Description: "Резистор 10 кОм"},
		{Reference: "C1", Description: "Конденсатор", Category: "  "},
	}

	n := ClassifyAll(records, false)

	assert.Equal(t, 2, n)
	assert.Equal(t, model.CategoryOthers, records[0].Category)
	assert.Equal(t, model.CategoryResistors, records[1].Category)
	assert.Equal(t, model.CategoryCapacitors, records[2].Category)

	// Повторный прогон ничего не меняет
	assert.Equal(t, 0, ClassifyAll(records, false))
}

func TestReferencePrefix(t *testing.T) {
	assert.Equal(t, "R", referencePrefix("R1, R2"))
	assert.Equal(t, "FU", referencePrefix("FU1-FU6"))
	assert.Equal(t, "BT", referencePrefix("ВТ3"))
	assert.Equal(t, "", referencePrefix(""))
}
