package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddPlusMinus(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"После единицы", "Р1-12-0,125-10 кОм 5%", "Р1-12-0,125-10 кОм ± 5%"},
		{"Без пробела", "Конденсатор 10 пФ10%", "Конденсатор 10 пФ ± 10%"},
		{"После числа", "100 5%", "100 ± 5%"},
		{"Дробный процент", "К10-17в 0,1 мкФ 0,5% Н90", "К10-17в 0,1 мкФ ± 0,5% Н90"},
		{"Уже размечено", "Конденсатор 0,1 мкФ ± 10%", "Конденсатор 0,1 мкФ ± 10%"},
		{"Слитно с плюс-минусом", "Резистор 1 кОм ±1%", "Резистор 1 кОм ±1%"},
		{"Процент не после номинала", "Скидка 10%", "Скидка 10%"},
		{"Без процентов", "Микросхема 1594ТЛ2Т", "Микросхема 1594ТЛ2Т"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddPlusMinus(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, got, AddPlusMinus(got), "повторный вызов ничего не меняет")
		})
	}
}

func TestRemoveDuplicateSuffix(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Повтор группы с допуском", "Р1-12-0,125-27,4 кОм ± 1% - М кОм ± 1% - М", "Р1-12-0,125-27,4 кОм ± 1% - М"},
		{"Повтор единицы", "Конденсатор 1 мкФ мкФ", "Конденсатор 1 мкФ"},
		{"Повтор допуска с другой единицей", "Резистор 10 кОм ± 5% Ом ± 5%", "Резистор 10 кОм ± 5%"},
		{"Разные номиналы", "Резистор 10 кОм 20 кОм", "Резистор 10 кОм 20 кОм"},
		{"Одна группа", "Резистор 10 кОм", "Резистор 10 кОм"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RemoveDuplicateSuffix(tt.input))
		})
	}
}
