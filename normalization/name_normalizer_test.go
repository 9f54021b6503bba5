package normalization

import (
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
)

func TestCleanComponentName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Префикс резистора",
			input:    "РЕЗИСТОР Р1-12-0,125-10 кОм",
			expected: "Р1-12-0,125-10 кОм",
		},
		{
			name:     "Префикс в смешанном регистре",
			input:    "Конденсатор 100нф",
			expected: "100 нФ",
		},
		{
			name:     "Длинный префикс раньше короткого",
			input:    "ЧИП КОНДЕНСАТОР КЕРАМИЧЕСКИЙ 0603 10 пФ",
			expected: "Чип конденсатор керамический 0603 10 пФ",
		},
		{
			name:     "Набор резисторов сохраняется",
			input:    "НАБОР РЕЗИСТОРОВ НР1-4-8",
			expected: "Набор резисторов НР1-4-8",
		},
		{
			name:     "Дроссель с прилагательным сохраняется",
			input:    "ДРОССЕЛЬ высокочастотный ДМ-0,1-20",
			expected: "Дроссель высокочастотный ДМ-0,1-20",
		},
		{
			name:     "Дроссель без прилагательного снимается",
			input:    "ДРОССЕЛЬ ДМ-0,1-20 мкГн",
			expected: "ДМ-0,1-20 мкГн",
		},
		{
			name:     "Вилка Harting не трогается",
			input:    "Вилка Harting 09 67 009 5615",
			expected: "Вилка Harting 09 67 009 5615",
		},
		{
			name:     "Вилка общего вида снимается",
			input:    "Вилка СНП339-32ВП11-1-В",
			expected: "СНП339-32ВП11-1-В",
		},
		{
			name:     "Префикс только целым словом",
			input:    "Диодный мост КЦ405",
			expected: "Диодный мост КЦ405",
		},
		{
			name:     "Артикул удаляется",
			input:    "Analog Device, артикул EVAL-ADF4351EB1Z",
			expected: "Analog Device EVAL-ADF4351EB1Z",
		},
		{
			name:     "Единицы и пробелы",
			input:    "Резистор   10КОМ",
			expected: "10 кОм",
		},
		{
			name:     "Группа точности",
			input:    "300 Ом  5Т  « A »",
			expected: "300 Ом ±5% - Т - « A »",
		},
		{
			name:     "Процент без знака",
			input:    "Резистор С2-29В-0,125-10 кОм 0,1%-А",
			expected: "С2-29В-0,125-10 кОм ±0,1% - А",
		},
		{
			name:     "Допуск перед группой ТКС",
			input:    "Резистор С2-29В-0,125-1 кОм ±0,5%-1,0-А",
			expected: "С2-29В-0,125-1 кОм ±0,5%-1,0-А",
		},
		{
			name:     "Допуск перед ТКС и приемкой",
			input:    "Резистор С2-29В-0,125-49,9 Ом ±1%-1,0-Б-М",
			expected: "С2-29В-0,125-49,9 Ом ±1%-1,0-Б-М",
		},
		{
			name:     "Сдвоенное тире перед группой точности",
			input:    "300 Ом 5%--Т",
			expected: "300 Ом ±5% - Т",
		},
		{
			name:     "Неразрывный пробел перед единицей",
			input:    "Резистор 10\u00a0ком",
			expected: "10 кОм",
		},
		{
			name:     "Несколько запятых перед производителем",
			input:    "PAT-0+,, ф.Mini-Circuits",
			expected: "PAT-0+ ф.Mini-Circuits",
		},
		{
			name:     "Напряжение не считается допуском",
			input:    "Конденсатор 100 пФ 50 В",
			expected: "100 пФ 50 В",
		},
		{
			name:     "Маркер производителя",
			input:    "Аттенюатор QFA-0205, ф.Qualwave",
			expected: "Аттенюатор QFA-0205 ф.Qualwave",
		},
		{
			name:     "Символ доллара",
			input:    "$$Микросхема AD8307AR$",
			expected: "AD8307AR",
		},
		{
			name:     "Длинное тире",
			input:    "Микросхема 5576ХС4Т — ВП",
			expected: "5576ХС4Т - ВП",
		},
		{
			name:     "Пустая строка",
			input:    "   ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanComponentName(tt.input, ""))
		})
	}
}

func TestCleanComponentNameIdempotent(t *testing.T) {
	inputs := []string{
		"ЧИП КАТУШКА ИНДУКТИВНОСТЬ 0805 10 мкГн",
		"Резистор Резистор 1 кОм",
		"$Резистор 10ом",
		"ИНДУКТИВНОСТЬ силовая 100мкгн",
		"300 Ом 5Т « A »",
		"Кабель , ф. Rosenberger",
		"артикул Резистор 1 кОм",
		"PAT-0+,, ф.Mini-Circuits",
		"300 Ом 5%--Т",
		"300 Ом 5% - -Т",
		"Резистор С2-29В-0,125-1 кОм ±0,5%-1,0-А",
	}

	_ = gofakeit.Seed(42)
	for range 200 {
		inputs = append(inputs,
			gofakeit.Sentence(6),
			fmt.Sprintf("Резистор %d%s %d%%", gofakeit.Number(1, 99), gofakeit.RandomString([]string{"ком", "ом", "пф", "мкгн"}), gofakeit.Number(1, 10)),
			fmt.Sprintf("%s%s — %d", gofakeit.RandomString([]string{"Конденсатор ", "Дроссель ", "Набор микросхем ", "Вилка "}), gofakeit.Word(), gofakeit.Number(100, 999)),
			fmt.Sprintf("С2-29В-0,125-%d %s%s%d%%%s%s",
				gofakeit.Number(1, 999),
				gofakeit.RandomString([]string{"Ом", "кОм", "МОм"}),
				gofakeit.RandomString([]string{" ", " ±", " ± "}),
				gofakeit.Number(1, 10),
				gofakeit.RandomString([]string{"", "-", "--", " - ", "-1,0-", "Т", "-Б-М", " « A »"}),
				gofakeit.RandomString([]string{"", "А", "Б", "1,0"})),
			fmt.Sprintf("%s%s ф.%s",
				gofakeit.LetterN(5),
				gofakeit.RandomString([]string{",", ",,", ", ,", " ,", ""}),
				gofakeit.Company()),
		)
	}

	for _, in := range inputs {
		once := CleanComponentName(in, "")
		assert.Equal(t, once, CleanComponentName(once, ""), "вход: %q", in)
	}
}

func TestNormalizeDashes(t *testing.T) {
	assert.Equal(t, "ОСМ 94-1-1 - A", NormalizeDashes("ОСМ 94‑1–1 — A"))
	assert.Equal(t, "-5", NormalizeDashes("−5"))
}

func TestHasAny(t *testing.T) {
	assert.True(t, HasAny("Микросхема XYZ", []string{"микросхем"}))
	assert.False(t, HasAny("", []string{"микросхем"}))
	assert.False(t, HasAny("Резистор", []string{"конденс"}))
}
