package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTUCode(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		expectedText string
		expectedCode string
	}{
		{
			name:         "Буквенный код с точками",
			input:        "Микросхема 1594ТЛ2Т АЕЯР.431320.420ТУ",
			expectedText: "Микросхема 1594ТЛ2Т",
			expectedCode: "АЕЯР.431320.420ТУ",
		},
		{
			name:         "Код с цифрой после букв",
			input:        "К10-17в ОЖ0.460.172ТУ",
			expectedText: "К10-17в",
			expectedCode: "ОЖ0.460.172ТУ",
		},
		{
			name:         "Код без точек с дефисом",
			input:        "2Т630А АЕЯР431200424-07ТУ",
			expectedText: "2Т630А",
			expectedCode: "АЕЯР431200424-07ТУ",
		},
		{
			name:         "Суффикс после слэша",
			input:        "Р1-12 ШКАБ.434110.002ТУ/02",
			expectedText: "Р1-12",
			expectedCode: "ШКАБ.434110.002ТУ/02",
		},
		{
			name:         "ТУ с цифрами",
			input:        "Провод МГТФ 0,12 ТУ 16-505.185-71",
			expectedText: "Провод МГТФ 0,12",
			expectedCode: "ТУ 16-505.185-71",
		},
		{
			name:         "Слово с ту внутри не код",
			input:        "Линия ВЧ-3 туннельная",
			expectedText: "Линия ВЧ-3 туннельная",
			expectedCode: "",
		},
		{
			name:         "Строчные буквы не код ТУ",
			input:        "Плата сту.123ту",
			expectedText: "Плата сту.123ту",
			expectedCode: "",
		},
		{
			name:         "Плата по префиксу",
			input:        "NUCLEO-F401RE",
			expectedText: "NUCLEO-F401RE",
			expectedCode: "STMicroelectronics",
		},
		{
			name:         "Маркер ф.",
			input:        "AD9221AR, ф. Analog Devices",
			expectedText: "AD9221AR",
			expectedCode: "Analog Devices",
		},
		{
			name:         "Маркер ф. с сокращением",
			input:        "LM317 ф.TI",
			expectedText: "LM317",
			expectedCode: "Texas Instruments",
		},
		{
			name:         "Плата по префиксу раньше производителя",
			input:        "Analog Device EVAL-ADF4351EB1Z",
			expectedText: "Analog Device EVAL-ADF4351EB1Z",
			expectedCode: "Analog Devices",
		},
		{
			name:         "Производитель в начале",
			input:        "Murata GRM188R71H104",
			expectedText: "GRM188R71H104",
			expectedCode: "Murata",
		},
		{
			name:         "Сокращение целым словом",
			input:        "Усилитель ADI HMC441",
			expectedText: "Усилитель HMC441",
			expectedCode: "Analog Devices",
		},
		{
			name:         "Сокращение внутри слова не производитель",
			input:        "TIP120",
			expectedText: "TIP120",
			expectedCode: "",
		},
		{
			name:         "Без кода",
			input:        "Разъем SMA-J",
			expectedText: "Разъем SMA-J",
			expectedCode: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, code := ExtractTUCode(tt.input)
			assert.Equal(t, tt.expectedText, text)
			assert.Equal(t, tt.expectedCode, code)
		})
	}
}
