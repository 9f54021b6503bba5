package model

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ComponentRecord одна строка BOM на входе и на выходе
type ComponentRecord struct {
	Reference    string   `json:"reference"`     // Позиционное обозначение (R1, C3, C4, FU1-FU6)
	Description  string   `json:"description"`   // Наименование, основной признак классификации
	Value        string   `json:"value"`         // Номинал (может дублировать описание)
	PartNumber   string   `json:"part_number"`   // Артикул производителя
	Note         string   `json:"note"`          // Примечание: ТУ и/или производитель
	GroupType    string   `json:"group_type"`    // Тип из заголовка группы документа
	Quantity     int      `json:"quantity"`      // Количество
	SourceFile   string   `json:"source_file"`   // Исходный файл (может содержать пометки подборов)
	SourceSheet  string   `json:"source_sheet"`  // Исходный лист
	Category     Category `json:"category"`      // Назначенная категория
	TU           string   `json:"tu"`            // Извлеченный ТУ-код или производитель
	MRCode       string   `json:"mr_code"`       // Код МР
	OriginalNote string   `json:"original_note"` // Исходное примечание (подборы/замены)
	Zone         string   `json:"zone"`
	RowNumber    int      `json:"row_number"` // № п/п в исходном листе

	// HasExplicitQty количество было указано явно, а не выведено из обозначения
	HasExplicitQty bool `json:"-"`
}

// HasCategory у записи уже есть непустая категория
func (r ComponentRecord) HasCategory() bool {
	return !r.Category.IsEmpty()
}

// TextBlob описание, номинал, артикул и примечание одной строкой
func (r ComponentRecord) TextBlob() string {
	return strings.Join([]string{r.Description, r.Value, r.PartNumber, r.Note}, " ")
}

// String краткое представление для логов
func (r ComponentRecord) String() string {
	return fmt.Sprintf("%s | %s | %d | %s", r.Reference, r.Description, r.Quantity, r.Category)
}

var firstIntRe = regexp.MustCompile(`\d+`)

// Text приводит произвольное значение ячейки к обрезанной строке.
// nil и NaN становятся пустой строкой.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return ""
		}
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return Text(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case fmt.Stringer:
		return strings.TrimSpace(x.String())
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// ParseQuantity разбирает количество из ячейки.
// Возвращает ok=false для пустой ячейки или ячейки без числа.
func ParseQuantity(raw string) (int, bool) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, " ", " "))
	if raw == "" {
		return 0, false
	}
	normalized := strings.Replace(raw, ",", ".", 1)
	if f, err := strconv.ParseFloat(normalized, 64); err == nil {
		if math.IsNaN(f) || f < 0 || f > math.MaxInt32 {
			return 0, false
		}
		return int(f), true
	}
	m := firstIntRe.FindString(raw)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil || n > math.MaxInt32 {
		return 0, false
	}
	return n, true
}
