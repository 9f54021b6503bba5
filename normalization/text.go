package normalization

import "strings"

// dashReplacer приводит все варианты тире к обычному дефису
var dashReplacer = strings.NewReplacer(
	"\u2010", "-", // hyphen
	"\u2011", "-", // non-breaking hyphen
	"\u2012", "-", // figure dash
	"\u2013", "-", // en dash
	"\u2014", "-", // em dash
	"\u2015", "-", // horizontal bar
	"\u2212", "-", // minus sign
	"\u00ad", "-", // soft hyphen
	"\ufe58", "-",
	"\ufe63", "-",
	"\uff0d", "-",
)

// NormalizeDashes заменяет типографские тире на дефис.
// Форматы документов по-разному подставляют тире, и без этого одинаковые позиции не склеиваются.
func NormalizeDashes(text string) string {
	return dashReplacer.Replace(text)
}

// CollapseSpaces схлопывает пробельные последовательности в один пробел
func CollapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// HasAny проверяет наличие хотя бы одного ключевого слова (без учета регистра)
func HasAny(text string, keywords []string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
