package normalization

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// tuPattern шаблон кода ТУ.
// codeGroup содержит код, removeGroup вырезается из текста.
type tuPattern struct {
	re          *regexp.Regexp
	codeGroup   int
	removeGroup int
	prefix      string
}

const (
	// Необязательный суффикс "/02", "/Д6"
	tuSuffix = `(?:/[\dА-ЯЁа-яё]+)?`
	// Границы кода: RE2 не считает кириллицу словом для \b
	tuTail = `(?:[^\p{L}\p{N}]|$)`
	tuHead = `(?:^|[^\p{L}\p{N}])`
)

// tuPatterns от более специфичных к менее специфичным
var tuPatterns = []tuPattern{
	// АЛЯР.434110.005ТУ
	{re: regexp.MustCompile(`([А-ЯЁ]{2,}\.\d+[\d.\-]*\s*ТУ` + tuSuffix + `)` + tuTail), codeGroup: 1, removeGroup: 1},
	// И93.456.000ТУ
	{re: regexp.MustCompile(tuHead + `([А-ЯЁ]{1,2}\d+\.\d+[\d.\-]*\s*ТУ` + tuSuffix + `)` + tuTail), codeGroup: 1, removeGroup: 1},
	// 1Х3.438.000ТУ
	{re: regexp.MustCompile(tuHead + `(\d+[А-ЯЁ]+\d+\.\d+[\d.\-]*\s*ТУ` + tuSuffix + `)` + tuTail), codeGroup: 1, removeGroup: 1},
	// ШКАБ434110002ТУ, АЕЯР431200424-07ТУ
	{re: regexp.MustCompile(`([А-ЯЁ]{2,}[\d.\-]+\s*ТУ` + tuSuffix + `)` + tuTail), codeGroup: 1, removeGroup: 1},
	{re: regexp.MustCompile(tuHead + `(\d+[А-ЯЁ]+[\d.\-]+\s*ТУ` + tuSuffix + `)` + tuTail), codeGroup: 1, removeGroup: 1},
	// ТУ 6329-019-07614320-99
	{re: regexp.MustCompile(tuHead + `(ТУ\s+(\d(?:[\d.\-]*\d)?))`), codeGroup: 2, removeGroup: 1, prefix: "ТУ "},
}

// boardPrefixes префиксы отладочных плат и их производители; префикс остается в тексте
var boardPrefixes = []struct {
	prefix       string
	manufacturer string
}{
	{"NUCLEO-", "STMicroelectronics"},
	{"STM32F4DISCOVERY", "STMicroelectronics"},
	{"EVAL-AD", "Analog Devices"},
	{"EV-AD", "Analog Devices"},
	{"LAUNCHXL-", "Texas Instruments"},
	{"ESP32-DEVKIT", "Espressif"},
}

// knownManufacturers полные названия раньше сокращений
var knownManufacturers = []string{
	"Texas Instruments",
	"Maxim Integrated",
	"Analog Devices",
	"Analog Device",
	"Mini-Circuits",
	"Rosenberger",
	"Coilcraft",
	"Murata",
	"Harting",
	"Hittite",
	"TI",
	"ADI",
	"Maxim",
}

// manufacturerAliases сокращение (в верхнем регистре) -> каноническое название
var manufacturerAliases = map[string]string{
	"TI":               "Texas Instruments",
	"ADI":              "Analog Devices",
	"ANALOG DEVICE":    "Analog Devices",
	"MAXIM":            "Maxim Integrated",
	"MAXIM INTEGRATED": "Maxim Integrated",
}

type manufacturerMatcher struct {
	name string
	re   *regexp.Regexp
}

// manufacturerSearch поиск известных производителей в любом месте текста.
// Сокращения до трех символов ищутся только целым словом.
var manufacturerSearch = func() []manufacturerMatcher {
	out := make([]manufacturerMatcher, 0, len(knownManufacturers))
	for _, mfr := range knownManufacturers {
		pattern := `(?i)` + regexp.QuoteMeta(mfr)
		if utf8.RuneCountInString(mfr) <= 3 {
			pattern = `(?i)\b` + regexp.QuoteMeta(mfr) + `\b`
		}
		out = append(out, manufacturerMatcher{name: mfr, re: regexp.MustCompile(pattern)})
	}
	return out
}()

// Производитель после "ф." до конца строки, запятой, точки с запятой, слэша, скобки или токена с цифры
var manufacturerMarkerRegex = regexp.MustCompile(
	`(?i)(?:^|[^\p{L}\p{N}])(ф\s*\.\s*([A-Za-zА-ЯЁа-яё][A-Za-zА-ЯЁа-яё\s\-.&]*?))(?:\s*$|\s*[,;/(]|\s+\d)`,
)

// ExtractTUCode отделяет от текста код ТУ или производителя.
// Если ни то, ни другое не найдено, возвращает исходный текст и пустой код.
func ExtractTUCode(text string) (string, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ""
	}

	// 1. Коды ТУ
	for _, p := range tuPatterns {
		matches := p.re.FindAllStringSubmatchIndex(text, -1)
		if len(matches) == 0 {
			continue
		}
		first := matches[0]
		code := p.prefix + text[first[2*p.codeGroup]:first[2*p.codeGroup+1]]
		return tidy(cutSpans(text, matches, p.removeGroup)), code
	}

	// 2a. Префиксы отладочных плат
	upper := strings.ToUpper(text)
	for _, bp := range boardPrefixes {
		if idx := strings.Index(upper, bp.prefix); idx >= 0 && wordStartsAt(upper, idx) {
			return text, bp.manufacturer
		}
	}

	// 2b. Явный маркер "ф."
	if m := manufacturerMarkerRegex.FindStringSubmatchIndex(text); m != nil {
		name := strings.TrimRight(strings.TrimSpace(text[m[4]:m[5]]), " .-")
		rest := text[:m[2]] + " " + text[m[5]:]
		return tidy(rest), canonicalManufacturer(name)
	}

	// 2c. Производитель в начале строки
	for _, mfr := range knownManufacturers {
		if strings.HasPrefix(upper, strings.ToUpper(mfr)) && wordEndsAt(upper, len(strings.ToUpper(mfr))) {
			return tidy(text[len(mfr):]), canonicalManufacturer(mfr)
		}
	}

	// 2d. Производитель в любом месте
	for _, ms := range manufacturerSearch {
		if ms.re.MatchString(text) {
			return tidy(ms.re.ReplaceAllString(text, "")), canonicalManufacturer(ms.name)
		}
	}

	return text, ""
}

// canonicalManufacturer приводит сокращение к полному названию
func canonicalManufacturer(name string) string {
	if canon, ok := manufacturerAliases[strings.ToUpper(name)]; ok {
		return canon
	}
	return name
}

// cutSpans вырезает группу group из каждого совпадения
func cutSpans(text string, matches [][]int, group int) string {
	var b strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[2*group], m[2*group+1]
		if start < last {
			continue
		}
		b.WriteString(text[last:start])
		b.WriteString(" ")
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}

// tidy схлопывает пробелы и убирает висящие разделители по краям
func tidy(text string) string {
	text = CollapseSpaces(text)
	text = strings.ReplaceAll(text, " ,", ",")
	return strings.Trim(text, " ,;")
}

func wordStartsAt(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
