package normalization

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// componentTypePrefixes префиксы типа компонента, от длинных к коротким
var componentTypePrefixes = []string{
	"ЧИП КАТУШКИ ИНДУКТИВНОСТЬ",
	"ЧИП КОНДЕНСАТОР КЕРАМИЧЕСКИЙ",
	"ЧИП КАТУШКА ИНДУКТИВНОСТЬ",
	"МАТРИЦА ТРАНЗИСТОРНАЯ",
	"ТРАНЗИСТОРНАЯ МАТРИЦА",
	"ИНДИКАТОР ЕДИНИЧНЫЙ",
	"НАБОР КОНДЕНСАТОРОВ",
	"НАБОР РЕЗИСТОРОВ",
	"НАБОР МИКРОСХЕМ",
	"ПЛАТА ИНСТРУМЕНТАЛЬНАЯ",
	"ОПТИЧЕСКИЙ МОДУЛЬ",
	"МОДУЛЬ ПИТАНИЯ",
	"ПРЕДОХРАНИТЕЛЬ",
	"ИНДУКТИВНОСТЬ",
	"КОНДЕНСАТОР",
	"СТАБИЛИТРОН",
	"МИКРОСХЕМА",
	"ТРАНЗИСТОР",
	"ИНДИКАТОР",
	"ГЕНЕРАТОР",
	"РЕЗИСТОР",
	"ДРОССЕЛЬ",
	"РАЗЪЕМ",
	"РАЗЪЁМ",
	"КАБЕЛЬ",
	"ОПТРОН",
	"ВИЛКА",
	"ДИОД",
}

// inductorAdjectives прилагательные, с которыми "Дроссель"/"Индуктивность" остается в имени
var inductorAdjectives = []string{"чип", "smd", "вч", "свч", "силовой", "подстроечный"}

// unitCanon каноническое написание единиц измерения
type unitCanon struct {
	re    *regexp.Regexp
	canon string
}

// NameNormalizer очищает наименования компонентов
type NameNormalizer struct {
	dashRunRegex      *regexp.Regexp
	articleRegex      *regexp.Regexp
	manufacturerRegex *regexp.Regexp // ", ф." перед производителем
	toleranceRegex    *regexp.Regexp // Номинал с допуском и группой точности
	units             []unitCanon
	title             cases.Caser
	lower             cases.Caser
}

// NewNameNormalizer создает новый нормализатор имен
func NewNameNormalizer() *NameNormalizer {
	unit := func(pattern, canon string) unitCanon {
		// Граница слова эмулируется явно: \b в RE2 не понимает кириллицу
		return unitCanon{
			re:    regexp.MustCompile(`(?i)(\d)\s*` + pattern + `([^\p{L}\p{N}_]|$)`),
			canon: canon,
		}
	}

	return &NameNormalizer{
		dashRunRegex:      regexp.MustCompile(`-{2,}`),
		articleRegex:      regexp.MustCompile(`(?i)[,\s]*артикул[:\s]*`),
		manufacturerRegex: regexp.MustCompile(`(?:,\s*)+ф\.`),
		toleranceRegex: regexp.MustCompile(
			`(Ом|кОм|МОм|пФ|нФ|мкФ|мФ|Гн|мГн|мкГн) (±\s*)?(\d+(?:[.,]\d+)?)(\s*%)?(\s*-?\s*)([А-ЯЁA-Z])?(\s*-?\s*«[^»]*»)?([^\p{L}\p{N}]|$)`,
		),
		units: []unitCanon{
			unit("ом", "Ом"),
			unit("ком", "кОм"),
			unit("мом", "МОм"),
			unit("пф", "пФ"),
			unit("нф", "нФ"),
			unit("мкф", "мкФ"),
			unit("мф", "мФ"),
			unit("гн", "Гн"),
			unit("мгн", "мГн"),
			unit("мкгн", "мкГн"),
		},
		title: cases.Title(language.Russian),
		lower: cases.Lower(language.Russian),
	}
}

var defaultNameNormalizer = NewNameNormalizer()

// CleanComponentName очищает наименование компонента от префикса типа,
// нормализует единицы, допуски и тире. Повторный вызов результат не меняет.
func CleanComponentName(original, note string) string {
	return defaultNameNormalizer.Clean(original, note)
}

// Clean очищает наименование компонента.
// note зарезервирован под тип из группового заголовка и на результат не влияет.
func (n *NameNormalizer) Clean(original, _ string) string {
	if strings.TrimSpace(original) == "" {
		return ""
	}

	// 1. Убираем $, нормализуем тире и пробелы
	text := strings.ReplaceAll(original, "$", "")
	text = n.collapse(n.dashRunRegex.ReplaceAllString(NormalizeDashes(text), "-"))

	// 2. Убираем слово "артикул", оставляя производителя и код
	if strings.Contains(strings.ToLower(text), "артикул") {
		text = n.collapse(n.articleRegex.ReplaceAllString(text, " "))
	}

	// 3. Убираем префикс типа компонента
	text = n.stripTypePrefix(text)

	// 4. Единицы измерения: "10ком" -> "10 кОм"
	for _, u := range n.units {
		text = u.re.ReplaceAllString(text, "${1} "+u.canon+"${2}")
	}

	// 5. Допуски и группы точности: "300 Ом 5Т « A »" -> "300 Ом ±5% - Т - « A »"
	text = n.canonTolerances(text)

	// 6. ", ф." -> " ф."
	text = n.manufacturerRegex.ReplaceAllString(text, " ф.")

	return n.collapse(text)
}

// collapse схлопывает пробелы, включая неразрывные из DOCX/XLSX
func (n *NameNormalizer) collapse(text string) string {
	return CollapseSpaces(text)
}

// stripTypePrefix снимает префиксы типа, пока они находятся в начале строки
func (n *NameNormalizer) stripTypePrefix(text string) string {
	for range len(componentTypePrefixes) {
		upper := strings.ToUpper(text)
		matched := false

		for _, prefix := range componentTypePrefixes {
			if !strings.HasPrefix(upper, prefix) || !wordEndsAt(upper, len(prefix)) {
				continue
			}

			prefixRunes := utf8.RuneCountInString(prefix)
			head, rest := splitRunes(text, prefixRunes)
			rest = strings.TrimSpace(rest)
			restLower := strings.ToLower(rest)

			switch {
			case prefix == "ВИЛКА" && (strings.Contains(restLower, "harting") || strings.Contains(restLower, "sek")):
				// Для Harting/SEK "Вилка" часть названия изделия
				return text
			case strings.HasPrefix(prefix, "НАБОР ") || strings.HasPrefix(prefix, "ЧИП "):
				return joinNonEmpty(n.capitalize(head), rest)
			case (prefix == "ДРОССЕЛЬ" || prefix == "ИНДУКТИВНОСТЬ") && startsWithAdjective(restLower):
				return joinNonEmpty(n.capitalize(head), rest)
			}

			text = rest
			matched = true
			break
		}

		if !matched {
			break
		}
	}
	return text
}

// capitalize "НАБОР РЕЗИСТОРОВ" -> "Набор резисторов"
func (n *NameNormalizer) capitalize(phrase string) string {
	words := strings.Fields(n.lower.String(phrase))
	if len(words) == 0 {
		return ""
	}
	words[0] = n.title.String(words[0])
	return strings.Join(words, " ")
}

// canonTolerances переписывает все допуски за один проход по полному тексту:
// группы берутся из того же совпадения, иначе хвост "$" срабатывает на конце фрагмента
func (n *NameNormalizer) canonTolerances(text string) string {
	matches := n.toleranceRegex.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])
		sub := make([]string, len(m)/2)
		for i := range sub {
			if m[2*i] >= 0 {
				sub[i] = text[m[2*i]:m[2*i+1]]
			}
		}
		b.WriteString(n.canonTolerance(sub))
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

func (n *NameNormalizer) canonTolerance(sub []string) string {
	match := sub[0]
	unit, value, pct, sep, letter, group, tail := sub[1], sub[3], sub[4], sub[5], sub[6], sub[7], sub[8]

	// Без знака процента допуском считается только слитная форма "5Т"
	if pct == "" && (letter == "" || sep != "") {
		return match
	}
	if letter == "В" || letter == "V" || letter == "W" {
		return match
	}

	var b strings.Builder
	b.WriteString(unit)
	b.WriteString(" ±")
	b.WriteString(value)
	b.WriteString("%")
	switch {
	case letter != "":
		b.WriteString(" - ")
		b.WriteString(letter)
	case group == "":
		// Разделитель перед следующей числовой группой (ТКС) остается как был
		b.WriteString(sep)
	}
	if group != "" {
		b.WriteString(" - ")
		b.WriteString(group[strings.Index(group, "«"):])
	}
	b.WriteString(tail)
	return b.String()
}

func startsWithAdjective(lower string) bool {
	fields := strings.Fields(lower)
	if len(fields) == 0 {
		return false
	}
	word := strings.Trim(fields[0], ",.;")
	for _, suffix := range []string{"ный", "ной", "ная", "ное", "ные"} {
		if strings.HasSuffix(word, suffix) {
			return true
		}
	}
	for _, adj := range inductorAdjectives {
		if word == adj {
			return true
		}
	}
	return false
}

// wordEndsAt проверяет, что после позиции i в строке нет буквы
func wordEndsAt(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !unicode.IsLetter(r)
}

func splitRunes(s string, count int) (string, string) {
	i := 0
	for pos := range s {
		if i == count {
			return s[:pos], s[pos:]
		}
		i++
	}
	return s, ""
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
