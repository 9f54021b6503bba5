package report

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"bomsplit/normalization"
)

// unitGroupRegex единица номинала с необязательным допуском и группой ТКЕ: " кОм ± 1% - М"
var unitGroupRegex = regexp.MustCompile(
	`(?i)\s+(МОм|кОм|Ом|мкФ|нФ|пФ|мГн|мкГн|нГн|Гн)(\s*±\s*\d+(?:[,.]\d+)?%?)?(?:\s*[-–—]\s*[А-ЯЁA-Z])?`,
)

// RemoveDuplicateSuffix убирает повтор последней группы единиц, идущий сразу за предыдущей:
// "27,4 кОм ± 1% - М кОм ± 1% - М" -> "27,4 кОм ± 1% - М"
func RemoveDuplicateSuffix(name string) string {
	matches := unitGroupRegex.FindAllStringSubmatchIndex(name, -1)
	if len(matches) < 2 {
		return name
	}
	prev, last := matches[len(matches)-2], matches[len(matches)-1]

	same := func(a, b []int) bool {
		return strings.EqualFold(
			normalization.CollapseSpaces(name[a[0]:a[1]]),
			normalization.CollapseSpaces(name[b[0]:b[1]]),
		)
	}
	tail := func(m []int) string {
		if m[4] < 0 {
			return ""
		}
		return normalization.CollapseSpaces(name[m[4]:m[1]])
	}

	if prev[1] != last[0] {
		return name
	}
	if same(prev, last) || (tail(prev) != "" && tail(prev) == tail(last)) {
		return strings.TrimSpace(name[:last[0]] + name[last[1]:])
	}
	return name
}

var (
	percentRegex = regexp.MustCompile(`\d+(?:[.,]\d+)?%`)
	percentUnits = []string{"мкгн", "нгн", "мгн", "гн", "мком", "ком", "ом", "мкф", "нф", "пф", "мф"}
)

// AddPlusMinus вставляет "±" перед процентом допуска, который стоит сразу после
// единицы или числа: "10 кОм 5%" -> "10 кОм ± 5%". Уже размеченные допуски не трогает.
func AddPlusMinus(name string) string {
	var b strings.Builder
	last := 0
	for _, m := range percentRegex.FindAllStringIndex(name, -1) {
		start := m[0]
		if start > 0 {
			if r, _ := utf8.DecodeLastRuneInString(name[:start]); unicode.IsDigit(r) || r == '.' || r == ',' {
				continue
			}
		}
		head := strings.TrimRightFunc(name[:start], unicode.IsSpace)
		if head == "" || strings.HasSuffix(head, "±") || !endsWithUnitOrDigit(head) {
			continue
		}
		b.WriteString(name[last:len(head)])
		b.WriteString(" ± ")
		last = start
	}
	if last == 0 {
		return name
	}
	b.WriteString(name[last:])
	return b.String()
}

func endsWithUnitOrDigit(head string) bool {
	if r, _ := utf8.DecodeLastRuneInString(head); unicode.IsDigit(r) {
		return true
	}
	lower := strings.ToLower(head)
	for _, unit := range percentUnits {
		if strings.HasSuffix(lower, unit) {
			return true
		}
	}
	return false
}
