package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/samber/lo"

	"bomsplit/model"
	"bomsplit/normalization"
)

var (
	// lineSplitRegex разделители полей строки: 2+ пробела, табуляция, точка с запятой
	lineSplitRegex = regexp.MustCompile(`\s{2,}|\t|;|\x1f`)
	// positionRegex поле похоже на позиционное обозначение: R1, C3-C5, DA1,DA2
	positionRegex = regexp.MustCompile(`(?i)^[A-ZА-Я]+\d+(?:[-,;\s]*[A-ZА-Я]*\d+)*$`)
	// piecesRegex явное количество: "4 шт", "10pcs"
	piecesRegex      = regexp.MustCompile(`(?i)(\d+)\s*(?:шт\.?|pcs|pieces)`)
	piecesFieldRegex = regexp.MustCompile(`(?i)^\d+\s*(?:шт\.?|pcs|pieces)$`)
	bareIntRegex     = regexp.MustCompile(`^\d+$`)
)

// serviceRowKeywords строки штампа и листа регистрации изменений
var serviceRowKeywords = []string{
	"изм.", "изме-ненных", "заме-ненных", "аннули-рован", "всего листов",
	"номер докум", "входя-щий", "сопрово-дитель", "подп.",
	"лист регистрации", "регистрации изменений",
}

// normalizeCell обрезает текст ячейки, нормализует тире и убирает непечатные символы
func normalizeCell(s string) string {
	s = normalization.NormalizeDashes(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			return r
		}
		return -1
	}, s)
}

func isServiceRow(text string) bool {
	return normalization.HasAny(text, serviceRowKeywords)
}

// splitFields делит строку свободного текста на поля.
// Запятая перед непробельным символом тоже разделяет поля, кроме десятичной
// запятой между цифрами.
func splitFields(line string) []string {
	var out []string
	for _, p := range lineSplitRegex.Split(markCommas(line), -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func markCommas(line string) string {
	runes := []rune(line)
	var b strings.Builder
	for i, r := range runes {
		if r != ',' {
			b.WriteRune(r)
			continue
		}
		next := i + 1
		if next < len(runes) && runes[next] == ' ' {
			next++
		}
		switch {
		case next >= len(runes) || unicode.IsSpace(runes[next]):
			b.WriteRune(r)
		case next == i+1 && i > 0 && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[next]):
			b.WriteRune(r)
		default:
			b.WriteRune('\x1f')
		}
	}
	return b.String()
}

// lineRecord строит запись из строки вида "R1  Резистор 10 кОм  2".
// Первое поле считается обозначением, если похоже на него. Количество берется
// из "N шт", иначе из последнего поля-числа, иначе 1.
func lineRecord(line string) (model.ComponentRecord, bool) {
	parts := splitFields(line)
	if len(parts) == 0 {
		return model.ComponentRecord{}, false
	}

	rec := model.ComponentRecord{Quantity: 1}
	body := parts
	var refs []string
	for len(body) > 1 && positionRegex.MatchString(body[0]) {
		refs = append(refs, body[0])
		body = body[1:]
	}
	rec.Reference = strings.Join(refs, ", ")

	if m := piecesRegex.FindStringSubmatch(line); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			rec.Quantity = n
			rec.HasExplicitQty = true
		}
	} else if last := body[len(body)-1]; len(body) > 1 && bareIntRegex.MatchString(last) {
		n, _ := strconv.Atoi(last)
		rec.Quantity = n
		rec.HasExplicitQty = true
		body = body[:len(body)-1]
	}

	body = lo.Reject(body, func(p string, _ int) bool { return piecesFieldRegex.MatchString(p) })
	rec.Description = strings.Join(body, " ")
	if !rec.HasExplicitQty && rec.Reference != "" {
		rec.Quantity = CountFromReference(rec.Reference)
	}
	return rec, true
}
