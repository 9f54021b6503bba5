package ingest

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/lo"

	"bomsplit/model"
)

// Подбор: в примечании перечислены варианты номинала ("1 кОм; 1,87 кОм")
// или артикула ("PAT-1+, PAT-2+"). Замена: "Допуск. замена на AD9221AR, ф. Analog Devices".
// Каждый вариант становится отдельной записью без позиционного обозначения.

var (
	replacementRegex = regexp.MustCompile(
		`(?is)(?:замена\s+на|допуск\.\s*замена\s+на|допускается\s+замена\s+на|доп\.\s*замена:)\s+(.+?)(?:\.\s*$|$)`)
	groupMakerRegex     = regexp.MustCompile(`ф\.\s*([A-Za-z][A-Za-z0-9\s\-]+?)(?:\s*$|[,;])`)
	groupMakerCutRegex  = regexp.MustCompile(`,?\s*ф\.\s*[A-Za-z][A-Za-z0-9\s\-]+`)
	descMakerRegex      = regexp.MustCompile(`ф\.\s*([A-Za-zА-ЯЁа-яё0-9\s\-]+)`)
	descMakerLazyRegex  = regexp.MustCompile(`(?i)ф\.\s*(.+?)(?:\s*,|$)`)
	makerSplitRegex     = regexp.MustCompile(`\s+ф\.`)
	wideSpaceRegex      = regexp.MustCompile(`\s{2,}`)
	trailingVendorRegex = regexp.MustCompile(`(?i)\.\s+[A-Z][A-Za-z\-\s]+$`)
	newlinesRegex       = regexp.MustCompile(`\n+`)
	spacesRegex         = regexp.MustCompile(`\s+`)
	letterRegex         = regexp.MustCompile(`[A-Za-zА-ЯЁа-яё]`)
	digitRegex          = regexp.MustCompile(`\d`)
	domesticTURegex     = regexp.MustCompile(`[А-ЯЁ]{4}\.\d{6}\.\d{3}`)
	tuInNoteRegex       = regexp.MustCompile(`[А-ЯЁ]{2,}\.\d+[\d.\-]*ТУ`)
	podborSourceRegex   = regexp.MustCompile(`\s*,?\s*\((?:замена|п/б|подбор).*?\)`)

	serviceCleanupRegexes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)допускается\s+отсутствие\.?`),
		regexp.MustCompile(`(?i)допускается\s+замена`),
		regexp.MustCompile(`(?i)справ\.?`),
		regexp.MustCompile(`(?i)см\.\s+примечание`),
	}

	plusArticlePairRegex = regexp.MustCompile(`(?i)[A-Z0-9\-]+\+\s+[A-Z0-9\-]+\+`)
	plusArticleRegex     = regexp.MustCompile(`(?i)[A-Z0-9А-ЯЁ\-]+\+`)

	leadingArticleRegex = regexp.MustCompile(`(?i)^([A-Z0-9А-ЯЁ\-+]+(?:\s*[A-Z0-9А-ЯЁ\-+]+)*?)(?:\s*[,.]|\s+ф\.)`)
	firstTokenRegex     = regexp.MustCompile(`(?i)^([A-Z0-9А-ЯЁ\-+]+)`)
)

// podborMakers производители, которые переносятся в описание подборного варианта
var podborMakers = []string{
	"mini-circuit", "murata", "coilcraft", "tdk", "yageo", "vishay", "kemet",
	"panasonic", "analog devices", "hittite", "api technologies",
}

// articleMakers производители, с которыми новый артикул дополняется "ф. Производитель"
var articleMakers = []string{
	"mini-circuit", "murata", "coilcraft", "tdk", "yageo", "vishay",
	"kemet", "panasonic", "analog", "hittite", "api", "qualwave",
}

var podborSkipWords = []string{"примечание", "гост", "ту ", "осту"}

// nominalUnit единица номинала в примечании и ее каноническая запись
type nominalUnit struct {
	re    *regexp.Regexp
	canon string
}

func unitRegex(alts string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(\d+(?:[,.]\d+)?)\s*(` + alts + `)`)
}

// nominalUnits порядок важен: мегаомы раньше омов, микрофарады раньше нанофарад
var nominalUnits = []nominalUnit{
	{unitRegex(`МОм|MΩ`), "МОм"},
	{unitRegex(`кОм|kΩ`), "кОм"},
	{unitRegex(`Ом|Ω`), "Ом"},
	{unitRegex(`мкФ|μF|uF`), "мкФ"},
	{unitRegex(`нФ|nF`), "нФ"},
	{unitRegex(`пФ|pF`), "пФ"},
	{unitRegex(`мГн|mH`), "мГн"},
	{unitRegex(`мкГн|μH|uH`), "мкГн"},
	{unitRegex(`нГн|nH`), "нГн"},
	{unitRegex(`Гн|H`), "Гн"},
}

var anyNominalRegex = unitRegex(`МОм|кОм|Ом|мкФ|нФ|пФ|мГн|мкГн|нГн|Гн`)

// ExtractAlternates добавляет записи подборов и замен из примечаний.
// Исходная позиция остается, но ее примечание очищается от списка вариантов.
// Источник варианта помечается как "<файл> (п/б R48*)" или "<файл> (зам D4)".
func ExtractAlternates(records []model.ComponentRecord) []model.ComponentRecord {
	out := make([]model.ComponentRecord, 0, len(records))

	for _, r := range records {
		ref := strings.TrimSpace(r.Reference)
		note := strings.TrimSpace(r.OriginalNote)
		if note == "" {
			note = strings.TrimSpace(r.Note)
		}
		lowerNote := strings.ToLower(note)

		serviceNote := strings.Contains(lowerNote, "допускается отсутствие") || strings.Contains(lowerNote, "справ.")
		hasAlternates := note != "" && ref != "" && !serviceNote &&
			(strings.ContainsAny(note, ",;") || strings.Contains(lowerNote, "замена"))

		if hasAlternates {
			out = append(out, withoutAlternateList(r))
		} else {
			out = append(out, r)
		}

		if ref == "" || note == "" {
			continue
		}

		replacement := strings.Contains(lowerNote, "замен")
		var variants []alternate
		if replacement {
			variants = extractReplacements(note, r.Description)
		} else {
			variants = lo.Map(extractPodbors(note, r), func(d string, _ int) alternate {
				return alternate{desc: d}
			})
		}

		for _, v := range variants {
			out = append(out, alternateRecord(r, v, replacement))
		}
	}
	return out
}

// alternate вариант из примечания: описание и производитель (для замен)
type alternate struct {
	desc  string
	maker string
}

// withoutAlternateList оставляет в примечании позиции только ТУ или производителя
func withoutAlternateList(r model.ComponentRecord) model.ComponentRecord {
	keep := false
	switch {
	case r.Note == "":
	case strings.Contains(r.Note, "ТУ") || tuInNoteRegex.MatchString(r.Note):
		keep = true
	case strings.Contains(strings.ToLower(r.OriginalNote), "замена"):
		keep = true
	case utf8.RuneCountInString(r.Note) < 50 && !strings.ContainsAny(r.Note, ",;"):
		keep = true
	}
	if !keep {
		r.Note = ""
	}
	r.OriginalNote = ""
	return r
}

func alternateRecord(r model.ComponentRecord, v alternate, replacement bool) model.ComponentRecord {
	rec := r
	rec.Description = cleanAlternateDesc(v.desc)
	rec.Reference = ""
	rec.Note = ""
	rec.OriginalNote = ""
	rec.TU = ""
	rec.HasExplicitQty = false

	if replacement && v.maker != "" {
		rec.Note = v.maker
	} else {
		inheritMaker(&rec, r)
	}

	tag := "п/б"
	if replacement {
		tag = "зам"
	}
	source := strings.TrimSpace(podborSourceRegex.ReplaceAllString(r.SourceFile, ""))
	rec.SourceFile = fmt.Sprintf("%s (%s %s)", source, tag, strings.TrimSpace(r.Reference))
	return rec
}

// inheritMaker переносит ТУ или производителя исходной позиции на вариант
func inheritMaker(dst *model.ComponentRecord, src model.ComponentRecord) {
	descMaker := ""
	if m := descMakerRegex.FindStringSubmatch(src.Description); m != nil {
		descMaker = strings.TrimSpace(m[1])
	}

	switch {
	case src.TU != "":
		if looksLikeTU(src.TU) {
			dst.TU = src.TU
		}
	case src.Note != "":
		lower := strings.ToLower(src.Note)
		switch {
		case looksLikeTU(src.Note):
			dst.Note = src.Note
		case strings.Contains(lower, "замена"):
			dst.Note = descMaker
		case descMaker != "":
			dst.Note = descMaker
		case utf8.RuneCountInString(src.Note) < 100 && !strings.ContainsAny(src.Note, ",;"):
			dst.Note = src.Note
		}
	case src.OriginalNote != "":
		if looksLikeTU(src.OriginalNote) {
			dst.Note = src.OriginalNote
		} else {
			dst.Note = descMaker
		}
	default:
		dst.Note = descMaker
	}
}

func looksLikeTU(s string) bool {
	return strings.Contains(strings.ToLower(s), "ту") || domesticTURegex.MatchString(s)
}

// cleanAlternateDesc оставляет от варианта только артикул: "PAT-0+   ф. Mini-Circuits" -> "PAT-0+"
func cleanAlternateDesc(desc string) string {
	var out string
	switch {
	case strings.Contains(desc, " ф.") || strings.Contains(desc, "\tф."):
		out = makerSplitRegex.Split(desc, 2)[0]
	case wideSpaceRegex.MatchString(desc):
		out = wideSpaceRegex.Split(desc, 2)[0]
	case strings.Contains(desc, ". ") || strings.HasSuffix(desc, "."):
		out = trailingVendorRegex.ReplaceAllString(desc, "")
	default:
		out = desc
	}
	return strings.TrimRight(strings.TrimSpace(out), ".")
}

// extractReplacements разбирает "замена на A, B, ф. X; C, ф. Y" в пары (артикул, производитель)
func extractReplacements(note, mainDesc string) []alternate {
	m := replacementRegex.FindStringSubmatch(note)
	if m == nil {
		return nil
	}
	text := strings.TrimSpace(m[1])
	text = newlinesRegex.ReplaceAllString(text, " ")
	text = spacesRegex.ReplaceAllString(strings.TrimSpace(text), " ")
	mainLower := strings.ToLower(strings.TrimSpace(mainDesc))

	var out []alternate
	for _, group := range strings.Split(text, ";") {
		group = strings.TrimSpace(group)
		if utf8.RuneCountInString(group) < 3 {
			continue
		}

		maker := ""
		if mm := groupMakerRegex.FindStringSubmatch(group); mm != nil {
			maker = strings.TrimSpace(mm[1])
		}
		rest := strings.TrimSpace(groupMakerCutRegex.ReplaceAllString(group, ""))

		var parts []string
		lower := strings.ToLower(rest)
		if strings.Contains(lower, "p/n:") || strings.Contains(lower, "p/n ") {
			parts = []string{rest}
		} else {
			for _, p := range strings.Split(rest, ",") {
				parts = append(parts, strings.TrimSpace(strings.TrimRight(strings.TrimSpace(p), ".")))
			}
		}

		for _, p := range parts {
			p = strings.TrimSpace(p)
			if utf8.RuneCountInString(p) < 3 || !letterRegex.MatchString(p) {
				continue
			}
			if strings.ToLower(p) == mainLower {
				continue
			}
			out = append(out, alternate{desc: p, maker: maker})
		}
	}
	return out
}

// extractPodbors возвращает полные описания вариантов подбора
func extractPodbors(note string, r model.ComponentRecord) []string {
	mainDesc := strings.TrimSpace(r.Description)

	candidate := strings.TrimSpace(r.Note)
	if i := strings.LastIndex(candidate, "|"); i >= 0 {
		candidate = strings.TrimSpace(candidate[i+1:])
	}
	if candidate != "" && utf8.RuneCountInString(candidate) < 100 && !strings.ContainsAny(candidate, ",;") {
		lower := strings.ToLower(candidate)
		if lo.SomeBy(podborMakers, func(m string) bool { return strings.Contains(lower, m) }) {
			mainDesc = mainDesc + " ф. " + candidate
		}
	}

	cleaned := note
	for _, re := range serviceCleanupRegexes {
		cleaned = re.ReplaceAllString(cleaned, "")
	}

	var podbors []string
	found := false
	for _, u := range nominalUnits {
		for _, loc := range boundedMatches(u.re, cleaned) {
			found = true
			nominal := strings.ReplaceAll(cleaned[loc[2]:loc[3]], ",", ".") + " " + u.canon
			if d := replaceNominal(mainDesc, nominal); d != "" && d != mainDesc {
				podbors = append(podbors, d)
			}
		}
	}
	if found {
		return podbors
	}

	var parts []string
	for _, p := range strings.FieldsFunc(cleaned, func(r rune) bool { return r == ',' || r == ';' }) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if plusArticlePairRegex.MatchString(p) {
			parts = append(parts, plusArticleRegex.FindAllString(p, -1)...)
		} else {
			parts = append(parts, p)
		}
	}

	mainCompact := compactArticle(mainDesc)
	for _, p := range parts {
		p = strings.TrimRight(strings.TrimSpace(p), ".")
		if p == "" {
			continue
		}
		lower := strings.ToLower(p)
		if lo.SomeBy(podborSkipWords, func(w string) bool { return strings.Contains(lower, w) }) {
			continue
		}
		if utf8.RuneCountInString(p) <= 3 || !letterRegex.MatchString(p) || !digitRegex.MatchString(p) {
			continue
		}
		if strings.Contains(mainCompact, compactArticle(p)) {
			continue
		}
		if d := replaceArticle(mainDesc, p); d != "" && d != mainDesc {
			podbors = append(podbors, d)
		} else {
			podbors = append(podbors, p)
		}
	}
	return podbors
}

func compactArticle(s string) string {
	return strings.ToLower(strings.NewReplacer(" ", "", "-", "").Replace(s))
}

// boundedMatches совпадения, у которых число и единица не продолжают соседние слова
func boundedMatches(re *regexp.Regexp, s string) [][]int {
	var out [][]int
	for _, loc := range re.FindAllStringSubmatchIndex(s, -1) {
		if isWordRuneBefore(s, loc[0]) || isWordRuneAt(s, loc[1]) {
			continue
		}
		out = append(out, loc)
	}
	return out
}

func isWordRuneBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return isWordRune(r)
}

func isWordRuneAt(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// replaceNominal заменяет первый номинал в описании:
// "Р1-12-0,1-536 Ом ±2%-Т" + "1 кОм" -> "Р1-12-0,1-1 кОм ±2%-Т"
func replaceNominal(desc, nominal string) string {
	locs := boundedMatches(anyNominalRegex, desc)
	if len(locs) == 0 {
		return desc
	}
	return desc[:locs[0][0]] + nominal + desc[locs[0][1]:]
}

// replaceArticle подставляет новый артикул вместо старого, сохраняя контекст:
// "PAT-0+ ф. Mini-Circuits" + "PAT-1+" -> "PAT-1+ ф. Mini-Circuits"
func replaceArticle(desc, article string) string {
	article = strings.TrimRight(article, ".")

	if m := leadingArticleRegex.FindStringSubmatch(desc); m != nil {
		old := strings.TrimSpace(m[1])
		if letterRegex.MatchString(old) && digitRegex.MatchString(old) {
			return strings.Replace(desc, old, article, 1)
		}
	}
	if m := firstTokenRegex.FindStringSubmatch(desc); m != nil {
		old := strings.TrimSpace(m[1])
		if utf8.RuneCountInString(old) >= 3 && letterRegex.MatchString(old) && digitRegex.MatchString(old) {
			return strings.Replace(desc, old, article, 1)
		}
	}
	if m := descMakerLazyRegex.FindStringSubmatch(desc); m != nil {
		maker := strings.TrimSpace(m[1])
		lower := strings.ToLower(maker)
		if lo.SomeBy(articleMakers, func(k string) bool { return strings.Contains(lower, k) }) {
			return article + " ф. " + maker
		}
	}
	return article
}
