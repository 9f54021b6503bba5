package aggregation

import (
	"regexp"
	"strings"

	"bomsplit/model"
	"bomsplit/normalization"
)

// Options режим объединения дубликатов
type Options struct {
	// CombineAcrossFiles объединять одинаковые позиции из разных документов
	CombineAcrossFiles bool
}

var (
	unitPercentRegex = regexp.MustCompile(`(?i)(Ом|пФ|нФ|мкФ|мФ|кОм|МОм|Гн|мГн|мкГн|нГн)\s*(\d+(?:[.,]\d+)?%)`)
	// Артикулы модулей питания: МДМ30-1В05ТУП, МАА20-1С05СБП
	moduleArticleRegex = regexp.MustCompile(`(?i)М[ДАФПСЕ][МАДСИОЕ]?\d+[-\p{L}\p{N}_]+[ТУПСБФН]`)
	// Артикулы разъемов: СНП347-14ВП31-1, ШП1-56-12К
	connectorArticleRegex = regexp.MustCompile(`(?i)[А-ЯЁ]{2,}\d+[-\d]+[А-ЯЁ]+[-\d]+(?:[А-ЯЁ]+)?`)
	hyphenSpacingRegex    = regexp.MustCompile(`\s*-\s*`)
	trailingMakerRegex    = regexp.MustCompile(`\s+ф\.\s*[A-Za-zА-ЯЁа-яё0-9\s\-]+$`)
)

// NormalizeDescription приводит описание к ключу группировки.
// Знак ± и пробелы вокруг дефисов не должны порождать разные группы.
func NormalizeDescription(desc string) string {
	if desc == "" {
		return ""
	}

	// 1. Тире и знак допуска
	text := normalization.NormalizeDashes(desc)
	text = strings.ReplaceAll(text, "±", "")

	// 2. Пробел между единицей и процентом: "100 Ом5%" -> "100 Ом 5%"
	text = unitPercentRegex.ReplaceAllString(text, "${1} ${2}")

	// 3. Дефисы в артикулах модулей и разъемов - часть кода
	if !moduleArticleRegex.MatchString(text) && !connectorArticleRegex.MatchString(text) {
		text = hyphenSpacingRegex.ReplaceAllString(text, " - ")
	}

	text = normalization.CollapseSpaces(text)

	// 4. Производитель в конце строки: "PAT-0+ ф. Mini-Circuits" -> "PAT-0+"
	text = trailingMakerRegex.ReplaceAllString(text, "")

	return strings.TrimSpace(text)
}

type groupKey struct {
	source   string
	sheet    string
	desc     string
	category model.Category
}

type group struct {
	record  model.ComponentRecord
	refs    []string
	sources []string
}

// Aggregate объединяет записи с одинаковым нормализованным описанием.
// Количество суммируется, обозначения склеиваются через запятую, прочие поля
// берутся из первой записи группы. Порядок групп соответствует первому появлению.
func Aggregate(records []model.ComponentRecord, opts Options) []model.ComponentRecord {
	if len(records) == 0 {
		return nil
	}

	index := make(map[groupKey]int, len(records))
	groups := make([]*group, 0, len(records))

	for _, r := range records {
		key := groupKey{desc: NormalizeDescription(r.Description)}
		if !opts.CombineAcrossFiles {
			key.source = r.SourceFile
			key.sheet = r.SourceSheet
			key.category = model.Category(strings.TrimSpace(string(r.Category)))
		}

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			first := r
			first.Description = key.desc
			first.Quantity = 0
			groups = append(groups, &group{record: first})
		}

		g := groups[i]
		g.record.Quantity += r.Quantity
		if ref := strings.TrimSpace(r.Reference); ref != "" {
			g.refs = append(g.refs, ref)
		}
		g.sources = append(g.sources, r.SourceFile)
	}

	out := make([]model.ComponentRecord, 0, len(groups))
	for _, g := range groups {
		rec := g.record
		rec.Reference = strings.Join(g.refs, ", ")
		if opts.CombineAcrossFiles {
			rec.SourceFile = SmartSourceFile(g.sources)
		}
		out = append(out, rec)
	}
	return out
}

// TotalQuantity сумма количеств по записям
func TotalQuantity(records []model.ComponentRecord) int {
	total := 0
	for _, r := range records {
		total += r.Quantity
	}
	return total
}
