package aggregation

import (
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// alternateTagRegex пометки подборов и замен в имени источника: "(п/б R48*)", "(зам D4)"
var alternateTagRegex = regexp.MustCompile(`\((?:п/б|зам)\s+[^)]+\)`)

// SmartSourceFile склеивает источники группы.
// Один общий файл с пометками сворачивается в "file.docx (п/б R48*), (п/б R49*)",
// иначе источники перечисляются через запятую по алфавиту.
func SmartSourceFile(sources []string) string {
	sources = lo.Filter(lo.Map(sources, func(s string, _ int) string {
		return strings.TrimSpace(s)
	}), func(s string, _ int) bool {
		return s != ""
	})
	if len(sources) == 0 {
		return ""
	}

	bases := make(map[string]struct{})
	var tags []string

	for _, source := range sources {
		found := alternateTagRegex.FindAllString(source, -1)
		if len(found) == 0 {
			bases[source] = struct{}{}
			continue
		}
		base := strings.TrimSpace(source[:strings.Index(source, found[0])])
		bases[base] = struct{}{}
		tags = append(tags, found...)
	}

	if len(bases) == 1 && len(tags) > 0 {
		base := lo.Keys(bases)[0]
		return base + " " + strings.Join(lo.Uniq(tags), ", ")
	}

	unique := lo.Uniq(sources)
	sort.Strings(unique)
	return strings.Join(unique, ", ")
}

// IsAlternateSource источник помечен как подбор или замена
func IsAlternateSource(source string) bool {
	return strings.Contains(source, "(п/б") || strings.Contains(source, "(зам") || strings.Contains(source, "(подбор")
}
