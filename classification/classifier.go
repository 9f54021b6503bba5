package classification

import (
	"path/filepath"
	"strings"

	"bomsplit/model"
)

// Input данные записи, по которым принимается решение
type Input struct {
	Reference   string
	Description string
	Value       string
	PartNumber  string
	Strict      bool // Строгий режим: широкие словари не применяются
	SourceFile  string
	Note        string
	GroupType   string
}

// InputFromRecord собирает Input из записи BOM
func InputFromRecord(r model.ComponentRecord, strict bool) Input {
	return Input{
		Reference:   r.Reference,
		Description: r.Description,
		Value:       r.Value,
		PartNumber:  r.PartNumber,
		Strict:      strict,
		SourceFile:  r.SourceFile,
		Note:        r.Note,
		GroupType:   r.GroupType,
	}
}

// Context подготовленные признаки записи, общие для всех правил
type Context struct {
	In        Input
	Blob      string // описание, номинал, артикул и примечание в нижнем регистре
	Desc      string // описание в нижнем регистре
	Prefix    string // буквы позиционного обозначения до первой цифры, латиницей
	FileBase  string // имя исходного файла без расширения в нижнем регистре
	GroupType string // тип из заголовка группы в нижнем регистре
}

// Has проверяет наличие любого из слов в общем тексте
func (c *Context) Has(words []string) bool {
	for _, w := range words {
		if strings.Contains(c.Blob, w) {
			return true
		}
	}
	return false
}

// cyrillicLookalikes кириллические буквы, которые пишут вместо латинских в обозначениях
var cyrillicLookalikes = strings.NewReplacer(
	"А", "A", "В", "B", "С", "C", "Е", "E", "Н", "H", "К", "K",
	"М", "M", "О", "O", "Р", "P", "Т", "T", "Х", "X", "У", "Y",
)

// NewContext нормализует вход: обрезка пробелов, нижний регистр, префикс обозначения
func NewContext(in Input) *Context {
	in.Reference = strings.TrimSpace(in.Reference)
	in.Description = strings.TrimSpace(in.Description)
	in.Value = strings.TrimSpace(in.Value)
	in.PartNumber = strings.TrimSpace(in.PartNumber)
	in.SourceFile = strings.TrimSpace(in.SourceFile)
	in.Note = strings.TrimSpace(in.Note)

	blob := strings.Join([]string{in.Description, in.Value, in.PartNumber, in.Note}, " ")

	return &Context{
		In:        in,
		Blob:      strings.ToLower(blob),
		Desc:      strings.ToLower(in.Description),
		Prefix:    referencePrefix(in.Reference),
		FileBase:  fileBase(in.SourceFile),
		GroupType: strings.ToLower(strings.TrimSpace(in.GroupType)),
	}
}

// referencePrefix "R1, R2" -> "R", "ВТ3" -> "BT"
func referencePrefix(ref string) string {
	fields := strings.Fields(ref)
	if len(fields) == 0 {
		return ""
	}
	prefix := strings.ToUpper(fields[0])
	if i := strings.IndexAny(prefix, "0123456789"); i >= 0 {
		prefix = prefix[:i]
	}
	return cyrillicLookalikes.Replace(prefix)
}

// fileBase имя файла без пути, расширения и пометок подборов/листов
func fileBase(source string) string {
	if source == "" {
		return ""
	}
	if i := strings.Index(source, " ("); i > 0 {
		source = source[:i]
	}
	if i := strings.Index(source, " Лист_"); i > 0 {
		source = source[:i]
	}
	source = strings.ReplaceAll(source, "\\", "/")
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ToLower(strings.TrimSpace(base))
}

// cascade уровни в порядке приоритета; подсказка заголовка группы идет между 2 и 3
var cascade = []Tier{selfReferenceTier, contextTier, prefixTier}

// Classify относит запись к одной категории. Никогда не паникует.
func Classify(in Input) model.Category {
	category, _ := Explain(in)
	return category
}

// Explain возвращает категорию и имя сработавшего правила
func Explain(in Input) (model.Category, string) {
	c := NewContext(in)

	for _, tier := range cascade {
		if category, name := runTier(tier, c); category != "" {
			return category, name
		}
	}

	if category := groupTypeHint(c); category != "" {
		return category, "group_type"
	}

	if category, name := runTier(fallbackTier, c); category != "" {
		return category, name
	}

	return model.CategoryUnclassified, string(model.CategoryUnclassified)
}

func runTier(tier Tier, c *Context) (model.Category, string) {
	for _, rule := range tier.Rules {
		if rule.Loose && c.In.Strict {
			continue
		}
		if category := rule.Decide(c); category != "" {
			return category, rule.Name
		}
	}
	return "", ""
}

// ClassifyAll классифицирует записи без категории.
// Уже назначенная категория не меняется. Возвращает число классифицированных записей.
func ClassifyAll(records []model.ComponentRecord, strict bool) int {
	classified := 0
	for i := range records {
		if records[i].HasCategory() {
			continue
		}
		records[i].Category = Classify(InputFromRecord(records[i], strict))
		classified++
	}
	return classified
}
