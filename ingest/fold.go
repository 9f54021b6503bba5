package ingest

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"

	"bomsplit/model"
	"bomsplit/normalization"
)

// Row ячейки строки таблицы перечня после сопоставления колонок
type Row struct {
	Zone      string
	Reference string
	Name      string
	Qty       string
	Note      string
	// Cells все ячейки строки, нужны когда заголовок не распознан
	Cells []string
}

// GroupState состояние свертки строк одной таблицы.
// Строка-заголовок группы ("Резисторы Р1-12 ШКАБ.434110.018 ТУ") задает ТУ и тип
// для следующих строк, пока не встретится новый заголовок.
type GroupState struct {
	// TU код ТУ или производитель из последнего заголовка группы
	TU string
	// Type тип компонента из последнего заголовка группы
	Type string
	// Records собранные записи
	Records []model.ComponentRecord

	// prefixTU ТУ по префиксу типа (К10-17в, К53-65, GRM), порядок вставки сохраняется
	prefixTU  map[string]string
	prefixSeq []string
}

// sectionWords слова, по которым строка без обозначения считается заголовком группы
var sectionWords = []string{
	"конденсаторы", "конденсаторов", "резисторы", "резисторов",
	"микросхемы", "микросхем", "дроссели", "дросселей",
	"индуктивности", "индуктивностей",
	"разъемы", "разъемов", "диоды", "диодов",
	"транзисторы", "транзисторов", "кабели", "кабелей",
	"модули", "модулей",
	"набор резисторов", "набор конденсаторов", "набор микросхем",
	"трансформаторы", "трансформаторов", "датчики", "датчиков",
	"реле", "предохранители", "предохранителей",
	"оптопары", "оптопар", "оптроны", "оптронов",
	"светодиоды", "светодиодов", "стабилитроны", "стабилитронов",
	"вариаторы", "вариаторов", "переключатели", "переключателей",
	"кнопки", "кнопок", "тумблеры", "тумблеров",
	"фильтры", "фильтров", "антенны", "антенн",
	"радиаторы", "радиаторов", "крепеж", "крепежа",
	"провода", "проводов", "жгуты", "жгутов",
	"шлейфы", "шлейфов", "платы", "плат",
	"корпуса", "корпусов", "панели", "панелей",
	"винты", "винтов", "гайки", "гаек",
	"изделия", "изделий", "детали", "деталей", "прочие элементы",
}

// служебные фразы примечаний, которые не являются ТУ
var serviceNotePhrases = []string{"допускается отсутствие", "справ.", "см. примечание"}

var (
	headerTURegex      = regexp.MustCompile(`[А-ЯЁ]{2,}[.\d]+\s*ТУ`)
	headerTUFusedRegex = regexp.MustCompile(`[А-ЯЁ]{2,}[.\d]+ТУ`)
	bareTURegex        = regexp.MustCompile(`ТУ\s+[\d-]+`)
	typeAndTURegex     = regexp.MustCompile(`(?i)^[А-ЯЁ]+[\d-]+\s+[А-ЯЁ]{2,}[.\d]+\s*ТУ\s*$`)

	groupTUDottedRegex = regexp.MustCompile(`([А-ЯЁ]{2,}\.\d+[\d.\-]*\s*ТУ)`)
	groupTUPlainRegex  = regexp.MustCompile(`([А-ЯЁ]{2,}[\d.]+\s*ТУ)`)
	groupTUBareRegex   = regexp.MustCompile(`ТУ\s+([\d-]+)`)
	headerMakerRegex   = regexp.MustCompile(`ф\.\s*([A-Za-z][A-Za-z0-9\s\-]+)`)
	typeArticleRegex   = regexp.MustCompile(`\s+[А-ЯЁ]+\d+[\dА-ЯЁ\-]*`)
	typeCodeRegex      = regexp.MustCompile(`\s+[А-ЯЁ]+\.\d+[\d.]*`)
	typePrefixRegex    = regexp.MustCompile(`([А-ЯЁ]+[\d-]+[А-ЯЁ]*|[A-Z]+\d*)`)
	latinWordRegex     = regexp.MustCompile(`(?i)[A-Z]+`)

	nameMakerRegex = regexp.MustCompile(`\s+ф\.\s*([A-Za-z0-9\s\-]+)`)
	makerLineRegex = regexp.MustCompile(`ф\.\s*(.+)`)
	digitsRegex    = regexp.MustCompile(`\d+`)
	nonDigitRegex  = regexp.MustCompile(`\D`)
	refTailRegex   = regexp.MustCompile(`\d.*$`)
)

// FoldRow добавляет строку таблицы к состоянию.
//
// Строка может оказаться заголовком группы, продолжением примечания или
// наименования предыдущей позиции, строкой "ф. Производитель" для предыдущей
// позиции, служебной строкой штампа или самостоятельной позицией.
func FoldRow(st *GroupState, row Row) {
	if lo.EveryBy(row.Cells, func(c string) bool { return strings.TrimSpace(c) == "" }) &&
		row.Reference == "" && row.Name == "" && row.Qty == "" && row.Note == "" {
		return
	}

	ref, name, qtyRaw, cellNote := row.Reference, row.Name, row.Qty, row.Note
	note := cellNote

	if ref == "" && isGroupHeader(name, qtyRaw) {
		st.openGroup(name)
		return
	}

	if ref == "" && name == "" && note != "" && len(st.Records) > 0 {
		st.continueNote(note)
		return
	}

	if ref == "" && (name != "" || note != "") && qtyRaw != "" && len(st.Records) > 0 {
		if st.continueName(name, note, qtyRaw) {
			return
		}
	}

	if ref == "" && name == "" && qtyRaw == "" && len(row.Cells) >= 2 {
		name = strings.Join(row.Cells[:len(row.Cells)-1], " ")
		qtyRaw = row.Cells[len(row.Cells)-1]
	}

	qty, explicit := 0, false
	if m := digitsRegex.FindString(qtyRaw); m != "" {
		qty, _ = strconv.Atoi(m)
		explicit = true
	}

	maker := ""
	if m := nameMakerRegex.FindStringSubmatch(name); m != nil {
		maker = strings.TrimSpace(m[1])
		podborPreview := cellNote != "" && ref != "" && strings.ContainsAny(cellNote, ",;") &&
			!strings.Contains(strings.ToLower(cellNote), "замена")
		if !podborPreview {
			name = strings.TrimSpace(nameMakerRegex.ReplaceAllString(name, ""))
		}
	}

	groupTU := st.TU
	if tu := st.prefixMatch(name); tu != "" {
		groupTU = tu
	}
	refPrefix := referenceHead(ref)
	useGroupTU := groupTU != "" && (refPrefix == "" || belongsToGroup(st.Type, refPrefix, false))

	lowerNote := strings.ToLower(cellNote)
	hasPodbor := cellNote != "" && ref != "" && strings.ContainsAny(cellNote, ",;")
	isReplacement := strings.Contains(lowerNote, "замена")
	isService := cellNote != "" && lo.SomeBy(serviceNotePhrases, func(p string) bool {
		return strings.Contains(lowerNote, p)
	})

	switch {
	case hasPodbor && useGroupTU && !isReplacement:
		note = joinNote(groupTU, maker)
	case hasPodbor && maker != "" && !isReplacement:
		note = maker
	case isReplacement && maker != "":
		note = maker
	case useGroupTU && maker != "":
		note = joinNote(groupTU, maker)
	case useGroupTU && cellNote == "":
		note = groupTU
	case maker != "":
		note = maker
	case isService:
		note = ""
		if useGroupTU {
			note = groupTU
		}
	}

	if ref == "" && name == "" {
		return
	}
	if isServiceRow(name) {
		return
	}

	if ref == "" && strings.HasPrefix(name, "ф.") {
		if len(st.Records) > 0 {
			if m := makerLineRegex.FindStringSubmatch(name); m != nil {
				last := &st.Records[len(st.Records)-1]
				last.Note = joinNote(last.Note, strings.TrimSpace(m[1]))
			}
		}
		return
	}

	name = strings.TrimSpace(strings.TrimRight(name, ","))
	if qty == 0 {
		qty = CountFromReference(ref)
	}

	groupType := st.Type
	if ref != "" && !belongsToGroup(st.Type, refPrefix, true) {
		groupType = ""
	}

	desc := name
	if desc == "" {
		desc = note
	}
	st.Records = append(st.Records, model.ComponentRecord{
		Zone:           row.Zone,
		Reference:      ref,
		Description:    desc,
		Quantity:       qty,
		Note:           note,
		GroupType:      groupType,
		OriginalNote:   cellNote,
		HasExplicitQty: explicit,
	})
}

// isGroupHeader строка без обозначения похожа на заголовок группы
func isGroupHeader(name, qtyRaw string) bool {
	lower := strings.ToLower(name)
	switch {
	case normalization.HasAny(lower, sectionWords):
		hasTU := headerTURegex.MatchString(name) || bareTURegex.MatchString(name)
		return hasTU || qtyRaw == ""
	case typeAndTURegex.MatchString(name):
		return true
	case utf8.RuneCountInString(name) < 30 && qtyRaw == "":
		return headerTUFusedRegex.MatchString(name) || bareTURegex.MatchString(name)
	}
	return false
}

// openGroup запоминает ТУ и тип компонента из заголовка группы
func (st *GroupState) openGroup(name string) {
	st.TU = ""
	switch {
	case groupTUDottedRegex.MatchString(name):
		st.TU = groupTUDottedRegex.FindStringSubmatch(name)[1]
	case groupTUPlainRegex.MatchString(name):
		st.TU = groupTUPlainRegex.FindStringSubmatch(name)[1]
	case groupTUBareRegex.MatchString(name):
		st.TU = "ТУ " + groupTUBareRegex.FindStringSubmatch(name)[1]
	default:
		if m := headerMakerRegex.FindStringSubmatch(name); m != nil {
			st.TU = strings.TrimSpace(m[1])
		}
	}

	typeText := name
	if st.TU != "" {
		typeText = strings.ReplaceAll(typeText, st.TU, "")
	}
	typeText = typeArticleRegex.ReplaceAllString(typeText, "")
	typeText = typeCodeRegex.ReplaceAllString(typeText, "")
	st.Type = strings.TrimSpace(typeText)

	if m := typePrefixRegex.FindString(name); m != "" && st.TU != "" {
		st.setPrefixTU(strings.ReplaceAll(m, " ", ""), st.TU)
	}
	if m := headerMakerRegex.FindStringSubmatch(name); m != nil {
		if w := latinWordRegex.FindString(name); w != "" {
			st.setPrefixTU(strings.ToUpper(w), strings.TrimSpace(m[1]))
		}
	}
}

func (st *GroupState) setPrefixTU(prefix, tu string) {
	if st.prefixTU == nil {
		st.prefixTU = make(map[string]string)
	}
	if _, ok := st.prefixTU[prefix]; !ok {
		st.prefixSeq = append(st.prefixSeq, prefix)
	}
	st.prefixTU[prefix] = tu
}

// prefixMatch ТУ самого длинного известного префикса типа, входящего в наименование
func (st *GroupState) prefixMatch(name string) string {
	if len(st.prefixSeq) == 0 || name == "" {
		return ""
	}
	compact := strings.ReplaceAll(name, " ", "")
	keys := append([]string(nil), st.prefixSeq...)
	sort.SliceStable(keys, func(i, j int) bool {
		return utf8.RuneCountInString(keys[i]) > utf8.RuneCountInString(keys[j])
	})
	for _, k := range keys {
		if strings.Contains(compact, k) {
			return st.prefixTU[k]
		}
	}
	return ""
}

// continueNote строка только с примечанием дописывает примечание предыдущей позиции.
// Note предыдущей позиции не трогается, если там уже ТУ, производитель или замена.
func (st *GroupState) continueNote(note string) {
	last := &st.Records[len(st.Records)-1]
	if last.OriginalNote != "" {
		last.OriginalNote = strings.TrimSpace(last.OriginalNote) + " " + note
		if !noteIsTUOrMaker(last.Note) && !strings.Contains(strings.ToLower(last.OriginalNote), "замена") {
			last.Note = last.OriginalNote
		}
		return
	}
	last.OriginalNote = note
	if !noteIsTUOrMaker(last.Note) && !strings.Contains(strings.ToLower(note), "замена") {
		last.Note = note
	}
}

// continueName вторая строка многострочного наименования, несущая количество.
// Возвращает false, если предыдущая позиция уже имеет явное количество.
func (st *GroupState) continueName(name, note, qtyRaw string) bool {
	last := &st.Records[len(st.Records)-1]
	if last.Reference == "" || last.HasExplicitQty {
		return false
	}

	extra := name
	if extra == "" {
		extra = note
	}
	last.Description = strings.TrimSpace(strings.TrimSpace(last.Description) + " " + extra)

	last.Quantity = 1
	if n, err := strconv.Atoi(nonDigitRegex.ReplaceAllString(qtyRaw, "")); err == nil {
		last.HasExplicitQty = true
		if n > 0 {
			last.Quantity = n
		}
	}

	if note != "" {
		last.Note = note
		last.OriginalNote = note
	}
	return true
}

// noteIsTUOrMaker примечание уже содержит ТУ или короткое имя производителя
func noteIsTUOrMaker(note string) bool {
	if note == "" {
		return false
	}
	if strings.Contains(note, "ТУ") {
		return true
	}
	return utf8.RuneCountInString(note) < 50 && !strings.Contains(note, ",")
}

// belongsToGroup префикс обозначения соответствует типу группы.
// withConnectors включает проверку разъемов, она нужна только для типа группы.
func belongsToGroup(groupType, refPrefix string, withConnectors bool) bool {
	if groupType == "" {
		return true
	}
	g := strings.ToLower(groupType)
	switch {
	case strings.Contains(g, "резистор"):
		return strings.HasPrefix(refPrefix, "R")
	case strings.Contains(g, "конденсатор"):
		return strings.HasPrefix(refPrefix, "C")
	case strings.Contains(g, "микросхем"):
		return hasAnyPrefix(refPrefix, "DA", "DD", "U", "IC")
	case strings.Contains(g, "дроссел"), strings.Contains(g, "индуктивност"):
		return strings.HasPrefix(refPrefix, "L")
	case withConnectors && strings.Contains(g, "разъем"):
		return hasAnyPrefix(refPrefix, "X", "J", "P")
	}
	return true
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	return lo.SomeBy(prefixes, func(p string) bool { return strings.HasPrefix(s, p) })
}

// referenceHead буквенная часть первого обозначения: "DA1, DA2" -> "DA"
func referenceHead(ref string) string {
	fields := strings.Fields(ref)
	if len(fields) == 0 {
		return ""
	}
	return refTailRegex.ReplaceAllString(strings.ToUpper(fields[0]), "")
}

func joinNote(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " | " + b
}
