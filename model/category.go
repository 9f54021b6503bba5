package model

import "strings"

// Category ключ категории компонента
type Category string

const (
	CategoryICs             Category = "ics"
	CategoryResistors       Category = "resistors"
	CategoryCapacitors      Category = "capacitors"
	CategoryInductors       Category = "inductors"
	CategorySemiconductors  Category = "semiconductors"
	CategoryConnectors      Category = "connectors"
	CategoryOptics          Category = "optics"
	CategoryPowerModules    Category = "power_modules"
	CategoryCables          Category = "cables"
	CategoryOurDevelopments Category = "our_developments"
	CategoryDevBoards       Category = "dev_boards"
	CategoryRFModules       Category = "rf_modules"
	CategoryOthers          Category = "others"
	CategoryUnclassified    Category = "unclassified"

	// CategoryNonBOM строка вообще не является компонентом (старый путь обработки)
	CategoryNonBOM Category = "non_bom"
)

// OutputOrder порядок листов категорий в отчете
var OutputOrder = []Category{
	CategoryICs,
	CategoryResistors,
	CategoryCapacitors,
	CategoryInductors,
	CategorySemiconductors,
	CategoryConnectors,
	CategoryOptics,
	CategoryPowerModules,
	CategoryCables,
	CategoryOurDevelopments,
	CategoryDevBoards,
	CategoryRFModules,
	CategoryOthers,
	CategoryUnclassified,
}

var sheetNames = map[Category]string{
	CategoryICs:             "Микросхемы",
	CategoryResistors:       "Резисторы",
	CategoryCapacitors:      "Конденсаторы",
	CategoryInductors:       "Индуктивности",
	CategorySemiconductors:  "Полупроводники",
	CategoryConnectors:      "Разъемы",
	CategoryOptics:          "Оптические компоненты",
	CategoryPowerModules:    "Модули питания",
	CategoryCables:          "Кабели",
	CategoryOurDevelopments: "Наши разработки",
	CategoryDevBoards:       "Отладочные платы",
	CategoryRFModules:       "СВЧ модули",
	CategoryOthers:          "Другие",
	CategoryUnclassified:    "Не распределено",
}

// SheetName возвращает русское название листа для категории
func (c Category) SheetName() string {
	if name, ok := sheetNames[c]; ok {
		return name
	}
	return string(c)
}

// Known проверяет, что категория входит в закрытый набор
func (c Category) Known() bool {
	_, ok := sheetNames[c]
	return ok || c == CategoryNonBOM
}

// IsEmpty категория отсутствует (пустая или из пробелов)
func (c Category) IsEmpty() bool {
	return strings.TrimSpace(string(c)) == ""
}

// ParseCategory приводит строку к ключу категории.
// Принимает как ключ ("resistors"), так и название листа ("Резисторы").
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	c := Category(strings.ToLower(s))
	if c.Known() {
		return c, true
	}
	return CategoryFromSheet(s)
}

// CategoryFromSheet обратное отображение: название листа -> категория
func CategoryFromSheet(sheet string) (Category, bool) {
	sheet = strings.TrimSpace(sheet)
	for c, name := range sheetNames {
		if name == sheet {
			return c, true
		}
	}
	return "", false
}
