package classification

import (
	"regexp"

	"bomsplit/model"
)

// Словари ключевых слов. Все слова в нижнем регистре, сравнение по подстроке.
var (
	// componentKeywords слова, по которым строка считается компонентом, а не ссылкой на свой документ
	componentKeywords = []string{
		"резистор", "конденсатор", "микросхема", "разъем", "диод", "индуктор", "дроссель",
		"транзистор", "стабилитрон", "генератор", "вилка", "розетка", "кабель",
	}

	// inHouseMarkers маркеры собственных разработок
	inHouseMarkers = []string{
		"амфи.", "амфи ", "мвок", "наша разработ", "собственной разработ",
		"шск-м", "плата контроллера шск", "плата преобразователя уровней",
	}

	// explicitTypeWords явный тип компонента важнее маркера собственной разработки
	explicitTypeWords = []string{
		"резистор", "конденсатор", "дроссель", "индуктивность", "микродроссель",
		"сердечник", "предохранитель",
	}

	adapterWords       = []string{"адаптер", "adapter"}
	fiberAdapterMarker = []string{"fc/", "sc/", "lc/", "оптическ", "optical", "fiber"}

	rfPassiveWords = []string{
		"аттенюатор", "attenuator", "делитель мощности", "делитель  мощности", "power divider",
		"ответвитель направленный", "ограничитель", "линия задержек",
	}
	opticalMarkers = []string{"оптич", "optical", "fc/apc", "fc/upc", "fiber"}
	rfVendors      = []string{
		"qualwave", "mini-circuits", "api technologies", "weinschel", "a-info", "gigabaudics",
		"quantic pmi", "quantic", "pmi", "jfw", "umcc",
	}
	rfModelMarkers = []string{"bw - ", "bw-", " vat - ", "vat-", "zx76", "zx60"}

	matchedLoadWords = []string{"нагрузка согласованная", "согласованная нагрузка", "matched load"}
	circulatorWords  = []string{
		"вентиль свч", "вентиль вч", "circulator", "isolator", "ферритов",
		"прибор фвк", "прибор фквн", "фвк3-", "фквн3-",
	}

	// qfaWords аттенюаторы Qualwave QFA; делители QPD того же производителя остаются СВЧ
	qfaWords = []string{"аттенюатор qfa", "qfa"}
	qpdWords = []string{"qpd"}

	devBoardWords = []string{
		"плата инструментальная", "evaluation board", "dev board", "отладочная плата", "плата 117212",
		"коммутатор", "nt1", "модуль связи",
	}
	devBoardVendors = []string{
		"qualwave", "api technologies", "weinschel", "hittite", "planet", "коммутатор",
		"ebyte", "chengdu ebyte", "nt1",
	}

	broadOpticalWords = []string{
		"оптическ", "optical", "оптоволок", "fiber optic", "fc/apc", "fc/upc", "sc/apc", "lc/apc",
		"mp2320", "mp2220", "мвол",
	}

	opticalModuleWords = []string{"оптический", "optical", "передающий", "приемный"}
	attenuatorWords    = []string{"аттенюат", "ослабител", "attenuator"}
	rfPrefixWords      = []string{
		"свч", "rf", "линия задержек", "delay line", "усилитель", "делитель", "сумматор",
		"splitter", "combiner", "amplifier",
	}
	icWords     = []string{"микросхем"}
	switchWords = []string{"переключ", "тумблер", "кнопка", "switch", "button", "toggle"}

	resistorWords  = []string{"резист", "resistor"}
	capacitorWords = []string{"конденс", "capacitor", "tantalum", "ceramic", "к10-", "к53-"}
	powerDivider   = []string{"делитель мощности", "делитель  мощности", "power divider"}
	inductorWords  = []string{"дросс", "индукт", "inductor", "ferrite", "феррит", "катушка", "choke", "вентиль"}
	fuseWords      = []string{"предохранитель", "fuse", "fuzetec"}

	semiconductorWords = []string{
		"диод", "стабилитрон", "транзистор", "оптрон", "оптопар", "2с630", "2т630", "индикатор",
		"led ", "svetodiod", "indicator", "transistor", "optocoupler", "thyristor", "тиристор",
		"mosfet", "igbt", "triac", "симистор", "полевой транзистор", "биполярный транзистор",
	}
	icKeywords = []string{
		"микросхем", " ic", "mcu", "контроллер", "процессор", "оп-амп", "op-amp", "opamp", "adc", "dac",
		"fpga", "asic", "драйвер ", "компаратор", "стабил", "регулятор", "transceiver", "sn74", "ti ",
		"stm32", "lmk", "ad9",
	}
	connectorWords = []string{
		"разъем", "разъём", "connector", "header", "socket", "rj45", "rj11", "sma", "bnc", "terminal",
		"клемм", "штырь", "pin header", "fpc", "ffc", "din", "dc jack", "barrel", "штекер", "вилка",
		"розетка", "d-sub", "harting",
	}
	devBoardKeywords = []string{
		"отладоч", " dev board", "evaluation", "eval", "nucleo", "arduino", "raspberry",
		"esp32", "stm32 nucleo", "breakout", "fmc", "carrier", "ultrazed", "microzed", "picozed",
		"zedboard", "zynq", "som ", "system on module", "voyager", "tinypilot", "плата инструментальная",
		"evaluation board", "development board", "отладочная плата", "aes-zu",
	}
	opticsKeywords = []string{
		"оптичес", "лазер", "оптопара", "led ", "светодиод", "fiber", "оптоволок", "sfp", "qsfp",
		"transceiver module", "аттенюат", "ослабител", "fc/apc", "fc/upc", "sc/apc", "lc/apc", "pigtail",
		"патч-корд оптич",
	}
	rfKeywords = []string{
		"свч", "вч ", "rf ", "microwave", "mini-circuits", "planar monolithics", "pmi", "ghz", "lna",
		"rf amp", "линия задержек", "delay line", "делитель мощности", "сумматор", "splitter", "combiner",
		"усилител", "polaris", "gigabaudics", "etl systems", "vat-", "zx60", "pne-l", "ответвитель",
		"coupler", "фазовращатель", "phase shifter", "детектор", "detector", "ограничитель", "limiter",
		"корректор ачх", "equalizer", "qpd", "power divider",
	}
	cableKeywords = []string{"кабель", "cable", "шлейф", "провод", "wire", "patch cord", "jumper"}
	powerKeywords = []string{
		"модуль питания", "power module", "dc-dc", "ac-dc", "buck", "boost", "источник питания",
		"блок питания", "psu", "converter", "электропитания", "мдм10", "мдм20", "мдм30", "мдм50",
		"мдм60", "мдм100", "мдм160", "мдм600", "маа20", "маа400", "маа600",
	}
	othersKeywords = []string{
		"rittal", "шкаф", "станция", "полка", "кронштейн", "ролик", "болт", "гайка", "шайба",
		"клавиатура", "моноблок", "кабель", "клеммная", "корпус", "шасси", "стеллаж", "стойка", "провод",
		"розетка", "вентилятор", "генератор", "предохранитель", "держател", "зажим", "fuzetec", "реле",
		"relay", "тумблер", "фильтр", "filter", "сетка защитная", "коммутатор", "switch", "переход",
		"adapter", "линия задержки", "delay line", "кварц", "quartz", "вставка плавкая",
	}
)

// Номиналы с единицами. Границы слова заданы явно, потому что \b в RE2 работает только с ASCII.
const (
	wordHead = `(?:^|[^\p{L}\p{N}_])`
	wordTail = `(?:[^\p{L}\p{N}_]|$)`
)

var (
	resistorValueRe = regexp.MustCompile(
		`(?i)` + wordHead + `\d+(?:[.,]\d+)?\s*(?:ом|ohm|k\s*ohm|kohm|к\s*ом|ком|m\s*ohm|mohm|м\s*ом|мом)` + wordTail,
	)
	capacitorValueRe = regexp.MustCompile(
		`(?i)` + wordHead + `\d+(?:[.,]\d+)?\s*(?:pf|nf|uf|µf|μf|ф|пф|нф|мкф)` + wordTail,
	)
	inductorValueRe = regexp.MustCompile(
		`(?i)` + wordHead + `\d+(?:[.,]\d+)?\s*(?:nh|uh|µh|μh|mh|h|нгн|мкгн|мгн|гн)` + wordTail,
	)
)

// groupTypeHints тип из заголовка группы и согласованные с ним префиксы обозначений
var groupTypeHints = []struct {
	word     string
	prefixes []string
	category model.Category
}{
	{"резистор", []string{"R"}, model.CategoryResistors},
	{"конденсатор", []string{"C"}, model.CategoryCapacitors},
	{"микросхем", []string{"DA", "DD", "U", "IC"}, model.CategoryICs},
	{"дроссел", []string{"L"}, model.CategoryInductors},
	{"индуктивност", []string{"L"}, model.CategoryInductors},
	{"разъем", []string{"X", "J", "P"}, model.CategoryConnectors},
	{"разъём", []string{"X", "J", "P"}, model.CategoryConnectors},
}
