package classification

import (
	"strings"
	"unicode/utf8"

	"bomsplit/model"
	"bomsplit/normalization"
)

// Rule одно правило каскада.
// Decide возвращает пустую категорию, если правило не сработало.
type Rule struct {
	Name   string
	Loose  bool // Широкое правило, в строгом режиме пропускается
	Decide func(c *Context) model.Category
}

// Tier упорядоченный набор правил одного уровня
type Tier struct {
	Name  string
	Rules []Rule
}

// when правило "условие -> категория"
func when(name string, match func(c *Context) bool, category model.Category) Rule {
	return Rule{
		Name: name,
		Decide: func(c *Context) model.Category {
			if match(c) {
				return category
			}
			return ""
		},
	}
}

// keywords правило по словарю в общем тексте записи
func keywords(name string, words []string, category model.Category) Rule {
	return when(name, func(c *Context) bool { return c.Has(words) }, category)
}

// tokenSet словарь, разделенный на значимые слова и короткие обрывки.
// Обрывки вроде "rf ", "din", "eval" в строгом режиме не учитываются.
type tokenSet struct {
	strong []string
	weak   []string
}

func splitTokens(words []string) tokenSet {
	var ts tokenSet
	for _, w := range words {
		if utf8.RuneCountInString(strings.TrimSpace(w)) <= 4 {
			ts.weak = append(ts.weak, w)
		} else {
			ts.strong = append(ts.strong, w)
		}
	}
	return ts
}

func (ts tokenSet) match(c *Context) bool {
	if c.Has(ts.strong) {
		return true
	}
	return !c.In.Strict && c.Has(ts.weak)
}

func tokens(name string, ts tokenSet, category model.Category) Rule {
	return when(name, ts.match, category)
}

func prefixIn(prefixes ...string) func(c *Context) bool {
	return func(c *Context) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(c.Prefix, p) {
				return true
			}
		}
		return false
	}
}

var (
	connectorTokens = splitTokens(connectorWords)
	devBoardTokens  = splitTokens(devBoardKeywords)
	opticsTokens    = splitTokens(opticsKeywords)
	rfTokens        = splitTokens(rfKeywords)
)

// selfReferenceTier уровень 0: наименование ссылается на собственный документ
var selfReferenceTier = Tier{
	Name: "self_reference",
	Rules: []Rule{
		when("self_reference", isSelfReference, model.CategoryOurDevelopments),
	},
}

// contextTier уровень 1: контекстные переопределения, важнее общих правил
var contextTier = Tier{
	Name: "context",
	Rules: []Rule{
		when("in_house_marker", func(c *Context) bool {
			return c.Has(inHouseMarkers) && !c.Has(explicitTypeWords)
		}, model.CategoryOurDevelopments),
		when("adapter", func(c *Context) bool {
			return c.Has(adapterWords) && !c.Has(fiberAdapterMarker)
		}, model.CategoryConnectors),
		when("qfa_attenuator", isQFAAttenuator, model.CategoryOthers),
		when("rf_attenuator_vendor", func(c *Context) bool {
			if !c.Has(rfPassiveWords) || c.Has(opticalMarkers) {
				return false
			}
			return c.Has(rfVendors) || c.Has(rfModelMarkers)
		}, model.CategoryRFModules),
		keywords("rittal", []string{"rittal"}, model.CategoryOthers),
		keywords("matched_load", matchedLoadWords, model.CategoryRFModules),
		keywords("circulator", circulatorWords, model.CategoryInductors),
		when("dev_board_vendor", func(c *Context) bool {
			return c.Has(devBoardWords) && c.Has(devBoardVendors)
		}, model.CategoryDevBoards),
		keywords("optical", broadOpticalWords, model.CategoryOptics),
	},
}

// prefixTier уровень 2: позиционное обозначение
var prefixTier = Tier{
	Name: "reference_prefix",
	Rules: []Rule{
		when("prefix_r", prefixIn("R"), model.CategoryResistors),
		when("prefix_c", prefixIn("C"), model.CategoryCapacitors),
		when("prefix_l", prefixIn("L"), model.CategoryInductors),
		when("prefix_u_optical", func(c *Context) bool {
			return prefixIn("U")(c) && c.Has(opticalModuleWords)
		}, model.CategoryOptics),
		when("prefix_ic", prefixIn("U", "DD", "DA", "IC"), model.CategoryICs),
		when("prefix_connector", prefixIn("J", "X", "P", "K", "XS", "XP", "JTAG"), model.CategoryConnectors),
		when("prefix_a", func(c *Context) bool { return c.Prefix == "A" }, model.CategoryDevBoards),
		{
			Name: "prefix_a_attenuator",
			Decide: func(c *Context) model.Category {
				if !strings.HasPrefix(c.Prefix, "A") || utf8.RuneCountInString(c.Prefix) <= 2 || !c.Has(attenuatorWords) {
					return ""
				}
				if c.Has(opticalMarkers) {
					return model.CategoryOptics
				}
				return model.CategoryDevBoards
			},
		},
		when("prefix_w_rf", func(c *Context) bool {
			return prefixIn("W")(c) && c.Has(rfPrefixWords)
		}, model.CategoryRFModules),
		when("prefix_ws_wu", prefixIn("WS", "WU"), model.CategoryRFModules),
		when("prefix_h", prefixIn("H"), model.CategorySemiconductors),
		{
			Name: "prefix_v_d",
			Decide: func(c *Context) model.Category {
				if !prefixIn("V", "Q", "D")(c) {
					return ""
				}
				if c.Has(icWords) {
					return model.CategoryICs
				}
				return model.CategorySemiconductors
			},
		},
		when("prefix_s_switch", func(c *Context) bool {
			return prefixIn("S")(c) && c.Has(switchWords)
		}, model.CategoryOthers),
	},
}

// fallbackTier уровень 3: номиналы и словари
var fallbackTier = Tier{
	Name: "fallback",
	Rules: []Rule{
		when("resistor_value", func(c *Context) bool {
			return resistorValueRe.MatchString(c.Blob) || c.Has(resistorWords)
		}, model.CategoryResistors),
		when("capacitor_value", func(c *Context) bool {
			return (capacitorValueRe.MatchString(c.Blob) || c.Has(capacitorWords)) && !c.Has(powerDivider)
		}, model.CategoryCapacitors),
		when("inductor_value", func(c *Context) bool {
			return inductorValueRe.MatchString(c.Blob) || c.Has(inductorWords)
		}, model.CategoryInductors),
		keywords("fuse", fuseWords, model.CategoryOthers),
		keywords("semiconductor", semiconductorWords, model.CategorySemiconductors),
		keywords("ic", icKeywords, model.CategoryICs),
		tokens("connector", connectorTokens, model.CategoryConnectors),
		tokens("dev_board", devBoardTokens, model.CategoryDevBoards),
		tokens("optics", opticsTokens, model.CategoryOptics),
		{
			Name: "rf",
			Decide: func(c *Context) model.Category {
				if !rfTokens.match(c) {
					return ""
				}
				if isQFAAttenuator(c) {
					return model.CategoryOthers
				}
				return model.CategoryRFModules
			},
		},
		keywords("cable", cableKeywords, model.CategoryCables),
		keywords("power_module", powerKeywords, model.CategoryPowerModules),
		keywords("in_house", inHouseMarkers, model.CategoryOurDevelopments),
		{
			Name:  "others",
			Loose: true,
			Decide: func(c *Context) model.Category {
				if c.Has(othersKeywords) {
					return model.CategoryOthers
				}
				return ""
			},
		},
	},
}

// isQFAAttenuator аттенюатор Qualwave QFA, если рядом не упомянут делитель QPD
func isQFAAttenuator(c *Context) bool {
	return c.Has(qfaWords) && !c.Has(qpdWords)
}

// isSelfReference наименование совпадает с именем собственного файла
func isSelfReference(c *Context) bool {
	if c.FileBase == "" || c.Desc == "" || normalization.HasAny(c.Desc, componentKeywords) {
		return false
	}
	desc := strings.NewReplacer(".xlsx", "", ".xls", "").Replace(c.Desc)
	if !strings.Contains(desc, c.FileBase) {
		return false
	}
	squash := strings.NewReplacer(" ", "", "_", "")
	return strings.Contains(squash.Replace(desc), squash.Replace(c.FileBase))
}

// groupTypeHint категория по заголовку группы, если она согласуется с обозначением
func groupTypeHint(c *Context) model.Category {
	if c.GroupType == "" {
		return ""
	}
	for _, hint := range groupTypeHints {
		if !strings.Contains(c.GroupType, hint.word) {
			continue
		}
		if c.Prefix == "" {
			return hint.category
		}
		for _, p := range hint.prefixes {
			if strings.HasPrefix(c.Prefix, p) {
				return hint.category
			}
		}
		return ""
	}
	return ""
}
