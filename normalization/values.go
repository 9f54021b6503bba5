package normalization

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"bomsplit/model"
)

// unitPattern единица измерения номинала и ее множитель к базовой единице СИ
type unitPattern struct {
	re         *regexp.Regexp
	multiplier decimal.Decimal
}

func newUnitPattern(unit string, exp int32) unitPattern {
	return unitPattern{
		re:         regexp.MustCompile(`[-\s](\d+(?:[.,]\d+)?)\s*` + unit),
		multiplier: decimal.New(1, exp),
	}
}

// Порядок важен: более длинные единицы раньше коротких
var (
	resistorUnits = []unitPattern{
		newUnitPattern(`мом`, 6),
		newUnitPattern(`mω`, 6),
		newUnitPattern(`ком`, 3),
		newUnitPattern(`kω`, 3),
		newUnitPattern(`ом`, 0),
		newUnitPattern(`ω`, 0),
		newUnitPattern(`ohm`, 0),
	}
	capacitorUnits = []unitPattern{
		newUnitPattern(`мф`, -3),
		newUnitPattern(`mf`, -3),
		newUnitPattern(`мкф`, -6),
		newUnitPattern(`[uμµ]f`, -6),
		newUnitPattern(`нф`, -9),
		newUnitPattern(`nf`, -9),
		newUnitPattern(`пф`, -12),
		newUnitPattern(`pf`, -12),
	}
	inductorUnits = []unitPattern{
		newUnitPattern(`гн`, 0),
		newUnitPattern(`h\b`, 0),
		newUnitPattern(`мгн`, -3),
		newUnitPattern(`mh`, -3),
		newUnitPattern(`мкгн`, -6),
		newUnitPattern(`[uμµ]h`, -6),
		newUnitPattern(`нгн`, -9),
		newUnitPattern(`nh`, -9),
	}
)

var (
	// Явная единица измерения отключает разбор SMD-кода
	resistorUnitToken  = regexp.MustCompile(`ком|мом|ом|kohm|mohm|ohm`)
	capacitorUnitToken = regexp.MustCompile(`пф|нф|мкф|мф|pf|nf|uf|mf`)
	inductorUnitToken  = regexp.MustCompile(`гн|мгн|мкгн|нгн|h\b|mh|uh|nh`)

	// SMD-код: отдельно стоящие цифры, не после дефиса или запятой
	smdCode3 = regexp.MustCompile(`(?:^|\s)(\d\d)(\d)(?:\s|$)`)
	smdCode4 = regexp.MustCompile(`(?:^|\s)(\d\d\d)(\d)(?:\s|$)`)
)

// ExtractNominalValue извлекает номинал в базовых единицах (Ом, Ф, Гн).
// ok=false означает, что номинал не найден; это не то же самое, что ноль.
func ExtractNominalValue(text string, category model.Category) (float64, bool) {
	if strings.TrimSpace(text) == "" {
		return 0, false
	}
	lower := strings.ToLower(text)

	var (
		units    []unitPattern
		token    *regexp.Regexp
		smdScale decimal.Decimal
		allow4   bool
	)
	switch category {
	case model.CategoryResistors:
		units, token, smdScale, allow4 = resistorUnits, resistorUnitToken, decimal.New(1, 0), true
	case model.CategoryCapacitors:
		units, token, smdScale = capacitorUnits, capacitorUnitToken, decimal.New(1, -12)
	case model.CategoryInductors:
		units, token, smdScale = inductorUnits, inductorUnitToken, decimal.New(1, -9)
	default:
		return 0, false
	}

	if !token.MatchString(lower) {
		if v, ok := parseSMDCode(lower, allow4); ok {
			return v.Mul(smdScale).InexactFloat64(), true
		}
	}

	for _, u := range units {
		m := u.re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		v, err := decimal.NewFromString(strings.Replace(m[1], ",", ".", 1))
		if err != nil {
			continue
		}
		return v.Mul(u.multiplier).InexactFloat64(), true
	}
	return 0, false
}

// parseSMDCode разбирает код вида XYZ = XY * 10^Z (и WXYZ для резисторов)
func parseSMDCode(text string, allow4 bool) (decimal.Decimal, bool) {
	patterns := []*regexp.Regexp{smdCode3}
	if allow4 {
		patterns = append(patterns, smdCode4)
	}
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		mantissa, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		exp, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		return decimal.New(mantissa, int32(exp)), true
	}
	return decimal.Decimal{}, false
}
