package ingest

import (
	"regexp"
	"strconv"
	"strings"
)

// referenceRangeRegex диапазон позиционных обозначений: R1-R6, FU1-FU6, C3-5
var referenceRangeRegex = regexp.MustCompile(`^([A-Za-z]+)(\d+)\s*[-–—]\s*([A-Za-z]+)?(\d+)`)

// CountFromReference подсчитывает количество элементов по позиционному обозначению.
//
//	R1          -> 1
//	R1, R2      -> 2
//	FU1-FU6     -> 6
//	C1, C3-C5   -> 4
//
// Пустое обозначение дает 1. Диапазон с разными префиксами или в обратном
// порядке считается за два элемента.
func CountFromReference(ref string) int {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 1
	}

	total := 0
	for _, part := range strings.Split(ref, ",") {
		part = strings.TrimSpace(part)
		m := referenceRangeRegex.FindStringSubmatch(part)
		if m == nil {
			total++
			continue
		}

		from, _ := strconv.Atoi(m[2])
		to, _ := strconv.Atoi(m[4])
		secondPrefix := m[3]
		if secondPrefix == "" {
			secondPrefix = m[1]
		}
		if secondPrefix == m[1] && to >= from {
			total += to - from + 1
		} else {
			total += 2
		}
	}

	return max(total, 1)
}
