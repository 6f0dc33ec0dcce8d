package prompt

import (
	"fmt"
	"math"
	"strings"
)

const unknown = "정보 없음"

// deviation returns (value-baseline)/baseline*100, or false when either
// side is missing or zero.
func deviation(value, baseline float64) (float64, bool) {
	if value == 0 || baseline == 0 || math.IsNaN(value) || math.IsNaN(baseline) {
		return 0, false
	}
	return (value - baseline) / baseline * 100, true
}

// compareClause renders "(섹터 평균: 28.4% → +12.3%)" or "" when the
// deviation is undefined. avgFormat formats the baseline.
func compareClause(label string, value, baseline float64, avgFormat string) string {
	d, ok := deviation(value, baseline)
	if !ok {
		return ""
	}
	return fmt.Sprintf(" (%s 평균: %s → %s%%)", label, fmt.Sprintf(avgFormat, baseline), signed(d, 1))
}

// signed formats v with an explicit plus sign for positive values.
func signed(v float64, decimals int) string {
	s := fmt.Sprintf("%.*f", decimals, v)
	if v > 0 {
		return "+" + s
	}
	return s
}

// higherLower phrases the direction of a deviation.
func higherLower(value, baseline float64) string {
	d, ok := deviation(value, baseline)
	switch {
	case !ok:
		return "비교할 수 없습니다"
	case d > 0:
		return "높습니다"
	default:
		return "낮습니다"
	}
}

// formatMarketCap renders a market cap given in USD billions.
func formatMarketCap(billions float64) string {
	switch {
	case billions <= 0:
		return unknown
	case billions >= 1000:
		return fmt.Sprintf("$%.2f조 달러", billions/1000)
	case billions >= 1:
		return fmt.Sprintf("$%.2f십억 달러", billions)
	default:
		return fmt.Sprintf("$%.2f백만 달러", billions*1000)
	}
}

// formatAUM renders assets under management given in USD millions.
func formatAUM(millions float64) string {
	if millions <= 0 {
		return unknown
	}
	return fmt.Sprintf("$%.2fB", millions/1000)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknown
	}
	return s
}

func numberOrUnknown(v float64, format string) string {
	if v == 0 {
		return unknown
	}
	return fmt.Sprintf(format, v)
}
