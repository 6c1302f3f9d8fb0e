package services

import (
	"fmt"
	"sort"
	"strings"
)

// FormatCurrency formats an amount with thousands separators and exactly two
// decimal places, e.g. 1234567.8 → "1,234,567.80".
func FormatCurrency(amount float64) string {
	negative := false
	if amount < 0 {
		negative = true
		amount = -amount
	}

	raw := fmt.Sprintf("%.2f", amount)

	parts := strings.SplitN(raw, ".", 2)
	intPart := parts[0]
	decPart := parts[1]

	result := applyThousandsGrouping(intPart) + "." + decPart
	if negative && result != "0.00" {
		result = "-" + result
	}
	return result
}

// applyThousandsGrouping inserts commas every 3 digits from the right.
func applyThousandsGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatParams renders a parameter bag as "key=value" pairs in sorted key
// order, for display in exports.
func FormatParams(p Params) string {
	if len(p) == 0 {
		return ""
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%s=%v", k, p[k])
	}
	return strings.Join(pairs, ", ")
}
