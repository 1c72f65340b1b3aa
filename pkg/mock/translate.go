package mock

import (
	"strings"
	"unicode"
)

// ToNativeName translates a consumer-facing operation identifier into the
// library's native snake_case call identifier. RPC-style names translate
// predictably (GetMetricData → get_metric_data); identifiers that are
// already snake_case pass through unchanged, so configurations may use
// either convention for the same operation.
func ToNativeName(operation string) string {
	var b strings.Builder
	b.Grow(len(operation) + 4)

	runes := []rune(operation)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if i > 0 && (prevLower || nextLower) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}
