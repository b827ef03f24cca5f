package util

import (
	"strconv"
	"strings"
)

// FormatNumber renders n with thousands separators, 1234567 -> "1,234,567".
func FormatNumber(n uint64) string {
	in := strconv.FormatUint(n, 10)
	out := make([]string, 0, len(in)+(len(in)-1)/3)

	for i, c := range in {
		if i > 0 && (len(in)-i)%3 == 0 {
			out = append(out, ",")
		}

		out = append(out, string(c))
	}

	return strings.Join(out, "")
}
