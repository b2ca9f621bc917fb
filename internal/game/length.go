package game

import (
	"strconv"
	"strings"
)

// ParseLength reads the requested path length from free-form input.
//
// Like a browser's parseInt, only the leading integer is used ("12abc" is
// 12). Missing, non-numeric, zero or negative input gives def. Values above
// limit are clamped to limit when limit > 0.
func ParseLength(raw string, def, limit int) int {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return def
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// Only overflow gets here; the prefix is all digits.
		if s[0] == '-' {
			return def
		}
		n = limit
	}
	if n <= 0 {
		return def
	}
	if limit > 0 && n > limit {
		return limit
	}
	return n
}
