package probability

import (
	"strconv"
	"strings"
)

// ParseWeight reads the magnitude out of an impact descriptor such as "+8%".
// Every character other than 0-9 is dropped before parsing, so "-12%" gives 12
// and "8.5%" gives 85. Descriptors without digits, or with more digits than
// fit an int, yield def.
func ParseWeight(impact string, def int) int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, impact)
	if digits == "" {
		return def
	}
	v, err := strconv.Atoi(digits)
	if err != nil {
		return def
	}
	return v
}
