// Package precedent decorates memory cases for display as cards.
package precedent

import (
	"fmt"
	"strconv"
	"unicode/utf16"

	"github.com/agenthands/vynda/internal/core/model"
)

const fallbackHue = 210

// Hue hashes the UTF-16 code units of id onto the colour wheel, matching the
// colours browsers computed for the same ids. The hash wraps at 32 bits.
func Hue(id string) int {
	if id == "" {
		return fallbackHue
	}
	var hash int32
	for _, c := range utf16.Encode([]rune(id)) {
		hash = int32(c) + ((hash << 5) - hash)
	}
	hue := int(hash % 360)
	if hue < 0 {
		hue = -hue
	}
	return hue
}

func Color(id string) string {
	return fmt.Sprintf("hsl(%d, 70%%, 60%%)", Hue(id))
}

func Background(id string, opacity float64) string {
	return fmt.Sprintf("hsla(%d, 70%%, 60%%, %s)", Hue(id), strconv.FormatFloat(opacity, 'f', -1, 64))
}

type Card struct {
	model.MemoryCase
	Color      string `json:"color"`
	Background string `json:"background"`
}

func Cards(cases []model.MemoryCase) []Card {
	cards := make([]Card, 0, len(cases))
	for _, c := range cases {
		cards = append(cards, Card{
			MemoryCase: c,
			Color:      Color(c.ID),
			Background: Background(c.ID, 0.1),
		})
	}
	return cards
}
