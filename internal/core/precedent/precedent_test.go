package precedent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/vynda/internal/core/model"
)

func TestHue(t *testing.T) {
	assert.Equal(t, 210, Hue(""))
	assert.Equal(t, 97, Hue("a"))
	assert.Equal(t, 234, Hue("abc"))
	assert.Equal(t, 307, Hue("M-1897"))
	assert.Equal(t, 325, Hue("M-2041"))

	// hashed over UTF-16 code units, including surrogate pairs
	assert.Equal(t, 233, Hue("é"))
	assert.Equal(t, 259, Hue("😀"))
	assert.Equal(t, 132, Hue("Ünal-ä"))

	long := "M-this-id-is-long-enough-to-overflow-thirty-two-bits-many-times"
	assert.Equal(t, Hue(long), Hue(long))
	assert.GreaterOrEqual(t, Hue(long), 0)
	assert.Less(t, Hue(long), 360)
}

func TestColor(t *testing.T) {
	assert.Equal(t, "hsl(97, 70%, 60%)", Color("a"))
	assert.Equal(t, "hsl(210, 70%, 60%)", Color(""))
	assert.Equal(t, "hsla(97, 70%, 60%, 0.1)", Background("a", 0.1))
	assert.Equal(t, "hsla(210, 70%, 60%, 0.25)", Background("", 0.25))
}

func TestCards(t *testing.T) {
	cards := Cards([]model.MemoryCase{{ID: "M-1897", Outcome: "Overturned"}, {ID: "M-2041"}})
	require.Len(t, cards, 2)
	assert.Equal(t, "Overturned", cards[0].Outcome)
	assert.Equal(t, "hsl(307, 70%, 60%)", cards[0].Color)
	assert.Equal(t, "hsla(325, 70%, 60%, 0.1)", cards[1].Background)
}
