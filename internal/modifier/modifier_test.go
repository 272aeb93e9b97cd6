package modifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/emojiprep/internal/domain"
)

func TestParse_NoColon(t *testing.T) {
	_, ok := Parse("Thumbs Up")
	assert.False(t, ok)
}

func TestParse_TwoModifiersInOrder(t *testing.T) {
	got, ok := Parse("Thumbs Up: Light Skin Tone, Medium Skin Tone")
	require.True(t, ok)
	assert.Equal(t, domain.ParsedName{
		Base:      "Thumbs Up",
		Modifiers: []string{"Light Skin Tone", "Medium Skin Tone"},
	}, got)
}

func TestParse_DanglingColon(t *testing.T) {
	for _, in := range []string{"Thumbs Up:", "Thumbs Up:   ", "Thumbs Up: , ,"} {
		_, ok := Parse(in)
		assert.False(t, ok, "input %q", in)
	}
}

func TestParse_OnlyFirstColonSplits(t *testing.T) {
	got, ok := Parse("Keycap: 1: extra")
	require.True(t, ok)
	assert.Equal(t, "Keycap", got.Base)
	assert.Equal(t, []string{"1: extra"}, got.Modifiers)
	assert.Equal(t, "Keycap 1: extra", got.Compound())
}

func TestParse_StrayCommaDropped(t *testing.T) {
	got, ok := Parse("Woman: Beard, , Dark Skin Tone")
	require.True(t, ok)
	assert.Equal(t, []string{"Beard", "Dark Skin Tone"}, got.Modifiers)
}
