package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/emojiprep/internal/domain"
)

type fakeShortcodes map[string]string

func (f fakeShortcodes) Shortcode(glyph string) (string, bool) {
	s, ok := f[glyph]
	return s, ok
}

func TestMatch_DirectPass(t *testing.T) {
	m := New([]domain.EmojiRecord{{Name: "Grinning Face", Glyph: "😀", Category: "Smileys"}})

	got, ok := m.Match("grinning-face")
	require.True(t, ok)
	assert.Equal(t, "😀", got.Alt)
	assert.Equal(t, "Smileys", got.Category)
	assert.Equal(t, "grinning-face", got.Filename)
	assert.Equal(t, "grinning-face", got.Name)
	assert.Equal(t, domain.PassDirect, got.Pass)
	assert.Equal(t, "Grinning Face", got.Source.Name)
}

func TestMatch_ModifierPassAfterDirectFails(t *testing.T) {
	// 数据集名称里带 ',' ：direct 归一化会把 "Tone, Dark" 粘成 "tonedark"，
	// 只有 modifier 轮按 ',' 拆开后才能和文件名对上。
	m := New([]domain.EmojiRecord{
		{Name: "Handshake: Light Skin Tone,Dark Skin Tone", Glyph: "🫱🏻‍🫲🏿", Category: "People"},
	})

	got, ok := m.Match("handshake-light-skin-tone-dark-skin-tone")
	require.True(t, ok)
	assert.Equal(t, "🫱🏻‍🫲🏿", got.Alt)
	assert.Equal(t, domain.PassModifier, got.Pass)
}

func TestMatch_ModifierRecord(t *testing.T) {
	m := New([]domain.EmojiRecord{{Name: "Thumbs Up: Dark Skin Tone", Glyph: "👍🏿", Category: "People"}})

	got, ok := m.Match("thumbs-up-dark-skin-tone")
	require.True(t, ok)
	assert.Equal(t, "👍🏿", got.Alt)
}

func TestMatchAll_UnmatchedExactlyOnce(t *testing.T) {
	m := New([]domain.EmojiRecord{{Name: "Grinning Face", Glyph: "😀", Category: "Smileys"}})

	matched, unmatched := m.MatchAll([]string{"Grinning Face", "no-such-emoji"})
	require.Len(t, matched, 1)
	assert.Equal(t, []string{"no-such-emoji"}, unmatched)
	for _, r := range matched {
		assert.NotEqual(t, "no-such-emoji", r.Name)
	}
}

func TestMatchAll_DatasetOrderTieBreak(t *testing.T) {
	m := New([]domain.EmojiRecord{
		{Name: "Red Heart", Glyph: "first", Category: "A"},
		{Name: "red-heart", Glyph: "second", Category: "B"},
	})

	matched, _ := m.MatchAll([]string{"red heart"})
	require.Len(t, matched, 1)
	assert.Equal(t, "first", matched[0].Alt)
}

func TestMatchAll_ShortCircuitPerImage(t *testing.T) {
	// "Thumbs Up: Dark Skin Tone" 既能 direct 命中（':' 被删掉），也能 modifier 命中。
	m := New([]domain.EmojiRecord{{Name: "Thumbs Up: Dark Skin Tone", Glyph: "👍🏿", Category: "People"}})

	matched, unmatched := m.MatchAll([]string{"thumbs-up-dark-skin-tone"})
	require.Len(t, matched, 1)
	assert.Equal(t, domain.PassDirect, matched[0].Pass)
	assert.Empty(t, unmatched)
}

func TestMatchAll_LegacyDoubleMatch(t *testing.T) {
	m := New([]domain.EmojiRecord{
		{Name: "Thumbs Up: Dark Skin Tone", Glyph: "👍🏿", Category: "People"},
		{Name: "Grinning Face", Glyph: "😀", Category: "Smileys"},
	}, WithLegacyDoubleMatch())

	matched, unmatched := m.MatchAll([]string{"thumbs-up-dark-skin-tone", "grinning-face", "nope"})
	require.Len(t, matched, 3)
	// direct 结果在前（按图片顺序），modifier 结果在后。
	assert.Equal(t, domain.PassDirect, matched[0].Pass)
	assert.Equal(t, "thumbs-up-dark-skin-tone", matched[0].Name)
	assert.Equal(t, "grinning-face", matched[1].Name)
	assert.Equal(t, domain.PassModifier, matched[2].Pass)
	assert.Equal(t, "thumbs-up-dark-skin-tone", matched[2].Name)
	assert.Equal(t, []string{"nope"}, unmatched)
}

func TestMatchAll_SlugCollisionKeepsBoth(t *testing.T) {
	m := New([]domain.EmojiRecord{{Name: "Grinning Face", Glyph: "😀", Category: "Smileys"}})

	matched, _ := m.MatchAll([]string{"Grinning Face", "grinning_face", "grinning-face"})
	require.Len(t, matched, 2)
	assert.Equal(t, matched[0].Filename, matched[1].Filename)
	assert.NotEqual(t, matched[0].Name, matched[1].Name)
}

func TestMatch_EmptySlugNeverMatches(t *testing.T) {
	m := New([]domain.EmojiRecord{{Name: "日本", Glyph: "🗾", Category: "Travel"}})

	_, ok := m.Match("国")
	assert.False(t, ok)
}

func TestMatch_WithShortcodes(t *testing.T) {
	m := New(
		[]domain.EmojiRecord{{Name: "Grinning Face", Glyph: "😀", Category: "Smileys"}},
		WithShortcodes(fakeShortcodes{"😀": ":grinning:"}),
	)

	got, ok := m.Match("grinning-face")
	require.True(t, ok)
	assert.Equal(t, ":grinning:", got.Shortcode)
}
