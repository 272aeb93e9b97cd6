package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/emojiprep/internal/domain"
)

func TestLoad_KeepsOrderAndIgnoresExtraFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emojis.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "emojis": [
    {"name": "Grinning Face", "emoji": "😀", "category": "Smileys & Emotion (face-smiling)", "order": 1},
    {"name": "Thumbs Up: Dark Skin Tone", "emoji": "👍🏿", "category": "People & Body"}
  ]
}`), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []domain.EmojiRecord{
		{Name: "Grinning Face", Glyph: "😀", Category: "Smileys & Emotion (face-smiling)"},
		{Name: "Thumbs Up: Dark Skin Tone", Glyph: "👍🏿", Category: "People & Body"},
	}, got)
}

func TestDecode_EmptyNameIsInvalid(t *testing.T) {
	_, err := Decode("x.json", []byte(`{"emojis":[{"name":"ok"},{"name":"  "}]}`))
	require.Error(t, err)
	assert.True(t, IsInvalid(err))

	var ie *InvalidError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 1, ie.Index)
}

func TestDecode_BrokenJSON(t *testing.T) {
	_, err := Decode("x.json", []byte(`{`))
	assert.True(t, IsInvalid(err))
}

func TestDecode_MissingEmojisField(t *testing.T) {
	_, err := Decode("x.json", []byte(`{"other":[]}`))
	assert.True(t, IsInvalid(err))
}

func TestLoad_MissingFileIsNotInvalid(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.False(t, IsInvalid(err))
	assert.True(t, os.IsNotExist(err))
}

func TestWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "emojis.json")
	recs := []domain.EmojiRecord{{Name: "Red Heart", Glyph: "❤️", Category: "Smileys & Emotion"}}

	require.NoError(t, Write(path, recs))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, recs, got)
}
