package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talkbot/internal/config"
)

const sample = `A chatbot is a program that talks with people. It answers questions in plain language.
Many chatbots follow simple rules. Others learn from large amounts of text.`

func TestParse_SplitsSentences(t *testing.T) {
	c, err := Parse(sample)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"A chatbot is a program that talks with people.",
		"It answers questions in plain language.",
		"Many chatbots follow simple rules.",
		"Others learn from large amounts of text.",
	}, c.Sentences())
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse("   \n\t ")
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestFallback_SubstringMatch(t *testing.T) {
	c, err := Parse(sample)
	require.NoError(t, err)

	assert.Equal(t, "Many chatbots follow simple rules.", c.Fallback("SIMPLE RULES"))
	assert.Equal(t, "It answers questions in plain language.", c.Fallback("questions"))
}

// The earliest containing sentence is returned, not the best one.
func TestFallback_FirstInOrder(t *testing.T) {
	c, err := Parse(sample)
	require.NoError(t, err)

	assert.Equal(t, "A chatbot is a program that talks with people.", c.Fallback("chatbot"))
}

func TestFallback_NoMatchReturnsCorpusSentence(t *testing.T) {
	c, err := Parse(sample)
	require.NoError(t, err)

	all := c.Sentences()
	for i := 0; i < 50; i++ {
		assert.Contains(t, all, c.Fallback("zebra crossing"))
	}
}

func TestFallback_PickerSelectsSentence(t *testing.T) {
	c, err := Parse(sample, WithPicker(func(n int) int { return n - 1 }))
	require.NoError(t, err)

	assert.Equal(t, "Others learn from large amounts of text.", c.Fallback("zebra crossing"))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chatbot.txt")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Len())

	_, err = Load(filepath.Join(dir, "missing.txt"))
	assert.True(t, config.IsKind(err, config.KindNotFound), "got %v", err)

	blank := filepath.Join(dir, "blank.txt")
	require.NoError(t, os.WriteFile(blank, []byte("\n\n"), 0o644))
	_, err = Load(blank)
	assert.True(t, config.IsKind(err, config.KindInvalidConfig), "got %v", err)
	assert.ErrorIs(t, err, ErrEmpty)
}
