package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talkbot/internal/corpus"
	"talkbot/internal/rules"
)

type spyRules struct {
	reply string
	calls int
}

func (s *spyRules) Respond(string) string {
	s.calls++
	return s.reply
}

type spyCorpus struct {
	reply string
	calls int
}

func (s *spyCorpus) Fallback(string) string {
	s.calls++
	return s.reply
}

const text = `The library opens at nine. Books can be borrowed for two weeks. Late returns cost a small fee.`

func newBot(t *testing.T) (*Bot, *corpus.Corpus) {
	t.Helper()
	c, err := corpus.Parse(text)
	require.NoError(t, err)
	return NewBot(rules.Default(), c), c
}

// Blank input never reaches the rules or the corpus.
func TestReply_BlankInput(t *testing.T) {
	r := &spyRules{reply: "rule"}
	c := &spyCorpus{reply: "corpus"}
	b := NewBot(r, c)

	for _, in := range []string{"", " ", "\t\n  "} {
		assert.Equal(t, NotCaught, b.Reply(in))
	}
	assert.Zero(t, r.calls)
	assert.Zero(t, c.calls)
}

func TestReply_RuleWins(t *testing.T) {
	r := &spyRules{reply: "rule"}
	c := &spyCorpus{reply: "corpus"}

	assert.Equal(t, "rule", NewBot(r, c).Reply("hello"))
	assert.Zero(t, c.calls)
}

func TestReply_EmptyRuleReplyFallsBack(t *testing.T) {
	c := &spyCorpus{reply: "corpus"}

	assert.Equal(t, "corpus", NewBot(&spyRules{reply: "  "}, c).Reply("anything"))
	assert.Equal(t, 1, c.calls)
}

func TestReply_KnownRule(t *testing.T) {
	b, _ := newBot(t)
	assert.Contains(t, rules.DefaultSpecs()[0].Responses, b.Reply("hello"))
}

func TestReply_CorpusSubstring(t *testing.T) {
	b, _ := newBot(t)
	assert.Equal(t, "Books can be borrowed for two weeks.", b.Reply("borrowed"))
}

func TestReply_CorpusRandom(t *testing.T) {
	b, c := newBot(t)
	assert.Contains(t, c.Sentences(), b.Reply("parrots"))
}
