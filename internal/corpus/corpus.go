// Package corpus holds the reference text used when no rule answers.
package corpus

import (
	"errors"
	"math/rand/v2"
	"os"
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"

	"talkbot/internal/config"
)

var ErrEmpty = errors.New("corpus has no sentences")

// The English Punkt model ships inside the sentences module; building the
// tokenizer parses it, so do it once.
var tokenizer = sync.OnceValues(func() (*sentences.DefaultSentenceTokenizer, error) {
	return english.NewSentenceTokenizer(nil)
})

type Corpus struct {
	sentences []string
	lowered   []string
	pick      func(n int) int
}

type Option func(*Corpus)

// WithPicker replaces the uniform random choice of a fallback sentence.
func WithPicker(pick func(n int) int) Option {
	return func(c *Corpus) {
		c.pick = pick
	}
}

func Load(path string, opts ...Option) (*Corpus, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &config.OpError{
			Op:   "corpus.load",
			Kind: config.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	c, err := Parse(string(b), opts...)
	if err != nil {
		return nil, &config.OpError{
			Op:   "corpus.load",
			Kind: config.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	return c, nil
}

// Parse splits text into sentences.
func Parse(text string, opts ...Option) (*Corpus, error) {
	tok, err := tokenizer()
	if err != nil {
		return nil, err
	}

	c := &Corpus{pick: rand.IntN}
	for _, s := range tok.Tokenize(text) {
		sentence := strings.Join(strings.Fields(s.Text), " ")
		if sentence == "" {
			continue
		}
		c.sentences = append(c.sentences, sentence)
		c.lowered = append(c.lowered, strings.ToLower(sentence))
	}

	if len(c.sentences) == 0 {
		return nil, ErrEmpty
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Corpus) Len() int {
	return len(c.sentences)
}

func (c *Corpus) Sentences() []string {
	return append([]string(nil), c.sentences...)
}

// Fallback returns the first sentence containing input, ignoring case, or
// a random sentence when none does.
func (c *Corpus) Fallback(input string) string {
	needle := strings.ToLower(input)
	for i, s := range c.lowered {
		if strings.Contains(s, needle) {
			return c.sentences[i]
		}
	}

	return c.sentences[c.pick(len(c.sentences))]
}
