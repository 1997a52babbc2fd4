package rules

import (
	"sort"
	"strings"

	"github.com/dlclark/regexp2"
)

// Pronoun swaps applied to captured text, so "i need my coffee" can be
// echoed back as "you need your coffee".
var reflections = map[string]string{
	"i am":     "you are",
	"i was":    "you were",
	"i":        "you",
	"i'm":      "you are",
	"i'd":      "you would",
	"i've":     "you have",
	"i'll":     "you will",
	"my":       "your",
	"you are":  "I am",
	"you were": "I was",
	"you've":   "I have",
	"you'll":   "I will",
	"your":     "my",
	"yours":    "mine",
	"you":      "me",
	"me":       "you",
}

var reflectRe = compileReflections()

func compileReflections() *regexp2.Regexp {
	keys := make([]string, 0, len(reflections))
	for k := range reflections {
		keys = append(keys, k)
	}
	// Longest first so "i am" wins over "i".
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	for i, k := range keys {
		keys[i] = regexp2.Escape(k)
	}

	re := regexp2.MustCompile(`\b(`+strings.Join(keys, "|")+`)\b`, regexp2.IgnoreCase)
	re.MatchTimeout = matchTimeout
	return re
}

func reflect(s string) string {
	s = strings.ToLower(s)

	out, err := reflectRe.ReplaceFunc(s, func(m regexp2.Match) string {
		return reflections[m.String()]
	}, -1, -1)
	if err != nil {
		return s
	}

	return out
}
