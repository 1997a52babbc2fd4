// Package rules implements the pattern responder: an ordered list of
// regular expressions, each paired with reply templates.
package rules

import (
	"errors"
	"fmt"
	log "log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// Upper bound for one pattern evaluation; regexp2 backtracks.
const matchTimeout = 250 * time.Millisecond

var ErrNoRules = errors.New("no rules")

// Spec is the uncompiled form of a rule, as written in a rules file.
type Spec struct {
	Pattern   string   `yaml:"pattern"`
	Responses []string `yaml:"responses"`
}

type rule struct {
	pattern   string
	re        *regexp2.Regexp
	responses []string
}

type Responder struct {
	rules []rule
	pick  func(n int) int
}

type Option func(*Responder)

// WithPicker replaces the uniform random choice of a reply template.
// pick must return a value in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(r *Responder) {
		r.pick = pick
	}
}

// Compile builds a responder from specs, keeping their order. Patterns
// are case-insensitive and anchored at the start of the input.
func Compile(specs []Spec, opts ...Option) (*Responder, error) {
	if len(specs) == 0 {
		return nil, ErrNoRules
	}

	r := &Responder{
		rules: make([]rule, 0, len(specs)),
		pick:  rand.IntN,
	}

	for i, s := range specs {
		if s.Pattern == "" {
			return nil, fmt.Errorf("rule %d: empty pattern", i)
		}
		if len(s.Responses) == 0 {
			return nil, fmt.Errorf("rule %d (%s): no responses", i, s.Pattern)
		}

		re, err := regexp2.Compile(`\A(?:`+s.Pattern+`)`, regexp2.IgnoreCase)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, s.Pattern, err)
		}
		re.MatchTimeout = matchTimeout

		r.rules = append(r.rules, rule{
			pattern:   s.Pattern,
			re:        re,
			responses: append([]string(nil), s.Responses...),
		})
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

func (r *Responder) Len() int {
	return len(r.rules)
}

// Respond returns a reply from the first rule whose pattern matches input,
// or "" when none does.
func (r *Responder) Respond(input string) string {
	for _, ru := range r.rules {
		m, err := ru.re.FindStringMatch(input)
		if err != nil {
			log.Debug("Rule evaluation failed", "pattern", ru.pattern, "err", err)
			continue
		}
		if m == nil {
			continue
		}

		tmpl := ru.responses[r.pick(len(ru.responses))]
		return tidy(expand(tmpl, m))
	}

	return ""
}

// expand replaces %1..%9 with the reflected text of the matching group.
func expand(tmpl string, m *regexp2.Match) string {
	if !strings.Contains(tmpl, "%") {
		return tmpl
	}

	var b strings.Builder
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c == '%' && i+1 < len(tmpl) && tmpl[i+1] >= '0' && tmpl[i+1] <= '9' {
			if g := m.GroupByNumber(int(tmpl[i+1] - '0')); g != nil && len(g.Captures) > 0 {
				b.WriteString(reflect(g.String()))
			}
			i++
			continue
		}
		b.WriteByte(c)
	}

	return b.String()
}

// tidy fixes punctuation doubled up by substituting a captured question.
func tidy(s string) string {
	switch {
	case strings.HasSuffix(s, "?."):
		return s[:len(s)-2] + "."
	case strings.HasSuffix(s, "??"):
		return s[:len(s)-2] + "?"
	}
	return s
}
