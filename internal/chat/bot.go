// Package chat turns user text into a bot reply: pattern rules first, the
// corpus when no rule has anything to say.
package chat

import (
	log "log/slog"
	"strings"
)

const NotCaught = "I didn't catch that. Can you say it again?"

type Responder interface {
	Respond(input string) string
}

type Fallback interface {
	Fallback(input string) string
}

type Bot struct {
	rules  Responder
	corpus Fallback
}

func NewBot(rules Responder, corpus Fallback) *Bot {
	return &Bot{rules: rules, corpus: corpus}
}

func (b *Bot) Reply(input string) string {
	if strings.TrimSpace(input) == "" {
		return NotCaught
	}

	if reply := b.rules.Respond(input); strings.TrimSpace(reply) != "" {
		log.Debug("Rule reply", "input", input, "reply", reply)
		return reply
	}

	reply := b.corpus.Fallback(input)
	log.Debug("Corpus reply", "input", input, "reply", reply)
	return reply
}
