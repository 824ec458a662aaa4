// Package normalize turns raw chat text into speakable text.
//
// The pipeline mirrors what humans expect a read-aloud bot to skip or
// rephrase: mentions become member names, URLs vanish, code blocks and
// custom emoji collapse to pauses, and laughter runs ("www") become a
// spoken ideophone. Each stage is a single left-to-right pass.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	// Pause separates clauses in the synthesized speech.
	Pause = "、"
	// SentenceEnd closes a sentence in the synthesized speech.
	SentenceEnd = "。"

	laughter   = "ワラ"
	maxNameLen = 12
)

// MemberResolver looks up a member's display name by ID.
// It reports false when the member cannot be resolved.
type MemberResolver func(id string) (string, bool)

var (
	mentionRunRe = regexp.MustCompile(`\s*<@!?(\d+)>(?:\s+<@!?\d+>)*\s*`)
	urlRe        = regexp.MustCompile(`https?://[\w/:%#$&?()~.=+\-]+`)
	emojiRe      = regexp.MustCompile(`<a?:([^:]+):\d+>`)
	fencedRe     = regexp.MustCompile("(?s)```.*?```")
	inlineRe     = regexp.MustCompile("`[^`]*`")
	sepRunRe     = regexp.MustCompile(`[、。]{2,}`)
	spaceRunRe   = regexp.MustCompile(`\s+`)
)

// Normalize converts a raw message into an utterance. It reports false
// when nothing remains to speak.
func Normalize(text string, resolve MemberResolver) (string, bool) {
	text = strings.ReplaceAll(text, "\n", Pause)
	text = replaceMentionRuns(text, resolve)
	text = urlRe.ReplaceAllString(text, "")
	text = emojiRe.ReplaceAllString(text, "${1}"+Pause)
	text = fencedRe.ReplaceAllString(text, Pause)
	text = inlineRe.ReplaceAllString(text, Pause)
	text = collapseLaughter(text)
	text = sepRunRe.ReplaceAllString(text, Pause)
	text = spaceRunRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	if text == Pause {
		text = ""
	}
	return text, text != ""
}

// replaceMentionRuns substitutes each run of consecutive user mentions
// with the display name of the run's first member, truncated, keeping a
// pause only against non-empty neighboring text.
func replaceMentionRuns(text string, resolve MemberResolver) string {
	matches := mentionRunRe.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return text
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])

		name := ""
		if resolve != nil {
			if n, ok := resolve(text[m[2]:m[3]]); ok {
				name = truncateRunes(n, maxNameLen)
			}
		}

		if b.Len() > 0 {
			b.WriteString(Pause)
		}
		b.WriteString(name)
		if m[1] < len(text) {
			b.WriteString(Pause)
		}
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

// collapseLaughter replaces laughter runs with the spoken ideophone.
// A run qualifies when it is three or more w's, or any w run ending at
// whitespace or end of text.
func collapseLaughter(text string) string {
	runes := []rune(text)
	var b strings.Builder
	i := 0
	for i < len(runes) {
		if runes[i] != 'w' && runes[i] != 'W' {
			b.WriteRune(runes[i])
			i++
			continue
		}
		j := i
		for j < len(runes) && (runes[j] == 'w' || runes[j] == 'W') {
			j++
		}
		atBoundary := j == len(runes) || unicode.IsSpace(runes[j])
		if j-i >= 3 || atBoundary {
			if b.Len() > 0 {
				b.WriteString(Pause)
			}
			b.WriteString(laughter)
			if j < len(runes) {
				b.WriteString(SentenceEnd)
			}
		} else {
			b.WriteString(string(runes[i:j]))
		}
		i = j
	}
	return b.String()
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
