package lexicon

import (
	"strings"
	"unicode"

	"github.com/forPelevin/mutecut/internal/domain/redact"
)

const censorMask = "****"

// Matcher flags whole words and phrases found in a Lexicon.
type Matcher struct {
	set       map[string]struct{}
	maxPhrase int
}

func NewMatcher(l Lexicon) *Matcher {
	m := &Matcher{set: make(map[string]struct{}, len(l.terms)), maxPhrase: 1}
	for _, t := range l.terms {
		m.set[t] = struct{}{}
		if n := len(strings.Fields(t)); n > m.maxPhrase {
			m.maxPhrase = n
		}
	}
	return m
}

// ContainsProfanity reports whether any word or phrase of token is in the lexicon.
func (m *Matcher) ContainsProfanity(token string) bool {
	return len(m.matches(tokenize(token))) > 0
}

// Censor replaces every matched word or phrase in text with a fixed mask,
// leaving punctuation and spacing outside the match untouched.
func (m *Matcher) Censor(text string) string {
	toks := tokenize(text)
	spans := m.matches(toks)
	if len(spans) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, s := range spans {
		b.WriteString(text[last:s.start])
		b.WriteString(censorMask)
		last = s.end
	}
	b.WriteString(text[last:])
	return b.String()
}

type token struct {
	start, end int
	norm       string
}

type span struct{ start, end int }

// matches walks tokens left to right preferring the longest phrase at each position.
func (m *Matcher) matches(toks []token) []span {
	var out []span
	for i := 0; i < len(toks); {
		n := m.longestAt(toks, i)
		if n == 0 {
			i++
			continue
		}
		out = append(out, span{start: toks[i].start, end: toks[i+n-1].end})
		i += n
	}
	return out
}

func (m *Matcher) longestAt(toks []token, i int) int {
	for n := min(m.maxPhrase, len(toks)-i); n >= 1; n-- {
		parts := make([]string, 0, n)
		for _, t := range toks[i : i+n] {
			if t.norm == "" {
				break
			}
			parts = append(parts, t.norm)
		}
		if len(parts) != n {
			continue
		}
		if _, ok := m.set[strings.Join(parts, " ")]; ok {
			return n
		}
	}
	return 0
}

// tokenize splits text into byte spans of word runes; apostrophes stay inside
// words so "hell's" is one token.
func tokenize(text string) []token {
	var out []token
	start := -1
	for i, r := range text {
		if isTokenRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, token{start: start, end: i, norm: redact.Normalize(text[start:i])})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, token{start: start, end: len(text), norm: redact.Normalize(text[start:])})
	}
	return out
}

func isTokenRune(r rune) bool {
	return r == '_' || r == '\'' || r == '’' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
