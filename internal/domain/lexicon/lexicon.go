// Package lexicon holds the profanity word list and the matcher built on it.
//
// A Lexicon is an immutable value constructed once at startup from the
// embedded base list plus any additional terms; a Matcher compiled from it is
// safe to share read-only for the rest of the run.
package lexicon

import (
	"bufio"
	_ "embed"
	"strings"

	"github.com/forPelevin/mutecut/internal/domain/redact"
)

//go:embed words.txt
var baseWords string

// DefaultExtraTerms are appended to the base list unless configuration says otherwise.
var DefaultExtraTerms = []string{
	"hell", "hells", "hell's", "damn", "wtf", "crap", "shit", "fuck", "holy shit", "ass", "bastard",
}

// Lexicon is an ordered, de-duplicated list of normalized terms.
type Lexicon struct {
	terms []string
}

// BaseTerms returns the embedded base word list.
func BaseTerms() []string {
	var out []string
	sc := bufio.NewScanner(strings.NewReader(baseWords))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// New builds a Lexicon from base terms followed by extra terms. Terms are
// normalized the same way transcript words are; empty results are dropped.
func New(base, extra []string) Lexicon {
	seen := make(map[string]struct{}, len(base)+len(extra))
	terms := make([]string, 0, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, t := range list {
			key := canonical(t)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			terms = append(terms, key)
		}
	}
	return Lexicon{terms: terms}
}

// Default returns the base list extended with DefaultExtraTerms.
func Default() Lexicon {
	return New(BaseTerms(), DefaultExtraTerms)
}

// Terms returns a copy of the normalized terms in insertion order.
func (l Lexicon) Terms() []string {
	return append([]string(nil), l.terms...)
}

func (l Lexicon) Len() int { return len(l.terms) }

// canonical normalizes a term and collapses internal whitespace.
func canonical(term string) string {
	return strings.Join(strings.Fields(redact.Normalize(term)), " ")
}
