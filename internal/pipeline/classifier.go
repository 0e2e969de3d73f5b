package pipeline

import (
	"github.com/forPelevin/mutecut/internal/domain/lexicon"
	"github.com/forPelevin/mutecut/internal/ports"
)

func newLexiconMatcher(extraWords []string) *lexicon.Matcher {
	return lexicon.NewMatcher(lexicon.New(lexicon.BaseTerms(), extraWords))
}

var _ ports.Classifier = (*lexicon.Matcher)(nil)
