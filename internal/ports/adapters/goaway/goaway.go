package goaway

import (
	goaway "github.com/TwiN/go-away"
)

// Adapter classifies with the go-away detector, extended with extra terms.
// go-away matches substrings after leet-speak and special-character
// sanitizing, so it is more aggressive than the lexicon matcher.
type Adapter struct {
	detector *goaway.ProfanityDetector
}

func New(extraTerms []string) *Adapter {
	profanities := make([]string, 0, len(goaway.DefaultProfanities)+len(extraTerms))
	profanities = append(profanities, goaway.DefaultProfanities...)
	for _, t := range extraTerms {
		if t != "" {
			profanities = append(profanities, t)
		}
	}
	d := goaway.NewProfanityDetector().
		WithSanitizeLeetSpeak(true).
		WithSanitizeSpecialCharacters(true).
		WithCustomDictionary(profanities, goaway.DefaultFalsePositives, goaway.DefaultFalseNegatives)
	return &Adapter{detector: d}
}

func (a *Adapter) ContainsProfanity(token string) bool {
	return a.detector.IsProfane(token)
}

func (a *Adapter) Censor(text string) string {
	return a.detector.Censor(text)
}
