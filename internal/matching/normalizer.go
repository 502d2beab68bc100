package matching

import (
	"regexp"
	"strings"
	"unicode"
)

// Normalizer canonicalizes free-text fields into comparable forms. All
// methods are pure; normalizing twice yields the same result as once.
type Normalizer struct {
	stopWords map[string]struct{}
}

// NewNormalizer creates a normalizer with the given stop-word set.
func NewNormalizer(stopWords []string) *Normalizer {
	set := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		set[strings.ToLower(w)] = struct{}{}
	}
	return &Normalizer{stopWords: set}
}

// Normalize lowercases, replaces punctuation with spaces, and collapses
// whitespace. Empty input normalizes to an empty string.
func (n *Normalizer) Normalize(text string) string {
	if text == "" {
		return ""
	}
	lowered := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return unicode.ToLower(r)
		default:
			return ' '
		}
	}, text)
	return strings.Join(strings.Fields(lowered), " ")
}

// NormalizeName normalizes a product name and removes stop words. Used for
// the word-overlap comparison only; vendors and brands keep their stop
// words since "the" can distinguish vendor names.
func (n *Normalizer) NormalizeName(name string) string {
	return strings.Join(n.NameTokens(name), " ")
}

// sizeToken matches combined quantity-unit words ("1g", "100mg", "2oz")
// that come through punctuation stripping as a single token, so the
// standalone unit stop words never see them. Bare numbers stay: they can
// be identity ("Gelato 41").
var sizeToken = regexp.MustCompile(`^\d+(g|mg|oz|ml|ct)$`)

// NameTokens returns the normalized, stop-word-filtered word set of a
// product name, in original order. Size tokens are dropped along with the
// stop words; two listings differing only by pack size carry the same
// identity.
func (n *Normalizer) NameTokens(name string) []string {
	fields := strings.Fields(n.Normalize(name))
	tokens := fields[:0]
	for _, f := range fields {
		if _, skip := n.stopWords[f]; skip {
			continue
		}
		if sizeToken.MatchString(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}
