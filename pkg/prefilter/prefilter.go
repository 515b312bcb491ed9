// Package prefilter provides Aho-Corasick based keyword pre-filtering.
//
// This package uses a forked version of pgavlin/aho-corasick with ByteEquivalence
// ("klingon") support for custom byte transformations during matching.
package prefilter

import (
	"github.com/praetorian-inc/interviewcoach/internal/ahocorasick"
)

// Prefilter provides efficient multi-pattern matching using Aho-Corasick.
type Prefilter struct {
	ac       ahocorasick.AhoCorasick
	patterns []string
}

// ByteEquivalence defines a function that returns equivalent bytes for matching.
// This enables "klingon" support - custom encodings/transformations.
type ByteEquivalence = func(byte) []byte

// New creates a Prefilter with the given keywords and optional klingon transformation.
// If klingon is nil, standard exact matching is used.
func New(keywords []string, klingon ByteEquivalence) *Prefilter {
	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		ByteEquivalence: klingon,
		MatchKind:       ahocorasick.LeftMostLongestMatch,
	})

	return &Prefilter{
		ac:       builder.Build(keywords),
		patterns: keywords,
	}
}

// Match returns all keywords that match in the given text.
func (p *Prefilter) Match(text string) []string {
	var matches []string
	seen := make(map[int]bool)

	for match := range ahocorasick.Iter(p.ac, text) {
		patternIdx := match.Pattern()
		if !seen[patternIdx] {
			seen[patternIdx] = true
			matches = append(matches, p.patterns[patternIdx])
		}
	}

	return matches
}

// MatchedPatternIndices returns the indices of patterns that match in the text.
func (p *Prefilter) MatchedPatternIndices(text string) []int {
	var indices []int
	seen := make(map[int]bool)

	for match := range ahocorasick.Iter(p.ac, text) {
		patternIdx := match.Pattern()
		if !seen[patternIdx] {
			seen[patternIdx] = true
			indices = append(indices, patternIdx)
		}
	}

	return indices
}

// HasMatch returns true if any keyword matches the text.
// This is faster than Match when you only need to know if there's any match.
func (p *Prefilter) HasMatch(text string) bool {
	for range ahocorasick.Iter(p.ac, text) {
		return true
	}
	return false
}
