package grid

import (
	"strings"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// FuzzyScorer matches text with fzf's fuzzy algorithm. The query is split on
// whitespace and every term must match; the score is the sum of the term
// scores. Matching ignores case.
type FuzzyScorer struct {
	terms [][]rune
	slab  *util.Slab
}

// NewFuzzyScorer prepares a scorer for query.
func NewFuzzyScorer(query string) *FuzzyScorer {
	s := &FuzzyScorer{slab: util.MakeSlab(100*1024, 2048)}
	for _, term := range strings.Fields(strings.ToLower(query)) {
		s.terms = append(s.terms, algo.NormalizeRunes([]rune(term)))
	}
	return s
}

// Score implements Scorer. A query without terms matches nothing.
func (s *FuzzyScorer) Score(text string) (int, bool) {
	if len(s.terms) == 0 {
		return 0, false
	}
	chars := util.ToChars([]byte(text))
	total := 0
	for _, term := range s.terms {
		result, _ := algo.FuzzyMatchV2(false, true, true, &chars, term, false, s.slab)
		if result.Start < 0 {
			return 0, false
		}
		total += result.Score
	}
	return total, true
}
