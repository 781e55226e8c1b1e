package league

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// Entry is a candidate player name for keeper matching.
type Entry struct {
	ID   string
	Name string
}

// Matcher resolves a free-text keeper name to a player id.
type Matcher interface {
	Match(name string, candidates []Entry) (id string, score int, ok bool)
}

// TokenSortMatcher compares names after lower-casing, stripping punctuation
// and sorting tokens, so "Trout, Mike" matches "Mike Trout".
type TokenSortMatcher struct {
	Threshold int
}

// NewTokenSortMatcher returns a matcher accepting scores at or above threshold (0-100).
func NewTokenSortMatcher(threshold int) *TokenSortMatcher {
	return &TokenSortMatcher{Threshold: threshold}
}

func tokenSort(s string) string {
	tokens := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// Ratio scores two names from 0 to 100.
func Ratio(a, b string) int {
	a, b = tokenSort(a), tokenSort(b)
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 0
	}
	d := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100 * (1 - float64(d)/float64(longest))))
}

// Match returns the best scoring candidate. Ties keep the earlier candidate.
func (m *TokenSortMatcher) Match(name string, candidates []Entry) (string, int, bool) {
	bestID, best := "", -1
	for _, c := range candidates {
		if s := Ratio(name, c.Name); s > best {
			bestID, best = c.ID, s
		}
	}
	if best < m.Threshold || bestID == "" {
		return "", max(best, 0), false
	}
	return bestID, best, true
}
