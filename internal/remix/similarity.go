package remix

import (
	"math"
	"sort"
	"strings"

	"github.com/atelier-labs/atelier-go/internal/domain"
)

// maxCommonElements caps the overlapping-token report.
const maxCommonElements = 10

// Similarity is the result of comparing two assets' content.
type Similarity struct {
	Comparable     bool
	Score          int
	LikelyRemix    bool
	CommonElements []string
}

// DetectSimilarity compares two assets by token-set overlap. Assets of
// different content types are never comparable. The score is a Jaccard
// ratio over lowercased whitespace tokens, scaled to 0..100; above 50 the
// pair is flagged as a likely remix.
func DetectSimilarity(a, b domain.Asset) Similarity {
	if a.Type != b.Type {
		return Similarity{}
	}

	setA := tokenSet(a.Content)
	setB := tokenSet(b.Content)

	common := make([]string, 0)
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			common = append(common, tok)
		}
	}
	sort.Strings(common)

	union := len(setA) + len(setB) - len(common)
	score := 0
	if union > 0 {
		score = int(math.Round(100 * float64(len(common)) / float64(union)))
	}

	if len(common) > maxCommonElements {
		common = common[:maxCommonElements]
	}
	return Similarity{
		Comparable:     true,
		Score:          score,
		LikelyRemix:    score > 50,
		CommonElements: common,
	}
}

func tokenSet(content string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(content)) {
		set[tok] = struct{}{}
	}
	return set
}
