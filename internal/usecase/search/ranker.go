package search

import (
	"cmp"
	"slices"

	"github.com/MSM2025CL/stproject/internal/domain/search/candidate"
	"github.com/MSM2025CL/stproject/internal/domain/search/ordering"
)

// rank orders filter survivors. All sorts are stable.
//  1. relevance descending
//  2. drop the lowest-relevance tail: n*tailPercent/100 rows in integer math, so the
//     kept count rounds up (21 rows at 5% keep 20, not floor(0.95*21) = 19)
//  3. re-sort by price ascending or relevance descending
//  4. truncate to show
func rank(cs []candidate.Candidate, o ordering.Ordering, considerOffers bool, show, tailPercent int) []candidate.Candidate {
	out := slices.Clone(cs)
	byRelevance := func(a, b candidate.Candidate) int {
		return cmp.Compare(b.Scores().Relevance(), a.Scores().Relevance())
	}

	slices.SortStableFunc(out, byRelevance)
	out = out[:len(out)-len(out)*tailPercent/100]

	switch o {
	case ordering.Relevance:
		slices.SortStableFunc(out, byRelevance)
	default:
		slices.SortStableFunc(out, func(a, b candidate.Candidate) int {
			return cmp.Compare(a.PriceKey(considerOffers), b.PriceKey(considerOffers))
		})
	}

	if show >= 0 && len(out) > show {
		out = out[:show]
	}
	return out
}
