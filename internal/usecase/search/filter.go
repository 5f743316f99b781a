package search

import (
	"math"

	"github.com/MSM2025CL/stproject/internal/domain/consonant"
	"github.com/MSM2025CL/stproject/internal/domain/search/candidate"
	"github.com/MSM2025CL/stproject/internal/domain/search/result"
)

// filterStats counts survivors per stage.
type filterStats struct {
	scored    int
	matched   int
	survivors int
}

// filter drops weak candidates. Candidates are kept in input order.
// The adaptive thresholds are computed over the match-ratio survivors and returned
// without being applied.
func filter(
	query string, in []candidate.Candidate, hasProvider bool, t Tuning,
) ([]candidate.Candidate, result.Thresholds, filterStats) {
	st := filterStats{scored: len(in)}

	matched := make([]candidate.Candidate, 0, len(in))
	for _, c := range in {
		if consonant.MatchRatio(query, c.SearchText()) >= t.MatchRatio {
			matched = append(matched, c)
		}
	}
	st.matched = len(matched)

	th := thresholds(matched, !hasProvider)

	out := make([]candidate.Candidate, 0, len(matched))
	for _, c := range matched {
		s := c.Scores()
		if c.ListPrice() <= 0 {
			continue
		}
		if s.Description <= t.DescriptionFloor {
			continue
		}
		if !hasProvider && s.TFIDF <= t.TFIDFFloor {
			continue
		}
		out = append(out, c)
	}
	st.survivors = len(out)
	return out, th, st
}

// thresholds computes mean - 2*stddev (population) of the description and tfidf scores.
func thresholds(cs []candidate.Candidate, withTFIDF bool) result.Thresholds {
	if len(cs) == 0 {
		return result.Thresholds{}
	}
	desc := make([]float64, len(cs))
	tfidf := make([]float64, len(cs))
	for i, c := range cs {
		desc[i] = c.Scores().Description
		tfidf[i] = c.Scores().TFIDF
	}

	th := result.Thresholds{Description: lowerBound(desc), Valid: true}
	if withTFIDF {
		th.TFIDF = lowerBound(tfidf)
		th.TFIDFValid = true
	}
	return th
}

func lowerBound(xs []float64) float64 {
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	var variance float64
	for _, x := range xs {
		variance += (x - mean) * (x - mean)
	}
	variance /= float64(len(xs))
	return mean - 2*math.Sqrt(variance)
}
