// Package consonant implements vowel-insensitive fuzzy word matching.
//
// Words are reduced to their consonants and compared by longest common
// subsequence. Percentages are always relative to the length of the query
// word, so a longer candidate can still score 100 when it contains every
// consonant of the query word in order.
package consonant

import (
	"math"
	"strings"
	"unicode"
)

// FullMatch is the percentage of a word whose consonants all appear, in order, in a candidate.
const FullMatch = 100.0

// vowels lists lower-case plain and accented Latin vowels.
const vowels = "aeiouáéíóúàèìòùäëïöüâêîôû"

// Match is the best match of one query word against a candidate text.
type Match struct {
	Consonants string  // consonant-only form of the query word
	Percentage float64 // 0-100, rounded to two decimals
	BestMatch  string  // consonant-only candidate word that scored highest
}

// Full reports whether every consonant of the query word was matched.
func (m Match) Full() bool { return m.Percentage == FullMatch }

// ExtractConsonants lower-cases word and drops non-letters and vowels.
func ExtractConsonants(word string) string {
	var b strings.Builder
	b.Grow(len(word))
	for _, r := range word {
		if !unicode.IsLetter(r) {
			continue
		}
		r = unicode.ToLower(r)
		if strings.ContainsRune(vowels, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Words splits text on whitespace and returns the non-empty consonant forms.
func Words(text string) []string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if c := ExtractConsonants(f); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// LongestCommonSubsequenceLength returns the length, in runes, of the longest
// subsequence shared by a and b.
func LongestCommonSubsequenceLength(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				cur[j] = prev[j-1] + 1
			} else {
				cur[j] = max(prev[j], cur[j-1])
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

// BestMatchPercentage returns the highest 100*LCS(word, c)/len(word) over
// candidates, and the candidate that produced it. The first candidate wins ties.
func BestMatchPercentage(word string, candidates []string) (float64, string) {
	n := len([]rune(word))
	if n == 0 || len(candidates) == 0 {
		return 0, ""
	}

	var best float64
	var bestWord string
	for _, c := range candidates {
		if c == "" {
			continue
		}
		pct := float64(LongestCommonSubsequenceLength(word, c)) / float64(n) * 100
		if pct > best {
			best = pct
			bestWord = c
		}
	}
	return best, bestWord
}

// CompareConsonantMatches matches every consonant-bearing word of originalText
// against the words of compareText. Results are keyed by the original word.
// Words sharing a consonant form collapse into one entry, keyed by the last of them.
func CompareConsonantMatches(originalText, compareText string) map[string]Match {
	compare := Words(compareText)

	lastOriginal := make(map[string]string)
	var forms []string
	for _, w := range strings.Fields(originalText) {
		c := ExtractConsonants(w)
		if c == "" {
			continue
		}
		if _, seen := lastOriginal[c]; !seen {
			forms = append(forms, c)
		}
		lastOriginal[c] = w
	}

	results := make(map[string]Match, len(forms))
	for _, c := range forms {
		pct, best := BestMatchPercentage(c, compare)
		results[lastOriginal[c]] = Match{
			Consonants: c,
			Percentage: math.Round(pct*100) / 100,
			BestMatch:  best,
		}
	}
	return results
}

// MatchRatio returns the fraction of originalText's consonant words that fully
// match some word of compareText. Text without consonant words yields 0.
func MatchRatio(originalText, compareText string) float64 {
	matches := CompareConsonantMatches(originalText, compareText)
	if len(matches) == 0 {
		return 0
	}
	full := 0
	for _, m := range matches {
		if m.Full() {
			full++
		}
	}
	return float64(full) / float64(len(matches))
}
