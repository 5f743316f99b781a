// Package tfidf turns query text into TF-IDF vectors compatible with the
// precomputed catalog TF-IDF embeddings.
//
// The fitted vocabulary and idf weights are produced offline and shipped as a
// msgpack artifact. Tokenisation follows the common defaults of the fitting
// tool: lower-casing, tokens of two or more word characters, optional word
// n-grams joined by a single space.
package tfidf

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

var tokenRegex = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Norm is the output vector normalisation.
type Norm string

// Norm constants.
const (
	NormL2   Norm = "l2"
	NormL1   Norm = "l1"
	NormNone Norm = ""
)

// Artifact is the serialised fitted vectorizer.
type Artifact struct {
	Vocabulary  map[string]int `msgpack:"vocabulary"`
	IDF         []float64      `msgpack:"idf"`
	Lowercase   bool           `msgpack:"lowercase"`
	Norm        Norm           `msgpack:"norm"`
	SublinearTF bool           `msgpack:"sublinear_tf"`
	NgramMin    int            `msgpack:"ngram_min"`
	NgramMax    int            `msgpack:"ngram_max"`
}

// Vectorizer is a fitted, read-only TF-IDF transformer. Safe for concurrent use.
type Vectorizer struct {
	a Artifact
}

// New validates an artifact and returns a vectorizer.
func New(a Artifact) (*Vectorizer, error) {
	if len(a.IDF) == 0 {
		return nil, fmt.Errorf("tfidf: empty idf vector")
	}
	for term, col := range a.Vocabulary {
		if col < 0 || col >= len(a.IDF) {
			return nil, fmt.Errorf("tfidf: term %q maps to column %d outside [0,%d)", term, col, len(a.IDF))
		}
	}
	switch a.Norm {
	case NormL2, NormL1, NormNone:
	default:
		return nil, fmt.Errorf("tfidf: unsupported norm %q", a.Norm)
	}
	if a.NgramMin <= 0 {
		a.NgramMin = 1
	}
	if a.NgramMax < a.NgramMin {
		a.NgramMax = a.NgramMin
	}
	return &Vectorizer{a: a}, nil
}

// Load reads a msgpack artifact from disk.
func Load(path string) (*Vectorizer, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read vectorizer %s: %w", path, err)
	}
	var a Artifact
	if err := msgpack.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode vectorizer %s: %w", path, err)
	}
	return New(a)
}

// Save writes the artifact as msgpack.
func Save(path string, a Artifact) error {
	data, err := msgpack.Marshal(&a)
	if err != nil {
		return fmt.Errorf("encode vectorizer: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write vectorizer %s: %w", path, err)
	}
	return nil
}

// Dimensions returns the vocabulary size.
func (v *Vectorizer) Dimensions() int { return len(v.a.IDF) }

// Transform returns the dense TF-IDF vector of text.
func (v *Vectorizer) Transform(text string) []float32 {
	counts := make(map[int]float64)
	for _, term := range v.terms(text) {
		if col, ok := v.a.Vocabulary[term]; ok {
			counts[col]++
		}
	}

	out := make([]float32, len(v.a.IDF))
	if len(counts) == 0 {
		return out
	}

	weights := make(map[int]float64, len(counts))
	var norm float64
	for col, tf := range counts {
		if v.a.SublinearTF {
			tf = 1 + math.Log(tf)
		}
		w := tf * v.a.IDF[col]
		weights[col] = w
		switch v.a.Norm {
		case NormL2:
			norm += w * w
		case NormL1:
			norm += math.Abs(w)
		}
	}
	switch v.a.Norm {
	case NormL2:
		norm = math.Sqrt(norm)
	case NormNone:
		norm = 1
	}
	if norm == 0 {
		norm = 1
	}
	for col, w := range weights {
		out[col] = float32(w / norm)
	}
	return out
}

func (v *Vectorizer) terms(text string) []string {
	if v.a.Lowercase {
		text = strings.ToLower(text)
	}
	tokens := tokenRegex.FindAllString(text, -1)
	if v.a.NgramMin == 1 && v.a.NgramMax == 1 {
		return tokens
	}

	var out []string
	for n := v.a.NgramMin; n <= v.a.NgramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}
