// Package encoder turns checkbox and free-text symptom input into positions in a
// model's symptom vocabulary.
package encoder

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrEmptyInput      = errors.New("Symptoms required")
	ErrNoValidSymptoms = errors.New("No valid symptoms recognized")
)

// Strategy decides when an input token recognizes a vocabulary entry.
type Strategy int

const (
	// ExactMatch accepts a token only when it equals a normalized vocabulary entry.
	ExactMatch Strategy = iota
	// SubstringMatch turns entry i on when any token is a substring of its name.
	// It is looser and can recognize unrelated entries.
	SubstringMatch
)

func (s Strategy) String() string {
	switch s {
	case ExactMatch:
		return "exact"
	case SubstringMatch:
		return "substring"
	default:
		return "unknown"
	}
}

const maxNGram = 3

type Input struct {
	Selected string
	Text     string
}

type Encoded struct {
	// Indices are the recognized vocabulary positions, ascending and unique.
	Indices []int
	Names   []string
	// Submitted is what the user sent, one entry per checkbox token plus the free text.
	Submitted []string
	// BagOfWords joins the processed text tokens and checkbox tokens.
	BagOfWords string
}

// Vector returns a binary vector of length n with Indices set.
func (e Encoded) Vector(n int) []float64 {
	v := make([]float64, n)
	for _, i := range e.Indices {
		if i < n {
			v[i] = 1
		}
	}
	return v
}

type Encoder struct {
	vocab      []string
	normalized []string
	index      map[string]int
	strategy   Strategy
	lem        *Lemmatizer
}

// New builds an encoder over an ordered vocabulary. Position i of the vocabulary is
// position i of every vector the encoder produces. Lexicon words are only used to
// pick base forms of free-text words.
func New(vocab []string, strategy Strategy, lexicon ...string) *Encoder {
	e := &Encoder{
		vocab:      vocab,
		normalized: make([]string, len(vocab)),
		index:      make(map[string]int, len(vocab)),
		strategy:   strategy,
		lem:        NewLemmatizer(append(append([]string{}, vocab...), lexicon...)),
	}
	for i, v := range vocab {
		n := Normalize(v)
		e.normalized[i] = n
		if _, dup := e.index[n]; !dup {
			e.index[n] = i
		}
	}
	return e
}

func (e *Encoder) Strategy() Strategy { return e.strategy }

func (e *Encoder) Size() int { return len(e.vocab) }

func (e *Encoder) Encode(in Input) (Encoded, error) {
	selected := strings.TrimSpace(in.Selected)
	text := strings.TrimSpace(in.Text)
	if selected == "" && text == "" {
		return Encoded{}, ErrEmptyInput
	}

	boxes := CheckboxTokens(selected)
	words := TextTokens(text, e.lem)

	candidates := append([]string{}, boxes...)
	candidates = append(candidates, NGrams(words, maxNGram)...)

	var hits []int
	switch e.strategy {
	case SubstringMatch:
		hits = e.matchSubstring(candidates)
	default:
		hits = e.matchExact(candidates)
	}
	if len(hits) == 0 {
		return Encoded{}, ErrNoValidSymptoms
	}

	out := Encoded{
		Indices:    hits,
		Names:      make([]string, len(hits)),
		Submitted:  append([]string{}, boxes...),
		BagOfWords: strings.Join(append(append([]string{}, words...), boxes...), " "),
	}
	for i, idx := range hits {
		out.Names[i] = e.vocab[idx]
	}
	if text != "" {
		out.Submitted = append(out.Submitted, text)
	}
	return out, nil
}

func (e *Encoder) matchExact(candidates []string) []int {
	seen := make(map[int]bool)
	for _, c := range candidates {
		if i, ok := e.index[c]; ok {
			seen[i] = true
		}
	}
	return sortedKeys(seen)
}

func (e *Encoder) matchSubstring(candidates []string) []int {
	seen := make(map[int]bool)
	for i, name := range e.normalized {
		for _, c := range candidates {
			if c != "" && strings.Contains(name, c) {
				seen[i] = true
				break
			}
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
