package encoder

import (
	"strings"
	"unicode"
)

var stopWords = toSet(`a about above after again against all am an and any are as at be because been
before being below between both but by can could did do does doing down during each few for from
further had has have having he her here hers herself him himself his how i if in into is it its itself
just me more most my myself no nor not now of off on once only or other our ours ourselves out over own
same she should so some such than that the their theirs them themselves then there these they this
those through to too under until up very was we were what when where which while who whom why will
with would you your yours yourself yourselves also been feel feeling feels felt get getting got have
having im ive lot lots really since still very`)

func toSet(words string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(words) {
		set[w] = true
	}
	return set
}

// Normalize lower-cases a symptom name, maps underscores to spaces and collapses
// whitespace so "Runny_Nose " and "runny  nose" compare equal.
func Normalize(s string) string {
	s = strings.ToLower(strings.ReplaceAll(s, "_", " "))
	return strings.Join(strings.Fields(s), " ")
}

// CheckboxTokens splits a comma-separated selection into normalized, non-empty tokens.
func CheckboxTokens(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := Normalize(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// TextTokens lower-cases free text, strips digits and punctuation, drops stop-words
// and reduces each remaining word to its base form.
func TextTokens(s string, lem *Lemmatizer) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)

	var out []string
	for _, w := range strings.Fields(cleaned) {
		if stopWords[w] {
			continue
		}
		out = append(out, lem.Base(w))
	}
	return out
}

// NGrams returns all contiguous 1..n word sequences joined by a space.
func NGrams(tokens []string, n int) []string {
	var out []string
	for size := 1; size <= n; size++ {
		for i := 0; i+size <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+size], " "))
		}
	}
	return out
}

// Lemmatizer reduces inflected nouns to a base form. Candidates that exist in the
// known word set win; otherwise a plain plural "s" is dropped.
type Lemmatizer struct {
	known map[string]bool
}

func NewLemmatizer(words []string) *Lemmatizer {
	known := make(map[string]bool)
	for _, w := range words {
		for _, part := range strings.Fields(Normalize(w)) {
			known[part] = true
		}
	}
	return &Lemmatizer{known: known}
}

var suffixRules = []struct{ from, to string }{
	{"s", ""},
	{"ses", "s"},
	{"xes", "x"},
	{"zes", "z"},
	{"ches", "ch"},
	{"shes", "sh"},
	{"ies", "y"},
	{"men", "man"},
}

func (l *Lemmatizer) Base(w string) string {
	if len(w) <= 3 || l.known[w] {
		return w
	}
	for _, r := range suffixRules {
		if strings.HasSuffix(w, r.from) {
			if c := strings.TrimSuffix(w, r.from) + r.to; l.known[c] {
				return c
			}
		}
	}
	switch {
	case strings.HasSuffix(w, "ies"):
		return strings.TrimSuffix(w, "ies") + "y"
	case strings.HasSuffix(w, "sses"), strings.HasSuffix(w, "ches"), strings.HasSuffix(w, "shes"),
		strings.HasSuffix(w, "xes"), strings.HasSuffix(w, "zes"):
		return strings.TrimSuffix(w, "es")
	case strings.HasSuffix(w, "ss"), strings.HasSuffix(w, "us"), strings.HasSuffix(w, "is"):
		return w
	case strings.HasSuffix(w, "s"):
		return strings.TrimSuffix(w, "s")
	}
	return w
}
