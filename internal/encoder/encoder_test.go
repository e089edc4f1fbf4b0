package encoder

import (
	"errors"
	"reflect"
	"testing"
)

var vocab = []string{"fever", "cough", "headache", "nausea", "vomiting", "runny_nose", "sore_throat", "fatigue"}

func TestCheckboxTokens(t *testing.T) {
	got := CheckboxTokens(" Fever,  COUGH ,, Runny_Nose,")
	want := []string{"fever", "cough", "runny nose"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestTextTokens(t *testing.T) {
	lem := NewLemmatizer(vocab)
	got := TextTokens("I have had 2 Headaches, and a fever since Monday!!", lem)
	want := []string{"headache", "fever", "monday"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestLemmatizer(t *testing.T) {
	lem := NewLemmatizer([]string{"chills", "ache", "body_ache"})
	cases := map[string]string{
		"aches":     "ache",
		"chills":    "chills",
		"allergies": "allergy",
		"rashes":    "rash",
		"virus":     "virus",
		"dizziness": "dizziness",
		"pains":     "pain",
		"cold":      "cold",
	}
	for in, want := range cases {
		if got := lem.Base(in); got != want {
			t.Errorf("Base(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNGrams(t *testing.T) {
	got := NGrams([]string{"sore", "throat", "pain"}, 2)
	want := []string{"sore", "throat", "pain", "sore throat", "throat pain"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestEncodeExactMatch(t *testing.T) {
	enc := New(vocab, ExactMatch)
	got, err := enc.Encode(Input{Selected: "fever, cough", Text: "My sore throat hurts and I keep vomiting"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got.Indices, []int{0, 1, 4, 6}) {
		t.Fatalf("unexpected indices %v", got.Indices)
	}
	if !reflect.DeepEqual(got.Names, []string{"fever", "cough", "vomiting", "sore_throat"}) {
		t.Fatalf("unexpected names %v", got.Names)
	}
	if got.BagOfWords != "sore throat hurt keep vomiting fever cough" {
		t.Fatalf("unexpected bag of words %q", got.BagOfWords)
	}
	if len(got.Submitted) != 3 || got.Submitted[2] != "My sore throat hurts and I keep vomiting" {
		t.Fatalf("unexpected submitted list %v", got.Submitted)
	}
}

func TestEncodeExactRejectsPartialWords(t *testing.T) {
	enc := New(vocab, ExactMatch)
	if _, err := enc.Encode(Input{Selected: "feve, throat"}); !errors.Is(err, ErrNoValidSymptoms) {
		t.Fatalf("expected ErrNoValidSymptoms, got %v", err)
	}
}

func TestEncodeSubstringMatch(t *testing.T) {
	enc := New(vocab, SubstringMatch)
	got, err := enc.Encode(Input{Selected: "throat, ache"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// "ache" is a substring of "headache", "throat" of "sore throat"
	if !reflect.DeepEqual(got.Indices, []int{2, 6}) {
		t.Fatalf("unexpected indices %v", got.Indices)
	}
}

func TestEncodeEmptyInput(t *testing.T) {
	enc := New(vocab, ExactMatch)
	if _, err := enc.Encode(Input{Selected: "  ", Text: "\t"}); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestEncodeOnlyStopWords(t *testing.T) {
	enc := New(vocab, SubstringMatch)
	if _, err := enc.Encode(Input{Text: "and the of 42 !!"}); !errors.Is(err, ErrNoValidSymptoms) {
		t.Fatalf("expected ErrNoValidSymptoms, got %v", err)
	}
}

func TestEncodedVector(t *testing.T) {
	e := Encoded{Indices: []int{0, 3}}
	got := e.Vector(4)
	if !reflect.DeepEqual(got, []float64{1, 0, 0, 1}) {
		t.Fatalf("unexpected vector %v", got)
	}
}

func TestStrategyString(t *testing.T) {
	if ExactMatch.String() != "exact" || SubstringMatch.String() != "substring" {
		t.Fatal("unexpected strategy names")
	}
}
