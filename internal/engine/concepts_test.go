package engine

import (
	"reflect"
	"testing"
)

func TestExtractConceptsFrequencyOrder(t *testing.T) {
	text := "Mitosis splits cells. Mitosis requires enzymes. Enzymes help mitosis along. Membrane stays intact."
	got := ExtractConcepts(text, 10)
	want := []string{"mitosis", "enzymes", "splits", "cells", "requires", "help", "along", "membrane", "stays", "intact"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExtractConceptsTieBreakFirstOccurrence(t *testing.T) {
	// zebra and apple both occur twice; zebra appears first in the text.
	got := ExtractConcepts("zebra apple zebra apple", 2)
	want := []string{"zebra", "apple"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExtractConceptsFiltersStopWordsAndShortTokens(t *testing.T) {
	got := ExtractConcepts("the cat sat on the photosynthesis mat and how when where", 10)
	want := []string{"photosynthesis"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExtractConceptsStripsPunctuationAndCase(t *testing.T) {
	got := ExtractConcepts("Enzyme! ENZYME? (enzyme)", 5)
	want := []string{"enzyme"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExtractConceptsEmptyInput(t *testing.T) {
	if got := ExtractConcepts("", 10); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestExtractConceptsTruncatesToMax(t *testing.T) {
	got := ExtractConcepts("alpha beta gamma delta epsilon", 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 concepts, got %v", got)
	}
}
