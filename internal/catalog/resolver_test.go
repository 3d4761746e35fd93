package catalog

import "testing"

func TestResolver_Resolve(t *testing.T) {
	candidates := []string{"Выпечка", "Напитки", "Салаты"}
	r := NewResolver(DefaultThreshold)

	testCases := []struct {
		name  string
		input string
		want  string
		found bool
	}{
		{"exact match", "Напитки", "Напитки", true},
		{"single typo", "Напиткы", "Напитки", true},
		{"two typos", "Напетке", "Напитки", true},
		{"unrelated input", "Электроника", "", false},
		{"empty input", "", "", false},
		{"below threshold", "Нап", "", false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, found := r.Resolve(tc.input, candidates)
			if found != tc.found || got != tc.want {
				t.Fatalf("Resolve(%q) = (%q, %v), want (%q, %v)", tc.input, got, found, tc.want, tc.found)
			}
		})
	}
}

func TestResolver_TieBreaksToFirstCandidate(t *testing.T) {
	r := NewResolver(0.5)

	// Both candidates are one edit away from the input; the first in the
	// (lexicographically sorted) candidate list must win.
	got, found := r.Resolve("кит", []string{"кит1", "кит2"})
	if !found || got != "кит1" {
		t.Fatalf("expected first candidate on tie, got (%q, %v)", got, found)
	}
}

func TestResolver_ThresholdBoundary(t *testing.T) {
	r := NewResolver(0.6)

	// 5-rune candidate with 2 edits: ratio exactly 0.6, which passes.
	got, found := r.Resolve("абвгд", []string{"абвxx"})
	if !found || got != "абвxx" {
		t.Fatalf("ratio equal to threshold must match, got (%q, %v)", got, found)
	}
}

func TestNewResolver_DefaultsThreshold(t *testing.T) {
	r := NewResolver(0)
	if r.threshold != DefaultThreshold {
		t.Fatalf("expected default threshold %v, got %v", DefaultThreshold, r.threshold)
	}
}
