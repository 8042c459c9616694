package slug

import (
	"strings"
	"testing"
)

func TestGenerateLengthAndAlphabet(t *testing.T) {
	for i := 0; i < 100; i++ {
		s, err := Generate()
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		if len(s) != Length {
			t.Fatalf("slug %q has length %d, want %d", s, len(s), Length)
		}
		for _, c := range s {
			if !strings.ContainsRune(charset, c) {
				t.Fatalf("slug %q contains %q outside charset", s, c)
			}
		}
	}
}

func TestGenerateIndependence(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		s, err := Generate()
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		if seen[s] {
			t.Fatalf("duplicate slug %q after %d draws", s, i)
		}
		seen[s] = true
	}
}
