package utils

import "testing"

func TestHashString(t *testing.T) {
	h1 := HashString("walk-in cooler")
	h2 := HashString("walk-in cooler")
	h3 := HashString("freezer")

	if h1 != h2 {
		t.Errorf("Expected identical hashes for identical input, got %s and %s", h1, h2)
	}
	if h1 == h3 {
		t.Error("Expected different hashes for different input")
	}
	if len(h1) != 40 {
		t.Errorf("Expected 40 hex chars, got %d", len(h1))
	}
}
