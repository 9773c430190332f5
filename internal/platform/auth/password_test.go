package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	hash, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("expected hash to differ from the secret")
	}
	if !h.Compare(hash, "s3cret") {
		t.Error("expected matching secret to compare equal")
	}
	if h.Compare(hash, "S3cret") {
		t.Error("expected comparison to be case-sensitive")
	}
}

func TestBcryptHasher_Salted(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	a, _ := h.Hash("same")
	b, _ := h.Hash("same")
	if a == b {
		t.Error("expected two hashes of the same secret to differ")
	}
}

func TestBcryptHasher_EmptyHashNeverMatches(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	if h.Compare("", "") {
		t.Error("expected empty hash to never match")
	}
}

func TestBcryptHasher_TooLong(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	if _, err := h.Hash(strings.Repeat("x", 73)); err != ErrSecretTooLong {
		t.Errorf("expected ErrSecretTooLong, got %v", err)
	}
}

func TestNewBcryptHasher_InvalidCost(t *testing.T) {
	if h := NewBcryptHasher(0); h.cost != bcrypt.DefaultCost {
		t.Errorf("expected default cost, got %d", h.cost)
	}
}

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{"Fluffy", "FLUFFY"},
		{"\u017Fam", "SAM"},     // long s
		{"\u212Aitty", "kitty"}, // Kelvin sign
		{"\u00C9lise", "\u00E9LISE"},
	}
	for _, tt := range tests {
		if NormalizeAnswer(tt.a) != NormalizeAnswer(tt.b) {
			t.Errorf("expected %q and %q to fold to the same value", tt.a, tt.b)
		}
	}
	if NormalizeAnswer("Rex") == NormalizeAnswer("Rexy") {
		t.Error("different answers must stay different")
	}
}
