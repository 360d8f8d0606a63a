package token

import (
	"net/url"
	"testing"
)

func TestRandomURLSafe(t *testing.T) {
	first, err := RandomURLSafe(32)
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}
	second, err := RandomURLSafe(32)
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}

	if first == second {
		t.Fatal("two secrets should not collide")
	}

	// 32 bytes base64url without padding is 43 characters.
	if len(first) != 43 {
		t.Fatalf("expected 43 chars, got %d", len(first))
	}

	// The secret travels in a reset link; it must survive URL encoding
	// untouched.
	if url.QueryEscape(first) != first {
		t.Fatalf("secret is not URL-safe: %q", first)
	}
}

func TestHash(t *testing.T) {
	got := Hash("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Fatalf("Hash(\"abc\") = %q, want %q", got, want)
	}

	if len(Hash("")) != 64 {
		t.Fatal("hash should always be 64 hex chars")
	}
	if Hash("a") == Hash("b") {
		t.Fatal("distinct inputs should not collide")
	}
}
