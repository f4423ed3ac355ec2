package otp

import (
	"strconv"
	"testing"
)

func TestGenerate_SixDigitsInRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code, err := Generate()
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code length = %d, want 6 (code %q)", len(code), code)
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("code %q is not numeric: %v", code, err)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("code %d outside [100000, 999999]", n)
		}
	}
}

func TestGenerate_Randomness(t *testing.T) {
	seen := make(map[string]int)
	for i := 0; i < 200; i++ {
		code, err := Generate()
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		seen[code]++
	}
	// 200 draws from 900000 values; a handful of collisions would mean a broken source.
	if len(seen) < 190 {
		t.Errorf("only %d distinct codes out of 200", len(seen))
	}
}

func TestHash_Consistent(t *testing.T) {
	h1 := Hash("123456")
	h2 := Hash("123456")
	if h1 != h2 {
		t.Errorf("Hash not consistent: %q vs %q", h1, h2)
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64 (SHA-256 hex)", len(h1))
	}
	if h1 == "123456" {
		t.Error("Hash returned the plaintext")
	}
}

func TestHash_DifferentInputs(t *testing.T) {
	if Hash("123456") == Hash("654321") {
		t.Error("Hash produced same hash for different inputs")
	}
}

func TestEqual(t *testing.T) {
	testCases := []struct {
		a, b string
		want bool
	}{
		{"123456", "123456", true},
		{"123456", "123457", false},
		{"123456", "12345", false},
		{"", "", true},
	}
	for _, tc := range testCases {
		if got := Equal(tc.a, tc.b); got != tc.want {
			t.Errorf("Equal(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
