package security

import (
	"strings"
	"testing"
)

func TestSecureCompare(t *testing.T) {
	if !SecureCompare("hunter2", "hunter2") {
		t.Error("equal strings reported unequal")
	}
	if SecureCompare("hunter2", "hunter3") {
		t.Error("different strings reported equal")
	}
	if SecureCompare("hunter2", "hunter") {
		t.Error("different lengths reported equal")
	}
	if SecureCompare("", "x") {
		t.Error("empty vs non-empty reported equal")
	}
}

func TestHashUA(t *testing.T) {
	a := HashUA("Mozilla/5.0")
	b := HashUA("Mozilla/5.0")
	if a != b {
		t.Error("same input hashed differently")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
	if a == HashUA("curl/8.0") {
		t.Error("different inputs collided")
	}
}

func TestNewSessionID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		sid, err := NewSessionID()
		if err != nil {
			t.Fatalf("NewSessionID: %v", err)
		}
		if len(sid) != 32 {
			t.Fatalf("sid length = %d, want 32", len(sid))
		}
		if seen[sid] {
			t.Fatalf("duplicate sid %q", sid)
		}
		seen[sid] = true
	}
}

func TestValidateID(t *testing.T) {
	cases := []struct {
		id   string
		want bool
	}{
		{"mbti", true},
		{"scl-90", true},
		{"test_1", true},
		{"A1", true},
		{"", false},
		{"-leading-dash", false},
		{"_leading_underscore", false},
		{"has space", false},
		{"dot.dot", false},
		{"a..b", false},
		{"path/traversal", false},
		{strings.Repeat("a", 50), true},
		{strings.Repeat("a", 51), false},
	}
	for _, tc := range cases {
		if got := ValidateID(tc.id, 50); got != tc.want {
			t.Errorf("ValidateID(%q) = %v, want %v", tc.id, got, tc.want)
		}
	}
}
