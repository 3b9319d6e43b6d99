package security

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := NewTokenCodec("test-secret")

	claims := SessionClaims{SID: "abc123", Code: "Q-AAAA-BBBB-CCCC-DDDD", Exp: 1900000000, Iat: 1700000000, V: 1}
	token, err := codec.Sign(claims)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if strings.Count(token, ".") != 1 {
		t.Fatalf("token %q: want exactly one dot", token)
	}

	got, ok := codec.DecodeSessionClaims(token)
	if !ok {
		t.Fatal("DecodeSessionClaims: token rejected")
	}
	if *got != claims {
		t.Errorf("got %+v want %+v", *got, claims)
	}
}

func TestTokenCodec_WrongSecret(t *testing.T) {
	token, err := NewTokenCodec("secret-a").Sign(SessionClaims{SID: "x", V: 1})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, ok := NewTokenCodec("secret-b").Verify(token); ok {
		t.Error("token signed with a different secret verified")
	}
}

func TestTokenCodec_BitFlip(t *testing.T) {
	codec := NewTokenCodec("test-secret")
	token, err := codec.Sign(SessionClaims{SID: "x", Exp: 1900000000, V: 1})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	// Flip one character in every position; none may verify.
	for i := 0; i < len(token); i++ {
		if token[i] == '.' {
			continue
		}
		mutated := []byte(token)
		if mutated[i] == 'A' {
			mutated[i] = 'B'
		} else {
			mutated[i] = 'A'
		}
		if string(mutated) == token {
			continue
		}
		if _, ok := codec.Verify(string(mutated)); ok {
			t.Fatalf("mutated token at position %d verified", i)
		}
	}
}

func TestTokenCodec_Malformed(t *testing.T) {
	codec := NewTokenCodec("test-secret")

	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no dot", "abcdef"},
		{"two dots", "a.b.c"},
		{"bad base64 payload", "!!!.c2ln"},
		{"bad base64 signature", "cGF5bG9hZA.!!!"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := codec.Verify(tc.token); ok {
				t.Errorf("Verify(%q) = ok, want rejected", tc.token)
			}
		})
	}
}

func TestTokenCodec_NonObjectPayload(t *testing.T) {
	codec := NewTokenCodec("test-secret")

	for _, payload := range []any{"just a string", 42, []int{1, 2, 3}, nil} {
		token, err := codec.Sign(payload)
		if err != nil {
			t.Fatalf("Sign(%v): %v", payload, err)
		}
		if _, ok := codec.Verify(token); ok {
			t.Errorf("non-object payload %v verified", payload)
		}
	}
}

func TestTokenCodec_AdminClaims(t *testing.T) {
	codec := NewTokenCodec("test-secret")

	token, err := codec.Sign(AdminClaims{Typ: "admin", Iat: 1700000000, Exp: 1700043200, V: 1})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	claims, ok := codec.DecodeAdminClaims(token)
	if !ok {
		t.Fatal("DecodeAdminClaims: token rejected")
	}
	if claims.Typ != "admin" {
		t.Errorf("Typ = %q, want admin", claims.Typ)
	}
	if claims.Exp != 1700043200 {
		t.Errorf("Exp = %d, want 1700043200", claims.Exp)
	}
}

func TestTokenCodec_VerifyReturnsPayload(t *testing.T) {
	codec := NewTokenCodec("test-secret")
	token, err := codec.Sign(map[string]any{"k": "v"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	raw, ok := codec.Verify(token)
	if !ok {
		t.Fatal("Verify rejected a valid token")
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("payload unmarshal: %v", err)
	}
	if m["k"] != "v" {
		t.Errorf(`payload["k"] = %q, want "v"`, m["k"])
	}
}
