package model

import (
	"errors"
	"testing"

	"quizgate/internal/domain"
)

func TestActivationCode_RedeemablePrecedence(t *testing.T) {
	now := int64(1700000000)

	cases := []struct {
		name string
		code ActivationCode
		want error
	}{
		{"fresh", ActivationCode{MaxUses: 1}, nil},
		{"disabled", ActivationCode{MaxUses: 1, Disabled: true}, domain.ErrCodeDisabled},
		{"expired", ActivationCode{MaxUses: 1, ExpiresAt: now - 1}, domain.ErrCodeExpired},
		{"used up", ActivationCode{MaxUses: 1, Uses: 1}, domain.ErrCodeUsedUp},
		// Disabled wins over expired, expired wins over used up.
		{"disabled and expired", ActivationCode{MaxUses: 1, Disabled: true, ExpiresAt: now - 1}, domain.ErrCodeDisabled},
		{"disabled and used up", ActivationCode{MaxUses: 1, Uses: 1, Disabled: true}, domain.ErrCodeDisabled},
		{"expired and used up", ActivationCode{MaxUses: 1, Uses: 1, ExpiresAt: now - 1}, domain.ErrCodeExpired},
		{"expires later", ActivationCode{MaxUses: 1, ExpiresAt: now + 100}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.code.Redeemable(now); !errors.Is(got, tc.want) {
				t.Errorf("Redeemable() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestActivationCode_ConsumeMonotonic(t *testing.T) {
	now := int64(1700000000)
	code := ActivationCode{MaxUses: 3}

	for i := 1; i <= 3; i++ {
		if err := code.Redeemable(now); err != nil {
			t.Fatalf("redemption %d: %v", i, err)
		}
		code.Consume(now + int64(i))
		if code.Uses != i {
			t.Fatalf("Uses = %d after redemption %d", code.Uses, i)
		}
		if code.LastUsedAt != now+int64(i) {
			t.Fatalf("LastUsedAt = %d, want %d", code.LastUsedAt, now+int64(i))
		}
	}

	if err := code.Redeemable(now); !errors.Is(err, domain.ErrCodeUsedUp) {
		t.Errorf("exhausted code: got %v, want %v", err, domain.ErrCodeUsedUp)
	}
}

func TestNewSession_ExpiryCapping(t *testing.T) {
	now := int64(1700000000)

	// Code boundary wins over a longer grant.
	s := NewSession("C", now, 30, now+1000, "1.2.3.4", "", SourceFields{})
	if s.ExpiresAt != now+1000 {
		t.Errorf("capped ExpiresAt = %d, want %d", s.ExpiresAt, now+1000)
	}

	// No code expiry: full grant window.
	s = NewSession("C", now, 3, 0, "1.2.3.4", "", SourceFields{})
	if s.ExpiresAt != now+3*86400 {
		t.Errorf("ExpiresAt = %d, want %d", s.ExpiresAt, now+3*86400)
	}

	// Non-positive grant days fall back to the 3-day default.
	s = NewSession("C", now, 0, 0, "1.2.3.4", "", SourceFields{})
	if s.ExpiresAt != now+3*86400 {
		t.Errorf("default grant ExpiresAt = %d, want %d", s.ExpiresAt, now+3*86400)
	}
}

func TestNewSession_SourceDefaults(t *testing.T) {
	s := NewSession("C", 1700000000, 3, 0, "", "", SourceFields{})
	if s.Source != "direct" {
		t.Errorf("Source = %q, want direct", s.Source)
	}

	s = NewSession("C", 1700000000, 3, 0, "", "", SourceFields{Source: "wechat", RefCode: "REF-AB12CD34"})
	if s.Source != "wechat" || s.RefCode != "REF-AB12CD34" {
		t.Errorf("source fields not preserved: %+v", s.SourceFields)
	}
}

func TestSession_Expired(t *testing.T) {
	s := Session{ExpiresAt: 100}
	if s.Expired(99) {
		t.Error("session expired before its window closed")
	}
	if !s.Expired(101) {
		t.Error("session alive past its window")
	}
}
