package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quizgate/internal/domain"
	"quizgate/internal/domain/model"
	"quizgate/internal/infra/store"
)

func seedCode(t *testing.T, st *store.Store, code string, c *model.ActivationCode) {
	t.Helper()
	doc := st.LoadCodes()
	doc.Codes[code] = c
	if err := st.SaveCodes(doc); err != nil {
		t.Fatalf("seed code: %v", err)
	}
}

func TestActivation_EndToEnd(t *testing.T) {
	st := newTestStore(t)
	uc := NewActivationUseCase(st, newTestCodec(), 3, false, &testLogger)
	ctx := context.Background()

	seedCode(t, st, "Q-TEST-TEST-TEST-TEST", &model.ActivationCode{MaxUses: 1, GrantDays: 3})

	res, err := uc.Redeem(ctx, "Q-TEST-TEST-TEST-TEST", "1.2.3.4", "", model.SourceFields{})
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if res.Token == "" {
		t.Fatal("Redeem returned empty token")
	}
	if res.GrantDays != 3 {
		t.Errorf("GrantDays = %d, want 3", res.GrantDays)
	}

	val, err := uc.Validate(ctx, res.Token, "")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if val.Code != "Q-TEST-TEST-TEST-TEST" {
		t.Errorf("validated code = %q", val.Code)
	}
	if val.ExpiresAt != res.ExpiresAt {
		t.Errorf("ExpiresAt mismatch: %d vs %d", val.ExpiresAt, res.ExpiresAt)
	}

	if err := uc.Logout(ctx, res.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := uc.Validate(ctx, res.Token, ""); !errors.Is(err, domain.ErrSessionMissing) {
		t.Errorf("Validate after logout = %v, want %v", err, domain.ErrSessionMissing)
	}

	// Logout is idempotent.
	if err := uc.Logout(ctx, res.Token); err != nil {
		t.Errorf("second Logout: %v", err)
	}
}

func TestActivation_RedeemErrors(t *testing.T) {
	st := newTestStore(t)
	uc := NewActivationUseCase(st, newTestCodec(), 3, false, &testLogger)
	ctx := context.Background()

	now := time.Now().Unix()
	seedCode(t, st, "DISABLED", &model.ActivationCode{MaxUses: 1, Disabled: true, ExpiresAt: now - 100})
	seedCode(t, st, "EXPIRED", &model.ActivationCode{MaxUses: 1, ExpiresAt: now - 100})
	seedCode(t, st, "USEDUP", &model.ActivationCode{MaxUses: 2, Uses: 2})

	cases := []struct {
		code string
		want error
	}{
		{"MISSING", domain.ErrCodeNotFound},
		{"DISABLED", domain.ErrCodeDisabled}, // disabled beats expired
		{"EXPIRED", domain.ErrCodeExpired},
		{"USEDUP", domain.ErrCodeUsedUp},
	}
	for _, tc := range cases {
		if _, err := uc.Redeem(ctx, tc.code, "1.2.3.4", "", model.SourceFields{}); !errors.Is(err, tc.want) {
			t.Errorf("Redeem(%s) = %v, want %v", tc.code, err, tc.want)
		}
	}
}

func TestActivation_ConcurrentRedemption(t *testing.T) {
	st := newTestStore(t)
	uc := NewActivationUseCase(st, newTestCodec(), 3, false, &testLogger)
	ctx := context.Background()

	seedCode(t, st, "ONCE", &model.ActivationCode{MaxUses: 1})

	const attempts = 4
	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = uc.Redeem(ctx, "ONCE", "1.2.3.4", "", model.SourceFields{})
		}(i)
	}
	wg.Wait()

	successes, usedUp := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domain.ErrCodeUsedUp):
			usedUp++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("successes = %d, want exactly 1", successes)
	}
	if usedUp != attempts-1 {
		t.Errorf("used_up failures = %d, want %d", usedUp, attempts-1)
	}
	if got := st.LoadCodes().Codes["ONCE"].Uses; got != 1 {
		t.Errorf("Uses = %d, want 1", got)
	}
}

func TestActivation_SessionCappedByCodeExpiry(t *testing.T) {
	st := newTestStore(t)
	uc := NewActivationUseCase(st, newTestCodec(), 3, false, &testLogger)
	uc.now = func() time.Time { return time.Unix(1700000000, 0) }
	ctx := context.Background()

	seedCode(t, st, "CAPPED", &model.ActivationCode{MaxUses: 1, GrantDays: 30, ExpiresAt: 1700001000})

	res, err := uc.Redeem(ctx, "CAPPED", "1.2.3.4", "", model.SourceFields{})
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if res.ExpiresAt != 1700001000 {
		t.Errorf("session ExpiresAt = %d, want capped at 1700001000", res.ExpiresAt)
	}
}

func TestActivation_ExpiredTokenRejected(t *testing.T) {
	st := newTestStore(t)
	uc := NewActivationUseCase(st, newTestCodec(), 3, false, &testLogger)
	ctx := context.Background()

	now := time.Unix(1700000000, 0)
	uc.now = func() time.Time { return now }
	seedCode(t, st, "SHORT", &model.ActivationCode{MaxUses: 1, GrantDays: 1})

	res, err := uc.Redeem(ctx, "SHORT", "1.2.3.4", "", model.SourceFields{})
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}

	// A cryptographically valid token dies with its exp claim.
	now = now.Add(2 * 24 * time.Hour)
	if _, err := uc.Validate(ctx, res.Token, ""); !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("Validate = %v, want %v", err, domain.ErrTokenExpired)
	}
}

func TestActivation_UABinding(t *testing.T) {
	st := newTestStore(t)
	uc := NewActivationUseCase(st, newTestCodec(), 3, true, &testLogger)
	ctx := context.Background()

	seedCode(t, st, "BOUND", &model.ActivationCode{MaxUses: 1})

	res, err := uc.Redeem(ctx, "BOUND", "1.2.3.4", "ua-hash-a", model.SourceFields{})
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}

	if _, err := uc.Validate(ctx, res.Token, "ua-hash-a"); err != nil {
		t.Errorf("Validate with matching UA: %v", err)
	}
	if _, err := uc.Validate(ctx, res.Token, "ua-hash-b"); !errors.Is(err, domain.ErrUAMismatch) {
		t.Errorf("Validate with changed UA = %v, want %v", err, domain.ErrUAMismatch)
	}
}

func TestActivation_DisabledCodeKillsSession(t *testing.T) {
	st := newTestStore(t)
	uc := NewActivationUseCase(st, newTestCodec(), 3, false, &testLogger)
	ctx := context.Background()

	seedCode(t, st, "TOGGLE", &model.ActivationCode{MaxUses: 1})
	res, err := uc.Redeem(ctx, "TOGGLE", "1.2.3.4", "", model.SourceFields{})
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}

	doc := st.LoadCodes()
	doc.Codes["TOGGLE"].Disabled = true
	if err := st.SaveCodes(doc); err != nil {
		t.Fatalf("save codes: %v", err)
	}

	if _, err := uc.Validate(ctx, res.Token, ""); !errors.Is(err, domain.ErrCodeDisabled) {
		t.Errorf("Validate = %v, want %v", err, domain.ErrCodeDisabled)
	}
}

func TestActivation_ReferralAttribution(t *testing.T) {
	st := newTestStore(t)
	uc := NewActivationUseCase(st, newTestCodec(), 3, false, &testLogger)
	ctx := context.Background()

	refDoc := st.LoadReferrals()
	refDoc.Referrers["REF-AAAA1111"] = &model.Referrer{Name: "partner"}
	refDoc.Referrers["REF-BBBB2222"] = &model.Referrer{Name: "former partner", Disabled: true}
	if err := st.SaveReferrals(refDoc); err != nil {
		t.Fatalf("seed referrers: %v", err)
	}
	seedCode(t, st, "REF1", &model.ActivationCode{MaxUses: 1})
	seedCode(t, st, "REF2", &model.ActivationCode{MaxUses: 1})
	seedCode(t, st, "REF3", &model.ActivationCode{MaxUses: 1})

	// Enabled referrer gets the hit.
	if _, err := uc.Redeem(ctx, "REF1", "1.2.3.4", "", model.SourceFields{RefCode: "REF-AAAA1111"}); err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	// Disabled and unknown referrers are ignored, never fail the redemption.
	if _, err := uc.Redeem(ctx, "REF2", "1.2.3.4", "", model.SourceFields{RefCode: "REF-BBBB2222"}); err != nil {
		t.Fatalf("Redeem with disabled referrer: %v", err)
	}
	if _, err := uc.Redeem(ctx, "REF3", "1.2.3.4", "", model.SourceFields{RefCode: "REF-UNKNOWN0"}); err != nil {
		t.Fatalf("Redeem with unknown referrer: %v", err)
	}

	got := st.LoadReferrals()
	if n := got.Referrers["REF-AAAA1111"].TotalOrders; n != 1 {
		t.Errorf("enabled referrer TotalOrders = %d, want 1", n)
	}
	if n := got.Referrers["REF-BBBB2222"].TotalOrders; n != 0 {
		t.Errorf("disabled referrer TotalOrders = %d, want 0", n)
	}
	if len(got.Logs) != 1 {
		t.Errorf("referral logs = %d, want 1", len(got.Logs))
	} else if got.Logs[0].RefCode != "REF-AAAA1111" || got.Logs[0].ActivationCode != "REF1" {
		t.Errorf("referral log = %+v", got.Logs[0])
	}
}

func TestActivation_PruneExpiredSessions(t *testing.T) {
	st := newTestStore(t)
	uc := NewActivationUseCase(st, newTestCodec(), 3, false, &testLogger)
	ctx := context.Background()

	sessDoc := st.LoadSessions()
	sessDoc.Sessions["dead"] = &model.Session{Code: "X", ExpiresAt: 1}
	if err := st.SaveSessions(sessDoc); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	seedCode(t, st, "LIVE", &model.ActivationCode{MaxUses: 1})

	if _, err := uc.Redeem(ctx, "LIVE", "1.2.3.4", "", model.SourceFields{}); err != nil {
		t.Fatalf("Redeem: %v", err)
	}

	got := st.LoadSessions()
	if _, ok := got.Sessions["dead"]; ok {
		t.Error("expired session survived the redeem prune")
	}
	if len(got.Sessions) != 1 {
		t.Errorf("sessions = %d, want 1", len(got.Sessions))
	}
}

func TestActivation_InvalidToken(t *testing.T) {
	st := newTestStore(t)
	uc := NewActivationUseCase(st, newTestCodec(), 3, false, &testLogger)
	ctx := context.Background()

	for _, token := range []string{"", "garbage", "a.b", "a.b.c"} {
		if _, err := uc.Validate(ctx, token, ""); !errors.Is(err, domain.ErrInvalidToken) {
			t.Errorf("Validate(%q) = %v, want %v", token, err, domain.ErrInvalidToken)
		}
	}
}
