package usecase

import (
	"context"
	"time"

	"quizgate/internal/domain"
	"quizgate/internal/domain/model"
	"quizgate/internal/infra/logging"
	"quizgate/internal/infra/metrics"
	"quizgate/internal/infra/security"
	"quizgate/internal/infra/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ ActivationUseCase = (*activationUC)(nil)

// RedeemResult is what a successful redemption hands back to the client.
type RedeemResult struct {
	Token     string
	ExpiresAt int64
	GrantDays int
}

// ValidateResult is the outcome of a successful token validation.
type ValidateResult struct {
	ExpiresAt int64
	Code      string
}

// ActivationUseCase drives the visitor-facing activation lifecycle:
// consume a code and mint a session, validate a presented token, and
// revoke a session on logout.
type ActivationUseCase interface {
	Redeem(ctx context.Context, code, ip, uaHash string, src model.SourceFields) (*RedeemResult, error)
	Validate(ctx context.Context, token, uaHash string) (*ValidateResult, error)
	Logout(ctx context.Context, token string) error
}

type activationUC struct {
	store            *store.Store
	codec            *security.TokenCodec
	defaultGrantDays int
	bindUA           bool

	log *zerolog.Logger
	now func() time.Time
}

func NewActivationUseCase(st *store.Store, codec *security.TokenCodec, defaultGrantDays int, bindUA bool, logger *zerolog.Logger) *activationUC {
	return &activationUC{
		store:            st,
		codec:            codec,
		defaultGrantDays: defaultGrantDays,
		bindUA:           bindUA,
		log:              logger,
		now:              time.Now,
	}
}

// Redeem consumes one use of an activation code and mints a session plus
// its bearer token. The whole read-modify-write cycle over codes.json and
// sessions.json runs inside one critical section, so two concurrent
// redemptions of a maxUses=1 code can never both succeed.
func (a *activationUC) Redeem(ctx context.Context, code, ip, uaHash string, src model.SourceFields) (*RedeemResult, error) {
	defer logging.TraceDuration(a.log, "ActivationUC.Redeem")()

	var result *RedeemResult
	err := a.store.WithLock(func() error {
		now := a.now().Unix()
		codesDoc := a.store.LoadCodes()
		sessionsDoc := a.store.LoadSessions()
		a.pruneSessions(sessionsDoc, now)

		c, ok := codesDoc.Codes[code]
		if !ok {
			return domain.ErrCodeNotFound
		}
		if err := c.Redeemable(now); err != nil {
			return err
		}
		c.Consume(now)

		grantDays := c.GrantDays
		if grantDays <= 0 {
			grantDays = a.defaultGrantDays
		}
		if !a.bindUA {
			uaHash = ""
		}

		sid, err := security.NewSessionID()
		if err != nil {
			return err
		}
		sess := model.NewSession(code, now, grantDays, c.ExpiresAt, ip, uaHash, src)
		sessionsDoc.Sessions[sid] = sess

		token, err := a.codec.Sign(security.SessionClaims{
			SID:  sid,
			Code: code,
			Exp:  sess.ExpiresAt,
			Iat:  now,
			V:    1,
		})
		if err != nil {
			return err
		}

		if src.RefCode != "" {
			a.recordReferral(src.RefCode, code, ip, now)
		}

		if err := a.store.SaveCodes(codesDoc); err != nil {
			return err
		}
		if err := a.store.SaveSessions(sessionsDoc); err != nil {
			return err
		}

		result = &RedeemResult{Token: token, ExpiresAt: sess.ExpiresAt, GrantDays: grantDays}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.With(ctx, a.log).Info().
		Str("code", code).
		Int("grant_days", result.GrantDays).
		Int64("expires_at", result.ExpiresAt).
		Msg("code redeemed")
	return result, nil
}

// Validate checks a presented token against the signature, the embedded
// expiry, and the live session record. A cryptographically valid token is
// still rejected when its session was pruned or logged out, or when the
// parent code has since been disabled.
func (a *activationUC) Validate(ctx context.Context, token, uaHash string) (*ValidateResult, error) {
	defer logging.TraceDuration(a.log, "ActivationUC.Validate")()

	claims, ok := a.codec.DecodeSessionClaims(token)
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	if claims.Exp > 0 && claims.Exp < a.now().Unix() {
		return nil, domain.ErrTokenExpired
	}
	if claims.SID == "" {
		return nil, domain.ErrInvalidToken
	}

	var result *ValidateResult
	err := a.store.WithLock(func() error {
		now := a.now().Unix()
		sessionsDoc := a.store.LoadSessions()
		pruned := a.pruneSessions(sessionsDoc, now)

		sess, ok := sessionsDoc.Sessions[claims.SID]
		if !ok {
			// Persist the pruning so the expired record stays gone.
			if pruned > 0 {
				if err := a.store.SaveSessions(sessionsDoc); err != nil {
					a.log.Warn().Err(err).Msg("persist pruned sessions")
				}
			}
			return domain.ErrSessionMissing
		}

		if a.bindUA && sess.UAHash != "" && sess.UAHash != uaHash {
			return domain.ErrUAMismatch
		}

		codesDoc := a.store.LoadCodes()
		if c, ok := codesDoc.Codes[sess.Code]; ok && c.Disabled {
			return domain.ErrCodeDisabled
		}

		result = &ValidateResult{ExpiresAt: sess.ExpiresAt, Code: sess.Code}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Logout deletes the token's session record. Deleting an already-gone
// session is not an error.
func (a *activationUC) Logout(ctx context.Context, token string) error {
	defer logging.TraceDuration(a.log, "ActivationUC.Logout")()

	claims, ok := a.codec.DecodeSessionClaims(token)
	if !ok || claims.SID == "" {
		return domain.ErrInvalidToken
	}

	return a.store.WithLock(func() error {
		sessionsDoc := a.store.LoadSessions()
		delete(sessionsDoc.Sessions, claims.SID)
		return a.store.SaveSessions(sessionsDoc)
	})
}

// pruneSessions lazily deletes expired sessions during any session-map
// read, so state self-heals without a background sweep.
func (a *activationUC) pruneSessions(doc *store.SessionsDoc, now int64) int {
	pruned := 0
	for sid, sess := range doc.Sessions {
		if sess.Expired(now) {
			delete(doc.Sessions, sid)
			pruned++
		}
	}
	metrics.AddSessionsPruned(pruned)
	return pruned
}

// recordReferral attributes the redemption to a known, enabled referrer.
// Best-effort: attribution never fails the redemption.
func (a *activationUC) recordReferral(refCode, activationCode, ip string, now int64) {
	doc := a.store.LoadReferrals()
	ref, ok := doc.Referrers[refCode]
	if !ok || ref.Disabled {
		return
	}
	ref.TotalOrders++
	doc.Logs = append(doc.Logs, model.ReferralHit{
		ID:             uuid.NewString(),
		RefCode:        refCode,
		ActivationCode: activationCode,
		Time:           now,
		IP:             ip,
	})
	if err := a.store.SaveReferrals(doc); err != nil {
		a.log.Warn().Err(err).Str("ref_code", refCode).Msg("persist referral attribution")
	}
}
