package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"quizgate/internal/domain"
	"quizgate/internal/domain/model"
	"quizgate/internal/infra/logging"
	"quizgate/internal/infra/metrics"
	"quizgate/internal/infra/security"
	"quizgate/internal/infra/store"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ AdminUseCase = (*adminUC)(nil)

// CreateCodesParams describes one admin batch-creation request.
type CreateCodesParams struct {
	Count     int
	Prefix    string
	MaxUses   int
	GrantDays int
	ExpiresAt int64
	Note      string
	Scope     string
}

// CodeListing is one row of the admin code table.
type CodeListing struct {
	Code string `json:"code"`
	model.ActivationCode
}

// CodeStats summarizes the code and session population.
type CodeStats struct {
	Total          int `json:"total"`
	Disabled       int `json:"disabled"`
	Expired        int `json:"expired"`
	UsedUp         int `json:"usedUp"`
	ActiveSessions int `json:"activeSessions"`
}

// AdminUseCase gates privileged registry mutations behind a password
// check and short-lived admin tokens.
type AdminUseCase interface {
	Login(ctx context.Context, password string) (token string, expiresAt int64, err error)
	Authorize(token string) bool
	CreateCodes(ctx context.Context, p CreateCodesParams) ([]string, error)
	ToggleCode(ctx context.Context, code string, disabled bool) error
	DeleteCode(ctx context.Context, code string) error
	ListCodes(ctx context.Context, query string) ([]CodeListing, error)
	Stats(ctx context.Context) (*CodeStats, error)
	DestroyExpired(ctx context.Context) (removed, activeSessions int, err error)
}

const (
	maxBatchSize      = 500
	defaultCodePrefix = "Q"
)

type adminUC struct {
	store            *store.Store
	codec            *security.TokenCodec
	adminPassword    string
	defaultGrantDays int
	tokenTTL         time.Duration

	log *zerolog.Logger
	now func() time.Time
}

func NewAdminUseCase(st *store.Store, codec *security.TokenCodec, adminPassword string, defaultGrantDays, tokenHours int, logger *zerolog.Logger) *adminUC {
	return &adminUC{
		store:            st,
		codec:            codec,
		adminPassword:    adminPassword,
		defaultGrantDays: defaultGrantDays,
		tokenTTL:         time.Duration(tokenHours) * time.Hour,
		log:              logger,
		now:              time.Now,
	}
}

// Login checks the configured password in constant time and mints a
// short-lived admin token.
func (a *adminUC) Login(ctx context.Context, password string) (string, int64, error) {
	defer logging.TraceDuration(a.log, "AdminUC.Login")()

	if !security.SecureCompare(a.adminPassword, password) {
		metrics.IncAdminLogin(false)
		logging.With(ctx, a.log).Warn().Msg("admin login failed")
		return "", 0, domain.ErrBadPassword
	}

	now := a.now().Unix()
	exp := now + int64(a.tokenTTL.Seconds())
	token, err := a.codec.Sign(security.AdminClaims{Typ: "admin", Iat: now, Exp: exp, V: 1})
	if err != nil {
		return "", 0, err
	}
	metrics.IncAdminLogin(true)
	logging.With(ctx, a.log).Info().Msg("admin login")
	return token, exp, nil
}

// Authorize fails closed: any missing, malformed, mistyped, or expired
// token denies access.
func (a *adminUC) Authorize(token string) bool {
	if token == "" {
		return false
	}
	claims, ok := a.codec.DecodeAdminClaims(token)
	if !ok {
		return false
	}
	if claims.Typ != "admin" {
		return false
	}
	return claims.Exp >= a.now().Unix()
}

// CreateCodes generates a batch of fresh codes, regenerating on the rare
// collision with an existing key.
func (a *adminUC) CreateCodes(ctx context.Context, p CreateCodesParams) ([]string, error) {
	defer logging.TraceDuration(a.log, "AdminUC.CreateCodes")()

	count := clamp(p.Count, 1, maxBatchSize)
	prefix := strings.ToUpper(strings.TrimSpace(p.Prefix))
	if prefix == "" {
		prefix = defaultCodePrefix
	}
	maxUses := p.MaxUses
	if maxUses < 1 {
		maxUses = 1
	}
	grantDays := p.GrantDays
	if grantDays < 1 {
		grantDays = a.defaultGrantDays
	}
	scope := strings.TrimSpace(p.Scope)
	if scope == "" {
		scope = "all"
	}

	var created []string
	err := a.store.WithLock(func() error {
		now := a.now().Unix()
		codesDoc := a.store.LoadCodes()

		for i := 0; i < count; i++ {
			var code string
			for {
				var err error
				code, err = generateCode(prefix)
				if err != nil {
					return err
				}
				if _, exists := codesDoc.Codes[code]; !exists {
					break
				}
			}
			codesDoc.Codes[code] = &model.ActivationCode{
				CreatedAt: now,
				ExpiresAt: p.ExpiresAt,
				MaxUses:   maxUses,
				GrantDays: grantDays,
				Meta:      model.CodeMeta{Note: strings.TrimSpace(p.Note), Scope: scope},
			}
			created = append(created, code)
		}
		return a.store.SaveCodes(codesDoc)
	})
	if err != nil {
		return nil, err
	}

	logging.With(ctx, a.log).Info().
		Int("count", len(created)).
		Str("prefix", prefix).
		Int("max_uses", maxUses).
		Msg("codes created")
	return created, nil
}

// ToggleCode flips the disabled flag; disabling is the one reversible
// terminal state of the code lifecycle.
func (a *adminUC) ToggleCode(ctx context.Context, code string, disabled bool) error {
	defer logging.TraceDuration(a.log, "AdminUC.ToggleCode")()

	return a.store.WithLock(func() error {
		codesDoc := a.store.LoadCodes()
		c, ok := codesDoc.Codes[code]
		if !ok {
			return domain.ErrNotFound
		}
		c.Disabled = disabled
		return a.store.SaveCodes(codesDoc)
	})
}

// DeleteCode removes the code and cascades to every session it granted.
func (a *adminUC) DeleteCode(ctx context.Context, code string) error {
	defer logging.TraceDuration(a.log, "AdminUC.DeleteCode")()

	return a.store.WithLock(func() error {
		codesDoc := a.store.LoadCodes()
		if _, ok := codesDoc.Codes[code]; !ok {
			return domain.ErrNotFound
		}
		delete(codesDoc.Codes, code)

		sessionsDoc := a.store.LoadSessions()
		for sid, sess := range sessionsDoc.Sessions {
			if sess.Code == code {
				delete(sessionsDoc.Sessions, sid)
			}
		}

		if err := a.store.SaveCodes(codesDoc); err != nil {
			return err
		}
		return a.store.SaveSessions(sessionsDoc)
	})
}

// ListCodes returns codes newest-first, optionally filtered by a
// case-insensitive substring of the code.
func (a *adminUC) ListCodes(ctx context.Context, query string) ([]CodeListing, error) {
	defer logging.TraceDuration(a.log, "AdminUC.ListCodes")()

	codesDoc := a.store.LoadCodes()
	query = strings.ToUpper(strings.TrimSpace(query))

	items := make([]CodeListing, 0, len(codesDoc.Codes))
	for code, c := range codesDoc.Codes {
		if query != "" && !strings.Contains(strings.ToUpper(code), query) {
			continue
		}
		items = append(items, CodeListing{Code: code, ActivationCode: *c})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt != items[j].CreatedAt {
			return items[i].CreatedAt > items[j].CreatedAt
		}
		return items[i].Code < items[j].Code
	})
	return items, nil
}

// Stats counts codes per terminal state and live sessions, pruning
// expired sessions on the way.
func (a *adminUC) Stats(ctx context.Context) (*CodeStats, error) {
	defer logging.TraceDuration(a.log, "AdminUC.Stats")()

	var stats CodeStats
	err := a.store.WithLock(func() error {
		now := a.now().Unix()
		codesDoc := a.store.LoadCodes()
		sessionsDoc := a.store.LoadSessions()

		pruned := 0
		for sid, sess := range sessionsDoc.Sessions {
			if sess.Expired(now) {
				delete(sessionsDoc.Sessions, sid)
				pruned++
			}
		}
		if pruned > 0 {
			metrics.AddSessionsPruned(pruned)
			if err := a.store.SaveSessions(sessionsDoc); err != nil {
				a.log.Warn().Err(err).Msg("persist pruned sessions")
			}
		}

		stats.Total = len(codesDoc.Codes)
		for _, c := range codesDoc.Codes {
			if c.Disabled {
				stats.Disabled++
			}
			if c.IsExpired(now) {
				stats.Expired++
			}
			if c.IsUsedUp() {
				stats.UsedUp++
			}
		}
		stats.ActiveSessions = len(sessionsDoc.Sessions)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// DestroyExpired deletes expired codes and prunes expired sessions.
func (a *adminUC) DestroyExpired(ctx context.Context) (int, int, error) {
	defer logging.TraceDuration(a.log, "AdminUC.DestroyExpired")()

	var removed, active int
	err := a.store.WithLock(func() error {
		now := a.now().Unix()
		codesDoc := a.store.LoadCodes()
		sessionsDoc := a.store.LoadSessions()

		for code, c := range codesDoc.Codes {
			if c.IsExpired(now) {
				delete(codesDoc.Codes, code)
				removed++
			}
		}
		for sid, sess := range sessionsDoc.Sessions {
			if sess.Expired(now) {
				delete(sessionsDoc.Sessions, sid)
			}
		}
		active = len(sessionsDoc.Sessions)

		if err := a.store.SaveCodes(codesDoc); err != nil {
			return err
		}
		return a.store.SaveSessions(sessionsDoc)
	})
	if err != nil {
		return 0, 0, err
	}
	return removed, active, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
