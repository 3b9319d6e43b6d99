package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"sort"
	"strings"
	"time"

	"quizgate/internal/domain"
	"quizgate/internal/domain/model"
	"quizgate/internal/infra/logging"
	"quizgate/internal/infra/store"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ ReferralUseCase = (*referralUC)(nil)

// ReferrerListing is one row of the admin referrer table.
type ReferrerListing struct {
	Code string `json:"code"`
	model.Referrer
}

// ReferralUseCase manages distribution partners. Attribution of
// individual redemptions happens inside the redeem critical section.
type ReferralUseCase interface {
	List(ctx context.Context) ([]ReferrerListing, error)
	Create(ctx context.Context, name string, commissionPct int, note string) (refCode string, err error)
	Toggle(ctx context.Context, refCode string, disabled bool) error
	Delete(ctx context.Context, refCode string) error
}

type referralUC struct {
	store *store.Store
	log   *zerolog.Logger
	now   func() time.Time
}

func NewReferralUseCase(st *store.Store, logger *zerolog.Logger) *referralUC {
	return &referralUC{store: st, log: logger, now: time.Now}
}

func (r *referralUC) List(ctx context.Context) ([]ReferrerListing, error) {
	defer logging.TraceDuration(r.log, "ReferralUC.List")()

	doc := r.store.LoadReferrals()
	items := make([]ReferrerListing, 0, len(doc.Referrers))
	for code, ref := range doc.Referrers {
		items = append(items, ReferrerListing{Code: code, Referrer: *ref})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt != items[j].CreatedAt {
			return items[i].CreatedAt > items[j].CreatedAt
		}
		return items[i].Code < items[j].Code
	})
	return items, nil
}

func (r *referralUC) Create(ctx context.Context, name string, commissionPct int, note string) (string, error) {
	defer logging.TraceDuration(r.log, "ReferralUC.Create")()

	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.ErrInvalidArgument
	}
	if commissionPct < 0 || commissionPct > 100 {
		commissionPct = 10
	}

	var refCode string
	err := r.store.WithLock(func() error {
		doc := r.store.LoadReferrals()
		for {
			code, err := newReferralCode()
			if err != nil {
				return err
			}
			if _, exists := doc.Referrers[code]; !exists {
				refCode = code
				break
			}
		}
		doc.Referrers[refCode] = &model.Referrer{
			Name:          name,
			CommissionPct: commissionPct,
			CreatedAt:     r.now().Unix(),
			Note:          strings.TrimSpace(note),
		}
		return r.store.SaveReferrals(doc)
	})
	if err != nil {
		return "", err
	}
	return refCode, nil
}

func (r *referralUC) Toggle(ctx context.Context, refCode string, disabled bool) error {
	defer logging.TraceDuration(r.log, "ReferralUC.Toggle")()

	return r.store.WithLock(func() error {
		doc := r.store.LoadReferrals()
		ref, ok := doc.Referrers[refCode]
		if !ok {
			return domain.ErrNotFound
		}
		ref.Disabled = disabled
		return r.store.SaveReferrals(doc)
	})
}

func (r *referralUC) Delete(ctx context.Context, refCode string) error {
	defer logging.TraceDuration(r.log, "ReferralUC.Delete")()

	return r.store.WithLock(func() error {
		doc := r.store.LoadReferrals()
		if _, ok := doc.Referrers[refCode]; !ok {
			return domain.ErrNotFound
		}
		delete(doc.Referrers, refCode)
		return r.store.SaveReferrals(doc)
	})
}

// newReferralCode returns "REF-" plus 8 hex characters.
func newReferralCode() (string, error) {
	var buf [4]byte
	if _, err := io.ReadFull(rand.Reader, buf[:]); err != nil {
		return "", err
	}
	return "REF-" + strings.ToUpper(hex.EncodeToString(buf[:])), nil
}
