package model

import (
	"quizgate/internal/domain"
)

// CodeMeta carries free-form operator annotations on a code batch.
type CodeMeta struct {
	Note  string `json:"note"`
	Scope string `json:"scope"`
}

// ActivationCode is a shareable credential consumed a limited number of
// times to grant access. The map key in codes.json is the code string
// itself, so the struct does not repeat it.
type ActivationCode struct {
	CreatedAt  int64    `json:"createdAt"`
	ExpiresAt  int64    `json:"expiresAt"` // unix seconds; 0 = never
	MaxUses    int      `json:"maxUses"`
	Uses       int      `json:"uses"`
	LastUsedAt int64    `json:"lastUsedAt"`
	Disabled   bool     `json:"disabled"`
	GrantDays  int      `json:"grantDays"`
	Meta       CodeMeta `json:"meta"`
}

// Redeemable reports whether the code can be consumed at the given time.
// Check order is part of the API contract: disabled beats expired beats
// used up, so a toggled-off code always reports disabled first.
func (c *ActivationCode) Redeemable(now int64) error {
	if c.Disabled {
		return domain.ErrCodeDisabled
	}
	if c.ExpiresAt > 0 && c.ExpiresAt < now {
		return domain.ErrCodeExpired
	}
	if c.Uses >= c.MaxUses {
		return domain.ErrCodeUsedUp
	}
	return nil
}

// Consume burns one use. Callers must have checked Redeemable under the
// store lock first; Consume never takes Uses past MaxUses on its own.
func (c *ActivationCode) Consume(now int64) {
	c.Uses++
	c.LastUsedAt = now
}

// IsExpired reports whether the code itself has passed its expiry.
func (c *ActivationCode) IsExpired(now int64) bool {
	return c.ExpiresAt > 0 && c.ExpiresAt < now
}

// IsUsedUp reports whether all uses have been consumed.
func (c *ActivationCode) IsUsedUp() bool {
	return c.Uses >= c.MaxUses
}
