package model

// SourceFields is the optional acquisition-tracking data a client may
// attach to a redemption.
type SourceFields struct {
	Source      string `json:"source"`
	RefCode     string `json:"refCode"`
	UTMSource   string `json:"utmSource"`
	UTMMedium   string `json:"utmMedium"`
	UTMCampaign string `json:"utmCampaign"`
}

// Session is the server-side record of a granted access window. It is
// keyed in sessions.json by a random 128-bit hex session id.
type Session struct {
	Code      string `json:"code"`
	IssuedAt  int64  `json:"issuedAt"`
	ExpiresAt int64  `json:"expiresAt"`
	IP        string `json:"ip"`     // informational only
	UAHash    string `json:"uaHash"` // empty when UA binding is off
	SourceFields
}

// NewSession builds a session for a just-redeemed code. The session never
// outlives the code: a code-level expiry caps the grant window.
func NewSession(code string, now int64, grantDays int, codeExpiresAt int64, ip, uaHash string, src SourceFields) *Session {
	if grantDays <= 0 {
		grantDays = 3
	}
	expiresAt := now + int64(grantDays)*86400
	if codeExpiresAt > 0 && codeExpiresAt < expiresAt {
		expiresAt = codeExpiresAt
	}
	if src.Source == "" {
		src.Source = "direct"
	}
	return &Session{
		Code:         code,
		IssuedAt:     now,
		ExpiresAt:    expiresAt,
		IP:           ip,
		UAHash:       uaHash,
		SourceFields: src,
	}
}

// Expired reports whether the session's access window has closed.
func (s *Session) Expired(now int64) bool {
	return s.ExpiresAt > 0 && s.ExpiresAt < now
}
