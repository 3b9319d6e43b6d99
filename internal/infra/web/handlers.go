package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"quizgate/internal/domain"
	"quizgate/internal/domain/model"
	"quizgate/internal/infra/logging"
	"quizgate/internal/infra/metrics"
	"quizgate/internal/infra/security"
	"quizgate/internal/usecase"
)

// Per-scope fixed-window budgets, keyed by client ip.
const (
	redeemMax    = 30
	logoutMax    = 60
	trackMax     = 300
	publicWindow = time.Minute

	maxCodeLen   = 64
	maxSourceLen = 100
)

type redeemRequest struct {
	Code        string `json:"code"`
	Source      string `json:"source"`
	RefCode     string `json:"refCode"`
	UTMSource   string `json:"utmSource"`
	UTMMedium   string `json:"utmMedium"`
	UTMCampaign string `json:"utmCampaign"`
}

func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, "redeem", redeemMax, publicWindow) {
		return
	}

	var req redeemRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		writeError(w, http.StatusBadRequest, "empty_code")
		return
	}
	if len(code) > maxCodeLen || !usecase.IsCodeShaped(code) {
		logging.With(r.Context(), s.log).Warn().Msg("malformed activation code rejected")
		writeError(w, http.StatusBadRequest, "invalid_code_format")
		return
	}

	src := model.SourceFields{
		Source:      clip(req.Source),
		RefCode:     clip(req.RefCode),
		UTMSource:   clip(req.UTMSource),
		UTMMedium:   clip(req.UTMMedium),
		UTMCampaign: clip(req.UTMCampaign),
	}

	res, err := s.activation.Redeem(r.Context(), code, clientIP(r), security.HashUA(r.UserAgent()), src)
	if err != nil {
		apiCode, status := errorStatus(err)
		metrics.IncRedemption(apiCode)
		if status == http.StatusInternalServerError {
			logging.With(r.Context(), s.log).Error().Err(err).Msg("redeem failed")
		}
		writeError(w, status, apiCode)
		return
	}

	metrics.IncRedemption("ok")
	writeOK(w, envelope{
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
		"grantDays": res.GrantDays,
	})
}

type tokenRequest struct {
	Token string `json:"token"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	token := strings.TrimSpace(req.Token)
	if token == "" {
		writeError(w, http.StatusBadRequest, "empty_token")
		return
	}

	res, err := s.activation.Validate(r.Context(), token, security.HashUA(r.UserAgent()))
	if err != nil {
		apiCode, status := errorStatus(err)
		if errors.Is(err, domain.ErrCodeDisabled) {
			// A disabled parent code invalidates a live session.
			apiCode = "code_disabled"
		}
		metrics.IncValidation(apiCode)
		if status == http.StatusInternalServerError {
			logging.With(r.Context(), s.log).Error().Err(err).Msg("validate failed")
		}
		writeError(w, status, apiCode)
		return
	}

	metrics.IncValidation("ok")
	writeOK(w, envelope{
		"expiresAt": res.ExpiresAt,
		"code":      res.Code,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, "logout", logoutMax, publicWindow) {
		return
	}

	var req tokenRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	token := strings.TrimSpace(req.Token)
	if token == "" {
		writeError(w, http.StatusBadRequest, "empty_token")
		return
	}

	if err := s.activation.Logout(r.Context(), token); err != nil {
		apiCode, status := errorStatus(err)
		if status == http.StatusInternalServerError {
			logging.With(r.Context(), s.log).Error().Err(err).Msg("logout failed")
		}
		writeError(w, status, apiCode)
		return
	}
	writeOK(w, nil)
}

type trackRequest struct {
	EventType string `json:"eventType"`
	TestID    string `json:"testId"`
	Source    string `json:"source"`
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, "track", trackMax, publicWindow) {
		return
	}

	var req trackRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if strings.TrimSpace(req.EventType) == "" {
		writeError(w, http.StatusBadRequest, "missing_event_type")
		return
	}

	if err := s.analytics.Record(r.Context(), req.EventType, req.TestID, req.Source); err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("record event failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeOK(w, nil)
}

// handleSite serves everything an anonymous visitor needs to render the
// public pages: settings, carousel, featured shelves and categories.
func (s *Server) handleSite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	settings, err := s.site.PublicSettings(ctx)
	if err != nil {
		logging.With(ctx, s.log).Error().Err(err).Msg("load site settings failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	carousel, _ := s.site.GetCarousel(ctx)
	featured, _ := s.site.GetFeatured(ctx)
	categories, _ := s.site.GetCategories(ctx)

	writeOK(w, envelope{
		"settings":   settings,
		"carousel":   carousel,
		"featured":   featured,
		"categories": categories,
	})
}

func clip(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxSourceLen {
		return s[:maxSourceLen]
	}
	return s
}
