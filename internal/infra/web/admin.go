package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"quizgate/internal/domain/model"
	"quizgate/internal/infra/logging"
	"quizgate/internal/usecase"
)

// Admin rate budgets. Login attempts get a much tighter window than the
// authenticated actions.
const (
	adminMax         = 120
	adminWindow      = time.Minute
	adminLoginMax    = 5
	adminLoginWindow = 15 * time.Minute
)

// adminRequest is the union of every action's input fields. Site and SEO
// update payloads arrive flattened at the top level, so those blocks are
// embedded.
type adminRequest struct {
	Action     string `json:"action"`
	Password   string `json:"password"`
	AdminToken string `json:"adminToken"`

	// createCodes
	Count     int    `json:"count"`
	Prefix    string `json:"prefix"`
	MaxUses   int    `json:"maxUses"`
	GrantDays int    `json:"grantDays"`
	ExpiresAt int64  `json:"expiresAt"`
	Note      string `json:"note"`
	Scope     string `json:"scope"`

	// code and referrer mutations
	Code     string `json:"code"`
	Disabled bool   `json:"disabled"`
	Q        string `json:"q"`

	// quiz catalog
	ID   string          `json:"id"`
	Test json.RawMessage `json:"test"`

	// referrers
	Name          string `json:"name"`
	CommissionPct int    `json:"commissionPct"`

	// recordEvent
	EventType string `json:"eventType"`
	TestID    string `json:"testId"`
	Source    string `json:"source"`

	// site surfaces
	model.SiteSettings
	model.SEOSettings
	Carousel   []model.CarouselSlide  `json:"carousel"`
	Featured   *model.FeaturedContent `json:"featured"`
	Categories []model.Category       `json:"categories"`
}

// handleAdmin dispatches on the action field. Login runs under its own
// strict per-ip limit; everything else requires a live admin token and the
// general admin limit.
func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	ctx := r.Context()

	if req.Action == "login" {
		if !s.allow(w, r, "admin_login", adminLoginMax, adminLoginWindow) {
			return
		}
		if req.Password == "" {
			writeError(w, http.StatusBadRequest, "missing_password")
			return
		}
		token, exp, err := s.admin.Login(ctx, req.Password)
		if err != nil {
			apiCode, status := errorStatus(err)
			writeError(w, status, apiCode)
			return
		}
		writeOK(w, envelope{"adminToken": token, "expiresAt": exp})
		return
	}

	if !s.allow(w, r, "admin", adminMax, adminWindow) {
		return
	}
	if !s.admin.Authorize(req.AdminToken) {
		logging.With(ctx, s.log).Warn().Str("action", req.Action).Msg("unauthorized admin request")
		writeError(w, http.StatusForbidden, "admin_unauthorized")
		return
	}

	switch req.Action {
	case "stats":
		stats, err := s.admin.Stats(ctx)
		if err != nil {
			s.adminFail(w, r, err)
			return
		}
		writeOK(w, envelope{"stats": stats})

	case "listCodes":
		codes, err := s.admin.ListCodes(ctx, req.Q)
		if err != nil {
			s.adminFail(w, r, err)
			return
		}
		writeOK(w, envelope{"codes": codes})

	case "createCodes":
		created, err := s.admin.CreateCodes(ctx, usecase.CreateCodesParams{
			Count:     req.Count,
			Prefix:    req.Prefix,
			MaxUses:   req.MaxUses,
			GrantDays: req.GrantDays,
			ExpiresAt: req.ExpiresAt,
			Note:      req.Note,
			Scope:     req.Scope,
		})
		if err != nil {
			s.adminFail(w, r, err)
			return
		}
		writeOK(w, envelope{"created": created})

	case "toggleCode":
		s.adminResult(w, r, s.admin.ToggleCode(ctx, strings.TrimSpace(req.Code), req.Disabled))

	case "deleteCode":
		s.adminResult(w, r, s.admin.DeleteCode(ctx, strings.TrimSpace(req.Code)))

	case "destroyExpired":
		removed, active, err := s.admin.DestroyExpired(ctx)
		if err != nil {
			s.adminFail(w, r, err)
			return
		}
		writeOK(w, envelope{"removed": removed, "activeSessions": active})

	case "listTests":
		tests, err := s.catalog.List(ctx)
		if err != nil {
			s.adminFail(w, r, err)
			return
		}
		writeOK(w, envelope{"tests": tests, "total": len(tests)})

	case "getTest":
		id := strings.TrimSpace(req.ID)
		if id == "" {
			writeError(w, http.StatusBadRequest, "missing_id")
			return
		}
		test, err := s.catalog.Get(ctx, id)
		if err != nil {
			s.adminFail(w, r, err)
			return
		}
		writeOK(w, envelope{"test": test})

	case "addTest":
		quiz, ok := decodeQuiz(req.Test)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_test_data")
			return
		}
		s.adminResult(w, r, s.catalog.Add(ctx, quiz))

	case "updateTest":
		id := strings.TrimSpace(req.ID)
		if id == "" {
			writeError(w, http.StatusBadRequest, "missing_id")
			return
		}
		quiz, ok := decodeQuiz(req.Test)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_test_data")
			return
		}
		s.adminResult(w, r, s.catalog.Update(ctx, id, quiz))

	case "deleteTest":
		id := strings.TrimSpace(req.ID)
		if id == "" {
			writeError(w, http.StatusBadRequest, "missing_id")
			return
		}
		s.adminResult(w, r, s.catalog.Delete(ctx, id))

	case "exportTest":
		id := strings.TrimSpace(req.ID)
		if id == "" {
			writeError(w, http.StatusBadRequest, "missing_id")
			return
		}
		test, filename, err := s.catalog.Export(ctx, id)
		if err != nil {
			s.adminFail(w, r, err)
			return
		}
		writeOK(w, envelope{"test": test, "filename": filename})

	case "importTest":
		quiz, ok := decodeQuiz(req.Test)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_test_data")
			return
		}
		updated, err := s.catalog.Import(ctx, quiz)
		if err != nil {
			s.adminFail(w, r, err)
			return
		}
		writeOK(w, envelope{"imported": quiz.ID, "updated": updated})

	case "listReferrers":
		referrers, err := s.referral.List(ctx)
		if err != nil {
			s.adminFail(w, r, err)
			return
		}
		writeOK(w, envelope{"referrers": referrers})

	case "createReferrer":
		if strings.TrimSpace(req.Name) == "" {
			writeError(w, http.StatusBadRequest, "missing_name")
			return
		}
		refCode, err := s.referral.Create(ctx, req.Name, req.CommissionPct, req.Note)
		if err != nil {
			s.adminFail(w, r, err)
			return
		}
		writeOK(w, envelope{"referralCode": refCode})

	case "toggleReferrer":
		s.adminResult(w, r, s.referral.Toggle(ctx, strings.TrimSpace(req.Code), req.Disabled))

	case "deleteReferrer":
		s.adminResult(w, r, s.referral.Delete(ctx, strings.TrimSpace(req.Code)))

	case "getAnalytics":
		report, err := s.analytics.Report(ctx)
		if err != nil {
			s.adminFail(w, r, err)
			return
		}
		writeOK(w, envelope{"analytics": report})

	case "getSourceReport":
		report, err := s.analytics.SourceReport(ctx)
		if err != nil {
			s.adminFail(w, r, err)
			return
		}
		writeOK(w, envelope{"sourceReport": report})

	case "recordEvent":
		eventType := strings.TrimSpace(req.EventType)
		if eventType == "" {
			eventType = "unknown"
		}
		s.adminResult(w, r, s.analytics.Record(ctx, eventType, req.TestID, req.Source))

	case "getSiteSettings":
		settings, err := s.site.GetSettings(ctx)
		if err != nil {
			s.adminFail(w, r, err)
			return
		}
		writeOK(w, envelope{"settings": settings})

	case "updateSiteSettings":
		if err := s.site.UpdateSettings(ctx, req.SiteSettings); err != nil {
			s.adminFail(w, r, err)
			return
		}
		settings, _ := s.site.GetSettings(ctx)
		writeOK(w, envelope{"settings": settings})

	case "getSeoSettings":
		seo, err := s.site.GetSEO(ctx)
		if err != nil {
			s.adminFail(w, r, err)
			return
		}
		writeOK(w, envelope{"seo": seo})

	case "updateSeoSettings":
		s.adminResult(w, r, s.site.UpdateSEO(ctx, req.SEOSettings))

	case "getCarousel":
		carousel, err := s.site.GetCarousel(ctx)
		if err != nil {
			s.adminFail(w, r, err)
			return
		}
		writeOK(w, envelope{"carousel": carousel})

	case "updateCarousel":
		s.adminResult(w, r, s.site.UpdateCarousel(ctx, req.Carousel))

	case "getFeaturedContent":
		featured, err := s.site.GetFeatured(ctx)
		if err != nil {
			s.adminFail(w, r, err)
			return
		}
		writeOK(w, envelope{"featured": featured})

	case "updateFeaturedContent":
		featured := model.DefaultFeaturedContent()
		if req.Featured != nil {
			featured = *req.Featured
		}
		s.adminResult(w, r, s.site.UpdateFeatured(ctx, featured))

	case "getCategories":
		categories, err := s.site.GetCategories(ctx)
		if err != nil {
			s.adminFail(w, r, err)
			return
		}
		writeOK(w, envelope{"categories": categories})

	case "updateCategories":
		s.adminResult(w, r, s.site.UpdateCategories(ctx, req.Categories))

	default:
		writeError(w, http.StatusBadRequest, "unknown_action")
	}
}

// adminResult writes {ok:true} or the mapped error for mutations that
// return nothing else.
func (s *Server) adminResult(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		s.adminFail(w, r, err)
		return
	}
	writeOK(w, nil)
}

func (s *Server) adminFail(w http.ResponseWriter, r *http.Request, err error) {
	apiCode, status := adminErrorStatus(err)
	if status == http.StatusInternalServerError {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("admin action failed")
	}
	writeError(w, status, apiCode)
}

func decodeQuiz(raw json.RawMessage) (*model.Quiz, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var quiz model.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return nil, false
	}
	return &quiz, true
}
