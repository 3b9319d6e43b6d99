package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"quizgate/internal/domain"
	"quizgate/internal/infra/logging"
	"quizgate/internal/infra/store"

	"quizgate/internal/domain/model"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ AnalyticsUseCase = (*analyticsUC)(nil)

// AnalyticsReport is the admin dashboard rollup.
type AnalyticsReport struct {
	Codes struct {
		Total     int `json:"total"`
		Active    int `json:"active"`
		TotalUses int `json:"totalUses"`
	} `json:"codes"`
	Sessions struct {
		Active int `json:"active"`
		Today  int `json:"today"`
		Week   int `json:"week"`
		Month  int `json:"month"`
	} `json:"sessions"`
	Referrals struct {
		Total         int `json:"total"`
		Today         int `json:"today"`
		ReferrerCount int `json:"referrerCount"`
	} `json:"referrals"`
	Sources         map[string]int `json:"sources"`
	TestCompletions struct {
		Total int `json:"total"`
		Today int `json:"today"`
	} `json:"testCompletions"`
	PopularTests []TestPopularity `json:"popularTests"`
}

// TestPopularity pairs a quiz id with its completion count.
type TestPopularity struct {
	TestID string `json:"testId"`
	Count  int    `json:"count"`
}

// SourceReport groups live sessions by acquisition channel.
type SourceReport struct {
	BySource      map[string]int `json:"bySource"`
	ByReferral    map[string]int `json:"byReferral"`
	ByCampaign    map[string]int `json:"byCampaign"`
	TotalSessions int            `json:"totalSessions"`
}

// AnalyticsUseCase records client events and builds operator reports.
type AnalyticsUseCase interface {
	Record(ctx context.Context, eventType, testID, source string) error
	Report(ctx context.Context) (*AnalyticsReport, error)
	SourceReport(ctx context.Context) (*SourceReport, error)
}

type analyticsUC struct {
	store *store.Store
	log   *zerolog.Logger
	now   func() time.Time
}

func NewAnalyticsUseCase(st *store.Store, logger *zerolog.Logger) *analyticsUC {
	return &analyticsUC{store: st, log: logger, now: time.Now}
}

const (
	maxEventTypeLen = 50
	maxEventPartLen = 100
)

// Record appends one event, keeping only the newest model.MaxEvents.
func (a *analyticsUC) Record(ctx context.Context, eventType, testID, source string) error {
	defer logging.TraceDuration(a.log, "AnalyticsUC.Record")()

	eventType = truncate(strings.TrimSpace(eventType), maxEventTypeLen)
	if eventType == "" {
		return domain.ErrInvalidArgument
	}
	testID = truncate(strings.TrimSpace(testID), maxEventPartLen)
	source = truncate(strings.TrimSpace(source), maxEventPartLen)

	return a.store.WithLock(func() error {
		doc := a.store.LoadAnalytics()
		doc.Events = append(doc.Events, model.Event{
			ID:     ulid.Make().String(),
			Type:   eventType,
			TestID: testID,
			Source: source,
			Time:   a.now().Unix(),
		})
		if len(doc.Events) > model.MaxEvents {
			doc.Events = doc.Events[len(doc.Events)-model.MaxEvents:]
		}
		return a.store.SaveAnalytics(doc)
	})
}

// Report builds the dashboard rollup from codes, sessions, referrals and
// recorded events.
func (a *analyticsUC) Report(ctx context.Context) (*AnalyticsReport, error) {
	defer logging.TraceDuration(a.log, "AnalyticsUC.Report")()

	now := a.now()
	nowUnix := now.Unix()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Unix()
	weekAgo := nowUnix - 7*86400
	monthAgo := nowUnix - 30*86400

	report := &AnalyticsReport{Sources: make(map[string]int)}

	codesDoc := a.store.LoadCodes()
	report.Codes.Total = len(codesDoc.Codes)
	for _, c := range codesDoc.Codes {
		report.Codes.TotalUses += c.Uses
		if !c.Disabled && !c.IsExpired(nowUnix) && !c.IsUsedUp() {
			report.Codes.Active++
		}
	}

	sessionsDoc := a.store.LoadSessions()
	report.Sessions.Active = len(sessionsDoc.Sessions)
	for _, sess := range sessionsDoc.Sessions {
		if sess.IssuedAt >= today {
			report.Sessions.Today++
		}
		if sess.IssuedAt >= weekAgo {
			report.Sessions.Week++
		}
		if sess.IssuedAt >= monthAgo {
			report.Sessions.Month++
		}
		src := sess.Source
		if src == "" {
			src = "direct"
		}
		report.Sources[src]++
	}

	refDoc := a.store.LoadReferrals()
	report.Referrals.Total = len(refDoc.Logs)
	report.Referrals.ReferrerCount = len(refDoc.Referrers)
	for _, hit := range refDoc.Logs {
		if hit.Time >= today {
			report.Referrals.Today++
		}
	}

	analyticsDoc := a.store.LoadAnalytics()
	popularity := make(map[string]int)
	for _, evt := range analyticsDoc.Events {
		if evt.Type != model.EventTestComplete {
			continue
		}
		report.TestCompletions.Total++
		if evt.Time >= today {
			report.TestCompletions.Today++
		}
		id := evt.TestID
		if id == "" {
			id = "unknown"
		}
		popularity[id]++
	}
	report.PopularTests = topN(popularity, 10)

	return report, nil
}

// SourceReport groups the live session map by source, referral code and
// UTM campaign.
func (a *analyticsUC) SourceReport(ctx context.Context) (*SourceReport, error) {
	defer logging.TraceDuration(a.log, "AnalyticsUC.SourceReport")()

	sessionsDoc := a.store.LoadSessions()
	report := &SourceReport{
		BySource:      make(map[string]int),
		ByReferral:    make(map[string]int),
		ByCampaign:    make(map[string]int),
		TotalSessions: len(sessionsDoc.Sessions),
	}
	for _, sess := range sessionsDoc.Sessions {
		src := sess.Source
		if src == "" {
			src = "direct"
		}
		report.BySource[src]++
		if sess.RefCode != "" {
			report.ByReferral[sess.RefCode]++
		}
		if sess.UTMCampaign != "" {
			report.ByCampaign[sess.UTMCampaign]++
		}
	}
	return report, nil
}

func topN(counts map[string]int, n int) []TestPopularity {
	items := make([]TestPopularity, 0, len(counts))
	for id, count := range counts {
		items = append(items, TestPopularity{TestID: id, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].TestID < items[j].TestID
	})
	if len(items) > n {
		items = items[:n]
	}
	return items
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
