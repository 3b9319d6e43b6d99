package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"quizgate/internal/domain/model"

	"github.com/rs/zerolog"
)

// Store owns the flat JSON documents under one data directory and the
// advisory lock that serializes read-modify-write cycles across request
// handlers. Every multi-step mutation must run inside WithLock; reads of a
// single document may go lock-free because saves are atomic renames.
type Store struct {
	dir  string
	lock *FileLock
	log  *zerolog.Logger
}

const (
	codesFile     = "codes.json"
	sessionsFile  = "sessions.json"
	referralsFile = "referrals.json"
	analyticsFile = "analytics.json"
	siteFile      = "site.json"
	quizzesFile   = "tests.json"
	rateFile      = "ratelimit.json"
	lockFile      = ".lock"
)

func New(dir string, lockTimeout time.Duration, logger *zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{
		dir:  dir,
		lock: NewFileLock(filepath.Join(dir, lockFile), lockTimeout),
		log:  logger,
	}, nil
}

// WithLock runs fn while holding the exclusive data-directory lock. The
// lock is released on every exit path, including panics inside fn.
func (s *Store) WithLock(fn func() error) error {
	release, err := s.lock.Acquire()
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

// load reads a document into out. A missing file or unreadable/corrupt
// content leaves out untouched: callers always start from an empty
// document and must tolerate absent keys.
func (s *Store) load(name string, out any) {
	path := filepath.Join(s.dir, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("file", name).Msg("read data file")
		}
		return
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.log.Warn().Err(err).Str("file", name).Msg("corrupt data file, starting empty")
	}
}

// saveAtomic writes pretty JSON to a sibling temp file and renames it over
// the target, so a concurrent reader never observes a partial document.
func (s *Store) saveAtomic(name string, v any) error {
	path := filepath.Join(s.dir, name)
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

// ----- typed documents -----

type CodesDoc struct {
	Codes map[string]*model.ActivationCode `json:"codes"`
}

type SessionsDoc struct {
	Sessions map[string]*model.Session `json:"sessions"`
}

type ReferralsDoc struct {
	Referrers map[string]*model.Referrer `json:"referrers"`
	Logs      []model.ReferralHit        `json:"logs"`
}

type AnalyticsDoc struct {
	Events []model.Event `json:"events"`
}

// SiteDoc is the single flat site.json document: public settings plus the
// SEO, carousel, featured and category blocks managed from the admin panel.
type SiteDoc struct {
	model.SiteSettings

	SEOTitle       string `json:"seoTitle,omitempty"`
	SEODescription string `json:"seoDescription,omitempty"`
	SEOKeywords    string `json:"seoKeywords,omitempty"`
	OGImage        string `json:"ogImage,omitempty"`
	RobotsExtra    string `json:"robotsExtra,omitempty"`
	AutoSitemap    *bool  `json:"autoSitemap,omitempty"`
	SitemapFreq    string `json:"sitemapFreq,omitempty"`
	Canonical      string `json:"canonical,omitempty"`

	Carousel   []model.CarouselSlide  `json:"carousel,omitempty"`
	Featured   *model.FeaturedContent `json:"featured,omitempty"`
	Categories []model.Category       `json:"categories,omitempty"`
}

func (s *Store) LoadCodes() *CodesDoc {
	doc := &CodesDoc{}
	s.load(codesFile, doc)
	if doc.Codes == nil {
		doc.Codes = make(map[string]*model.ActivationCode)
	}
	return doc
}

func (s *Store) SaveCodes(doc *CodesDoc) error {
	return s.saveAtomic(codesFile, doc)
}

func (s *Store) LoadSessions() *SessionsDoc {
	doc := &SessionsDoc{}
	s.load(sessionsFile, doc)
	if doc.Sessions == nil {
		doc.Sessions = make(map[string]*model.Session)
	}
	return doc
}

func (s *Store) SaveSessions(doc *SessionsDoc) error {
	return s.saveAtomic(sessionsFile, doc)
}

func (s *Store) LoadReferrals() *ReferralsDoc {
	doc := &ReferralsDoc{}
	s.load(referralsFile, doc)
	if doc.Referrers == nil {
		doc.Referrers = make(map[string]*model.Referrer)
	}
	return doc
}

func (s *Store) SaveReferrals(doc *ReferralsDoc) error {
	return s.saveAtomic(referralsFile, doc)
}

func (s *Store) LoadAnalytics() *AnalyticsDoc {
	doc := &AnalyticsDoc{}
	s.load(analyticsFile, doc)
	return doc
}

func (s *Store) SaveAnalytics(doc *AnalyticsDoc) error {
	return s.saveAtomic(analyticsFile, doc)
}

func (s *Store) LoadSite() *SiteDoc {
	doc := &SiteDoc{}
	s.load(siteFile, doc)
	return doc
}

func (s *Store) SaveSite(doc *SiteDoc) error {
	return s.saveAtomic(siteFile, doc)
}

// LoadQuizzes reads the quiz catalog; tests.json is a bare JSON array.
func (s *Store) LoadQuizzes() []*model.Quiz {
	var quizzes []*model.Quiz
	s.load(quizzesFile, &quizzes)
	return quizzes
}

func (s *Store) SaveQuizzes(quizzes []*model.Quiz) error {
	if quizzes == nil {
		quizzes = []*model.Quiz{}
	}
	return s.saveAtomic(quizzesFile, quizzes)
}

func (s *Store) LoadRateLimits() map[string]*model.RateLimitCounter {
	counters := make(map[string]*model.RateLimitCounter)
	s.load(rateFile, &counters)
	return counters
}

func (s *Store) SaveRateLimits(counters map[string]*model.RateLimitCounter) error {
	return s.saveAtomic(rateFile, counters)
}
