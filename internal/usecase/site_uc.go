package usecase

import (
	"context"
	"strings"

	"quizgate/internal/domain/model"
	"quizgate/internal/infra/logging"
	"quizgate/internal/infra/store"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ SiteUseCase = (*siteUC)(nil)

// PublicSettings is what anonymous visitors may see.
type PublicSettings struct {
	model.SiteSettings
	FreePreviewQuestions int `json:"freePreviewQuestions"`
}

// SiteUseCase manages the site.json document: public settings, SEO,
// homepage carousel, featured shelves and category navigation.
type SiteUseCase interface {
	PublicSettings(ctx context.Context) (*PublicSettings, error)
	GetSettings(ctx context.Context) (model.SiteSettings, error)
	UpdateSettings(ctx context.Context, settings model.SiteSettings) error
	GetSEO(ctx context.Context) (model.SEOSettings, error)
	UpdateSEO(ctx context.Context, seo model.SEOSettings) error
	GetCarousel(ctx context.Context) ([]model.CarouselSlide, error)
	UpdateCarousel(ctx context.Context, slides []model.CarouselSlide) error
	GetFeatured(ctx context.Context) (model.FeaturedContent, error)
	UpdateFeatured(ctx context.Context, featured model.FeaturedContent) error
	GetCategories(ctx context.Context) ([]model.Category, error)
	UpdateCategories(ctx context.Context, categories []model.Category) error
}

type siteUC struct {
	store                *store.Store
	freePreviewQuestions int
	log                  *zerolog.Logger
}

func NewSiteUseCase(st *store.Store, freePreviewQuestions int, logger *zerolog.Logger) *siteUC {
	return &siteUC{store: st, freePreviewQuestions: freePreviewQuestions, log: logger}
}

func (s *siteUC) PublicSettings(ctx context.Context) (*PublicSettings, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	return &PublicSettings{SiteSettings: settings, FreePreviewQuestions: s.freePreviewQuestions}, nil
}

func (s *siteUC) GetSettings(ctx context.Context) (model.SiteSettings, error) {
	defer logging.TraceDuration(s.log, "SiteUC.GetSettings")()

	doc := s.store.LoadSite()
	if doc.SiteName == "" {
		return model.DefaultSiteSettings(), nil
	}
	return doc.SiteSettings, nil
}

func (s *siteUC) UpdateSettings(ctx context.Context, settings model.SiteSettings) error {
	defer logging.TraceDuration(s.log, "SiteUC.UpdateSettings")()

	defaults := model.DefaultSiteSettings()
	settings.SiteName = strings.TrimSpace(settings.SiteName)
	if settings.SiteName == "" {
		settings.SiteName = defaults.SiteName
	}
	settings.SiteSub = strings.TrimSpace(settings.SiteSub)
	if settings.SiteSub == "" {
		settings.SiteSub = defaults.SiteSub
	}
	settings.ICP = strings.TrimSpace(settings.ICP)
	settings.About = orDefault(strings.TrimSpace(settings.About), defaults.About)
	settings.FAQ = orDefault(strings.TrimSpace(settings.FAQ), defaults.FAQ)
	settings.Sitemap = orDefault(strings.TrimSpace(settings.Sitemap), defaults.Sitemap)

	return s.store.WithLock(func() error {
		doc := s.store.LoadSite()
		doc.SiteSettings = settings
		return s.store.SaveSite(doc)
	})
}

func (s *siteUC) GetSEO(ctx context.Context) (model.SEOSettings, error) {
	defer logging.TraceDuration(s.log, "SiteUC.GetSEO")()

	doc := s.store.LoadSite()
	seo := model.SEOSettings{
		GlobalTitle:       doc.SEOTitle,
		GlobalDescription: doc.SEODescription,
		GlobalKeywords:    doc.SEOKeywords,
		OGImage:           doc.OGImage,
		RobotsExtra:       doc.RobotsExtra,
		AutoSitemap:       true,
		SitemapFreq:       orDefault(doc.SitemapFreq, "weekly"),
		Canonical:         doc.Canonical,
	}
	if doc.AutoSitemap != nil {
		seo.AutoSitemap = *doc.AutoSitemap
	}
	if seo.GlobalTitle == "" {
		seo.GlobalTitle = orDefault(doc.SiteName, model.DefaultSiteSettings().SiteName)
	}
	return seo, nil
}

func (s *siteUC) UpdateSEO(ctx context.Context, seo model.SEOSettings) error {
	defer logging.TraceDuration(s.log, "SiteUC.UpdateSEO")()

	return s.store.WithLock(func() error {
		doc := s.store.LoadSite()
		doc.SEOTitle = strings.TrimSpace(seo.GlobalTitle)
		doc.SEODescription = strings.TrimSpace(seo.GlobalDescription)
		doc.SEOKeywords = strings.TrimSpace(seo.GlobalKeywords)
		doc.OGImage = strings.TrimSpace(seo.OGImage)
		doc.RobotsExtra = strings.TrimSpace(seo.RobotsExtra)
		auto := seo.AutoSitemap
		doc.AutoSitemap = &auto
		doc.SitemapFreq = orDefault(strings.TrimSpace(seo.SitemapFreq), "weekly")
		doc.Canonical = strings.TrimSpace(seo.Canonical)
		return s.store.SaveSite(doc)
	})
}

func (s *siteUC) GetCarousel(ctx context.Context) ([]model.CarouselSlide, error) {
	defer logging.TraceDuration(s.log, "SiteUC.GetCarousel")()

	doc := s.store.LoadSite()
	if len(doc.Carousel) == 0 {
		return defaultCarousel(), nil
	}
	return doc.Carousel, nil
}

func (s *siteUC) UpdateCarousel(ctx context.Context, slides []model.CarouselSlide) error {
	defer logging.TraceDuration(s.log, "SiteUC.UpdateCarousel")()

	return s.store.WithLock(func() error {
		doc := s.store.LoadSite()
		doc.Carousel = slides
		return s.store.SaveSite(doc)
	})
}

func (s *siteUC) GetFeatured(ctx context.Context) (model.FeaturedContent, error) {
	defer logging.TraceDuration(s.log, "SiteUC.GetFeatured")()

	doc := s.store.LoadSite()
	if doc.Featured == nil {
		return model.DefaultFeaturedContent(), nil
	}
	return *doc.Featured, nil
}

func (s *siteUC) UpdateFeatured(ctx context.Context, featured model.FeaturedContent) error {
	defer logging.TraceDuration(s.log, "SiteUC.UpdateFeatured")()

	return s.store.WithLock(func() error {
		doc := s.store.LoadSite()
		doc.Featured = &featured
		return s.store.SaveSite(doc)
	})
}

func (s *siteUC) GetCategories(ctx context.Context) ([]model.Category, error) {
	defer logging.TraceDuration(s.log, "SiteUC.GetCategories")()

	doc := s.store.LoadSite()
	if len(doc.Categories) == 0 {
		return model.DefaultCategories(), nil
	}
	return doc.Categories, nil
}

func (s *siteUC) UpdateCategories(ctx context.Context, categories []model.Category) error {
	defer logging.TraceDuration(s.log, "SiteUC.UpdateCategories")()

	return s.store.WithLock(func() error {
		doc := s.store.LoadSite()
		doc.Categories = categories
		return s.store.SaveSite(doc)
	})
}

func defaultCarousel() []model.CarouselSlide {
	return []model.CarouselSlide{
		{
			Background:  "linear-gradient(135deg,#4facfe,#00f2fe)",
			Title:       "Know your mind",
			Sub:         "Mood, personality, relationship and career self-assessments",
			Description: "Mood, personality, relationship and career self-assessments",
		},
		{
			Background:  "linear-gradient(135deg,#f093fb,#f5576c)",
			Title:       "40+ validated scales",
			Sub:         "Take a quiz anywhere, anytime",
			Description: "Take a quiz anywhere, anytime",
		},
		{
			Background:  "linear-gradient(135deg,#667eea,#764ba2)",
			Title:       "Understand yourself first",
			Sub:         "Results are for self-reflection, be kind to yourself",
			Description: "Results are for self-reflection, be kind to yourself",
		},
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
