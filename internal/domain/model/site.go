package model

// SiteSettings is the public-facing configuration block of site.json.
type SiteSettings struct {
	SiteName      string `json:"siteName"`
	SiteSub       string `json:"siteSub"`
	ICP           string `json:"icp"`
	About         string `json:"about"`
	FAQ           string `json:"faq"`
	Sitemap       string `json:"sitemap"`
	AnalyticsCode string `json:"analyticsCode"`
}

// DefaultSiteSettings is served when site.json is missing or empty.
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		SiteName: "Mind Atlas",
		SiteSub:  "Mood · Personality · Relationships · Career",
		ICP:      "",
		About:    "/about/",
		FAQ:      "/faq/",
		Sitemap:  "/sitemap-page/",
	}
}

// SEOSettings is the search-engine block of site.json.
type SEOSettings struct {
	GlobalTitle       string `json:"globalTitle"`
	GlobalDescription string `json:"globalDescription"`
	GlobalKeywords    string `json:"globalKeywords"`
	OGImage           string `json:"ogImage"`
	RobotsExtra       string `json:"robotsExtra"`
	AutoSitemap       bool   `json:"autoSitemap"`
	SitemapFreq       string `json:"sitemapFreq"`
	Canonical         string `json:"canonical"`
}

// CarouselSlide is one homepage hero slide.
type CarouselSlide struct {
	Background  string `json:"bg"`
	Title       string `json:"title"`
	Sub         string `json:"sub"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

// FeaturedSection groups quiz ids under a homepage shelf.
type FeaturedSection struct {
	Enabled bool     `json:"enabled"`
	Title   string   `json:"title"`
	Items   []string `json:"items"`
}

// FeaturedContent holds the three homepage shelves.
type FeaturedContent struct {
	Hot         FeaturedSection `json:"hot"`
	New         FeaturedSection `json:"new"`
	Recommended FeaturedSection `json:"recommended"`
}

// DefaultFeaturedContent returns empty but enabled shelves.
func DefaultFeaturedContent() FeaturedContent {
	return FeaturedContent{
		Hot:         FeaturedSection{Enabled: true, Title: "Trending", Items: []string{}},
		New:         FeaturedSection{Enabled: true, Title: "New Arrivals", Items: []string{}},
		Recommended: FeaturedSection{Enabled: true, Title: "Editor's Picks", Items: []string{}},
	}
}

// Category is one catalog navigation entry.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Image string `json:"image"`
}

// DefaultCategories seeds the catalog navigation.
func DefaultCategories() []Category {
	return []Category{
		{ID: "emotion", Name: "Mood", Icon: "😊"},
		{ID: "personality", Name: "Personality", Icon: "🎭"},
		{ID: "relationship", Name: "Relationships", Icon: "💕"},
		{ID: "career", Name: "Career", Icon: "💼"},
		{ID: "self", Name: "Self Discovery", Icon: "🔍"},
		{ID: "fun", Name: "Just for Fun", Icon: "✨"},
	}
}
