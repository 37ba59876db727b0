// Package pipeline orchestrates the article generation run: a strictly
// ordered sequence of dependent generation stages in which each stage's
// output feeds the next stage's prompt context. Load-bearing stage
// failures abort the run un-persisted; advisory stages degrade to empty
// defaults.
package pipeline

import (
	"context"

	"github.com/Johtaguerrero/artigogenio/internal/domain/article"
	"github.com/Johtaguerrero/artigogenio/internal/domain/llm"
)

// Generator is the slice of the model dispatcher the pipeline uses.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts llm.GenerateOptions) (*llm.GenerateResult, error)
	GenerateImage(ctx context.Context, prompt, aspectRatio string) (*llm.ImageResult, error)
}

// SearchResult is one organic web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// LinkSearcher provides web search for competitor enrichment and
// site-restricted internal-link discovery. Both uses are best-effort.
type LinkSearcher interface {
	Search(ctx context.Context, query string, num int) ([]SearchResult, error)
	SiteSearch(ctx context.Context, domain, query string, num int) ([]SearchResult, error)
}

// VideoResolver resolves a search query into a validated video asset.
type VideoResolver interface {
	Resolve(ctx context.Context, query string) (*article.VideoAsset, error)
}

// Store persists the completed article. The pipeline writes only after
// every load-bearing stage has succeeded.
type Store interface {
	SaveArticle(ctx context.Context, a *article.Article) error
}

// Observer receives per-stage outcomes for metrics. Optional.
type Observer interface {
	StageCompleted(stage string, success bool, seconds float64)
}

// Config exposes the product-tuning knobs the observed variants
// hardcoded inconsistently: per-stage enrichment policy, cardinalities
// and ceilings are configuration here, with one consistent failure
// policy per stage.
type Config struct {
	TitleMaxWords     int
	InternalLinkCount int
	SynonymCount      int
	TagCount          int
	SeoTitleMax       int
	MetaDescMax       int
	MetaDescKeywordIn int
	ExcerptMax        int
	ImageCount        int
	// EnableInternalLinks gates the best-effort link discovery sub-stage.
	EnableInternalLinks bool
	// EnableVideoLookup gates the best-effort automatic video lookup.
	EnableVideoLookup bool
	// EnableHeroRender gates the eager hero image render.
	EnableHeroRender bool
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		TitleMaxWords:       7,
		InternalLinkCount:   5,
		SynonymCount:        4,
		TagCount:            5,
		SeoTitleMax:         60,
		MetaDescMax:         156,
		MetaDescKeywordIn:   100,
		ExcerptMax:          180,
		ImageCount:          4,
		EnableInternalLinks: true,
		EnableVideoLookup:   true,
		EnableHeroRender:    true,
	}
}

// imageSlots fixes the roles and aspect ratios of the media strategy.
var imageSlots = []struct {
	Role  article.ImageRole
	Ratio string
}{
	{article.RoleHero, "16:9"},
	{article.RoleSocial, "1:1"},
	{article.RoleFeed, "4:3"},
	{article.RoleDetail, "3:4"},
}

// Stage names, used for logging, metrics and error annotation.
const (
	StageAnalysis  = "competitive_analysis"
	StageStructure = "structure"
	StageBody      = "body"
	StageMedia     = "media_strategy"
	StageHero      = "hero_render"
	StageMetadata  = "metadata"
	StageAssembly  = "assembly"
	StagePersist   = "persist"
)
