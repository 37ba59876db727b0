// Package article defines the article aggregate produced by the
// generation pipeline, plus the author and settings records persisted
// alongside it.
package article

import (
	"time"

	"github.com/google/uuid"
)

// Status tracks the article lifecycle.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusCompleted Status = "completed"
	StatusPublished Status = "published"
)

// WordCountTarget is one of the small fixed set of supported lengths.
type WordCountTarget string

const (
	WordCount800  WordCountTarget = "800"
	WordCount1500 WordCountTarget = "1500"
	WordCount2500 WordCountTarget = "2500"
)

// AdvancedOptions is the fixed set of generation toggles.
type AdvancedOptions struct {
	TableOfContents bool `json:"table_of_contents"`
	Glossary        bool `json:"glossary"`
	Tables          bool `json:"tables"`
	Lists           bool `json:"lists"`
	SecureSources   bool `json:"secure_sources"`
	AuthorCredit    bool `json:"author_credit"`
}

// GenerationRequest is the user input that seeds a pipeline run.
type GenerationRequest struct {
	Topic           string          `json:"topic"`
	TargetKeyword   string          `json:"target_keyword"`
	Language        string          `json:"language"`
	WordCount       WordCountTarget `json:"word_count"`
	SiteURL         string          `json:"site_url,omitempty"`
	AuthorID        string          `json:"author_id,omitempty"`
	AdvancedOptions AdvancedOptions `json:"advanced_options"`
}

// CompetitiveAnalysis is the advisory SERP snapshot taken once per run.
type CompetitiveAnalysis struct {
	CompetitorTitles []string `json:"competitor_titles"`
	ContentGaps      []string `json:"content_gaps"`
	PAAQuestions     []string `json:"paa_questions"`
	LSIKeywords      []string `json:"lsi_keywords"`
	StrategySummary  string   `json:"strategy_summary"`
}

// Structure is the generated title/subtitle/lead.
type Structure struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Lead     string `json:"lead"`
}

// ImageRole identifies the purpose of an image slot.
type ImageRole string

const (
	RoleHero   ImageRole = "hero"
	RoleSocial ImageRole = "social"
	RoleFeed   ImageRole = "feed"
	RoleDetail ImageRole = "detail"
)

// ImageSpec describes one planned or rendered image.
type ImageSpec struct {
	Role        ImageRole `json:"role"`
	AspectRatio string    `json:"aspect_ratio"`
	Prompt      string    `json:"prompt"`
	AltText     string    `json:"alt_text"`
	Title       string    `json:"title"`
	Caption     string    `json:"caption"`
	Filename    string    `json:"filename"`
	// RenderedURL stays empty until the image is rendered.
	RenderedURL    string `json:"rendered_url,omitempty"`
	RenderedData   string `json:"rendered_data,omitempty"` // base64, stripped under storage pressure
	ModelUsed      string `json:"model_used,omitempty"`
	ResolutionUsed string `json:"resolution_used,omitempty"`
}

// MediaStrategy is the stage-4 output: a video query plus a fixed list
// of image specs with fixed roles.
type MediaStrategy struct {
	VideoSearchQuery string      `json:"video_search_query"`
	ImageSpecs       []ImageSpec `json:"image_specs"`
}

// VideoAsset is a resolved and validated video embed. EmbedMarkup and
// ThumbnailURL are always derived from the extracted video ID, never
// taken verbatim from model output.
type VideoAsset struct {
	Query        string `json:"query"`
	Title        string `json:"title"`
	Channel      string `json:"channel"`
	CanonicalURL string `json:"canonical_url"`
	VideoID      string `json:"video_id"`
	EmbedMarkup  string `json:"embed_markup"`
	ThumbnailURL string `json:"thumbnail_url"`
	Caption      string `json:"caption"`
	AltText      string `json:"alt_text"`
}

// Opportunities holds secondary SEO angles.
type Opportunities struct {
	FeaturedSnippetHint string   `json:"featured_snippet_hint"`
	PAAList             []string `json:"paa_list"`
	NewsAngle           string   `json:"news_angle"`
}

// SeoMetadata is the stage-6 output with hard length ceilings enforced
// by the pipeline.
type SeoMetadata struct {
	SeoTitle         string        `json:"seo_title"`        // <= 60 chars
	MetaDescription  string        `json:"meta_description"` // <= 156 chars, keyword in first 100
	Slug             string        `json:"slug"`
	TargetKeyword    string        `json:"target_keyword"`
	Synonyms         []string      `json:"synonyms"`
	RelatedKeyphrase string        `json:"related_keyphrase"`
	Tags             []string      `json:"tags"`
	LSIKeywords      []string      `json:"lsi_keywords"`
	Opportunities    Opportunities `json:"opportunities"`
	ViralExcerpt     string        `json:"viral_excerpt"` // <= 180 chars
}

// WordPressPayload is the CMS post shape derived from the article.
// Status is always draft: publishing is an explicit user action.
type WordPressPayload struct {
	Title         string            `json:"title"`
	Content       string            `json:"content"`
	Status        string            `json:"status"`
	Slug          string            `json:"slug"`
	Excerpt       string            `json:"excerpt"`
	Categories    []string          `json:"categories,omitempty"`
	Tags          []string          `json:"tags,omitempty"`
	FeaturedMedia int               `json:"featured_media,omitempty"`
	Meta          map[string]string `json:"meta,omitempty"`
}

// TechnicalSeo bundles the derived structured data and CMS payload.
// Regenerated whenever the source article changes, never hand-edited.
type TechnicalSeo struct {
	SchemaJSONLD     string           `json:"schema_json_ld"`
	WordPressPayload WordPressPayload `json:"wordpress_payload"`
}

// Article is the aggregate root owned by the pipeline during generation
// and by the store afterwards.
type Article struct {
	ID          string              `json:"id"`
	Request     GenerationRequest   `json:"request"`
	Analysis    CompetitiveAnalysis `json:"analysis"`
	Structure   Structure           `json:"structure"`
	HTMLContent string              `json:"html_content"`
	Media       MediaStrategy       `json:"media"`
	Video       *VideoAsset         `json:"video,omitempty"`
	Seo         SeoMetadata         `json:"seo"`
	Technical   TechnicalSeo        `json:"technical"`
	Status      Status              `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	PublishedAt *time.Time          `json:"published_at,omitempty"`
	// RemoteID is the CMS post ID after publishing.
	RemoteID int `json:"remote_id,omitempty"`
}

// New creates an article seeded with only the request fields.
func New(req GenerationRequest) *Article {
	now := time.Now().UTC()
	return &Article{
		ID:        uuid.NewString(),
		Request:   req,
		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch bumps the update timestamp.
func (a *Article) Touch() {
	a.UpdatedAt = time.Now().UTC()
}

// MarkPublished transitions the article to published without altering
// other fields.
func (a *Article) MarkPublished(remoteID int) {
	now := time.Now().UTC()
	a.Status = StatusPublished
	a.RemoteID = remoteID
	a.PublishedAt = &now
	a.UpdatedAt = now
}

// ImageByRole returns the spec for a role, or nil.
func (a *Article) ImageByRole(role ImageRole) *ImageSpec {
	for i := range a.Media.ImageSpecs {
		if a.Media.ImageSpecs[i].Role == role {
			return &a.Media.ImageSpecs[i]
		}
	}
	return nil
}

// Author is a byline profile.
type Author struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	Expertise []string  `json:"expertise,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Settings holds the single per-deployment configuration record.
type Settings struct {
	AdminName          string `json:"admin_name,omitempty"`
	AdminEmail         string `json:"admin_email,omitempty"`
	SiteURL            string `json:"site_url,omitempty"`
	WordPressURL       string `json:"wordpress_url,omitempty"`
	WordPressUser      string `json:"wordpress_user,omitempty"`
	WordPressAppSecret string `json:"wordpress_app_secret,omitempty"`
	OrganizationName   string `json:"organization_name,omitempty"`
	OrganizationLogo   string `json:"organization_logo,omitempty"`
}
