// Package generation exposes the article operations behind the HTTP
// API: full pipeline runs plus the in-place mutations (image renders,
// video attachment, publishing) a completed article supports.
package generation

import (
	"context"
	"encoding/base64"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	generrors "github.com/Johtaguerrero/artigogenio/internal/domain/errors"
	"github.com/Johtaguerrero/artigogenio/internal/domain/article"
	"github.com/Johtaguerrero/artigogenio/internal/domain/htmlfrag"
	"github.com/Johtaguerrero/artigogenio/internal/domain/llm"
	"github.com/Johtaguerrero/artigogenio/internal/domain/pipeline"
	"github.com/Johtaguerrero/artigogenio/internal/domain/seo"
	"github.com/Johtaguerrero/artigogenio/internal/infrastructure/store"
	"github.com/Johtaguerrero/artigogenio/internal/infrastructure/wordpress"
)

// Publisher publishes one article to the CMS.
type Publisher interface {
	Publish(ctx context.Context, a *article.Article, heroData []byte, heroMIME string) (*wordpress.PublishResult, error)
}

// PublisherFactory builds a publisher from stored credentials, so a
// settings change takes effect without a restart.
type PublisherFactory func(creds wordpress.Credentials) Publisher

// ImageRenderer is the dispatcher slice used for on-demand renders.
type ImageRenderer interface {
	GenerateImage(ctx context.Context, prompt, aspectRatio string) (*llm.ImageResult, error)
}

// Service coordinates pipeline runs, article mutations and publishing.
type Service struct {
	pipe       *pipeline.Pipeline
	renderer   ImageRenderer
	videos     pipeline.VideoResolver
	store      store.Store
	publishers PublisherFactory
	log        zerolog.Logger
}

// NewService wires the generation service.
func NewService(pipe *pipeline.Pipeline, renderer ImageRenderer, videos pipeline.VideoResolver, st store.Store, publishers PublisherFactory, log zerolog.Logger) *Service {
	return &Service{
		pipe:       pipe,
		renderer:   renderer,
		videos:     videos,
		store:      st,
		publishers: publishers,
		log:        log.With().Str("component", "generation").Logger(),
	}
}

// Generate runs the full pipeline for a request.
func (s *Service) Generate(ctx context.Context, req article.GenerationRequest) (*article.Article, error) {
	return s.pipe.Run(ctx, req)
}

// RenderImage renders the spec for one role on demand and re-persists.
func (s *Service) RenderImage(ctx context.Context, articleID string, role article.ImageRole) (*article.Article, error) {
	a, err := s.store.GetArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	spec := a.ImageByRole(role)
	if spec == nil {
		return nil, generrors.New(generrors.KindValidation, "article has no image slot for role "+string(role))
	}

	result, err := s.renderer.GenerateImage(ctx, spec.Prompt, spec.AspectRatio)
	if err != nil {
		return nil, err
	}
	spec.ModelUsed = result.ModelUsed
	spec.ResolutionUsed = result.Resolution
	if result.Placeholder {
		spec.RenderedURL = result.URL
		spec.RenderedData = ""
	} else {
		spec.RenderedData = base64.StdEncoding.EncodeToString(result.Data)
		spec.RenderedURL = "data:" + result.MIMEType + ";base64," + spec.RenderedData
	}

	if err := s.refreshTechnical(ctx, a); err != nil {
		return nil, err
	}
	a.Touch()
	if err := s.store.SaveArticle(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// AttachVideo resolves a manual video search, re-injects the embed and
// re-derives the technical payload.
func (s *Service) AttachVideo(ctx context.Context, articleID, query string) (*article.Article, error) {
	a, err := s.store.GetArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	asset, err := s.videos.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}

	a.Video = asset
	a.HTMLContent = htmlfrag.InjectVideo(a.HTMLContent, asset.EmbedMarkup)
	if err := s.refreshTechnical(ctx, a); err != nil {
		return nil, err
	}
	a.Touch()
	if err := s.store.SaveArticle(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Publish creates a CMS draft from the article and marks it published
// locally. No other fields change.
func (s *Service) Publish(ctx context.Context, articleID string) (*article.Article, *wordpress.PublishResult, error) {
	a, err := s.store.GetArticle(ctx, articleID)
	if err != nil {
		return nil, nil, err
	}
	if a.Status == article.StatusDraft {
		return nil, nil, generrors.New(generrors.KindValidation, "article generation has not completed")
	}

	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, nil, err
	}
	pub := s.publishers(wordpress.Credentials{
		BaseURL:     settings.WordPressURL,
		Username:    settings.WordPressUser,
		AppPassword: settings.WordPressAppSecret,
	})

	var heroData []byte
	heroMIME := "image/png"
	if hero := a.ImageByRole(article.RoleHero); hero != nil && hero.RenderedData != "" {
		if data, err := base64.StdEncoding.DecodeString(hero.RenderedData); err == nil {
			heroData = data
			heroMIME = mimeFromDataURL(hero.RenderedURL, heroMIME)
		}
	}

	result, err := pub.Publish(ctx, a, heroData, heroMIME)
	if err != nil {
		return nil, nil, err
	}

	a.MarkPublished(result.PostID)
	if err := s.store.SaveArticle(ctx, a); err != nil {
		return nil, nil, err
	}
	s.log.Info().Str("article_id", a.ID).Int("post_id", result.PostID).Msg("article published")
	return a, result, nil
}

// mimeFromDataURL recovers the MIME type the render stored in the hero
// data URL, so a JPEG or WebP hero is uploaded with its real type.
func mimeFromDataURL(dataURL, fallback string) string {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return fallback
	}
	mime, _, ok := strings.Cut(rest, ";")
	if !ok || mime == "" {
		return fallback
	}
	return mime
}

// refreshTechnical re-derives the structured data and CMS payload after
// any mutation of the source article.
func (s *Service) refreshTechnical(ctx context.Context, a *article.Article) error {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		settings = article.Settings{}
	}
	authorName := settings.AdminName
	if a.Request.AuthorID != "" {
		if author, err := s.store.GetAuthor(ctx, a.Request.AuthorID); err == nil {
			authorName = author.Name
		}
	}

	siteURL := a.Request.SiteURL
	if siteURL == "" {
		siteURL = settings.SiteURL
	}
	if siteURL == "" {
		siteURL = "https://example.com"
	}
	orgName := settings.OrganizationName
	if orgName == "" {
		if u, err := url.Parse(siteURL); err == nil {
			orgName = strings.TrimPrefix(u.Hostname(), "www.")
		}
	}

	tech, err := seo.Build(a, seo.SiteContext{
		SiteURL:          siteURL,
		OrganizationName: orgName,
		OrganizationLogo: settings.OrganizationLogo,
		AuthorName:       authorName,
	})
	if err != nil {
		return err
	}
	a.Technical = tech
	return nil
}
