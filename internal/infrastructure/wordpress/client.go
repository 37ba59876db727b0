// Package wordpress publishes articles as WordPress drafts over the
// wp-json REST API, authenticated with an application password.
package wordpress

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	generrors "github.com/Johtaguerrero/artigogenio/internal/domain/errors"
	"github.com/Johtaguerrero/artigogenio/internal/domain/article"
)

// Credentials identifies the WordPress site and user.
type Credentials struct {
	BaseURL     string
	Username    string
	AppPassword string
}

// Client talks to one WordPress site.
type Client struct {
	httpClient *resty.Client
	creds      Credentials
}

// NewClient creates a WordPress client. Credentials are validated on
// use, not on construction, so settings can be saved incomplete.
func NewClient(creds Credentials, timeout time.Duration) *Client {
	return &Client{
		httpClient: resty.New().
			SetBaseURL(strings.TrimRight(creds.BaseURL, "/")).
			SetTimeout(timeout).
			SetBasicAuth(creds.Username, creds.AppPassword),
		creds: creds,
	}
}

type mediaResponse struct {
	ID        int    `json:"id"`
	SourceURL string `json:"source_url"`
}

type postResponse struct {
	ID   int    `json:"id"`
	Link string `json:"link"`
}

// PublishResult reports the created draft.
type PublishResult struct {
	PostID          int    `json:"post_id"`
	Link            string `json:"link"`
	FeaturedMediaID int    `json:"featured_media_id,omitempty"`
}

// Publish uploads the hero image (when rendered) and creates a draft
// post. The post is never created with a status other than draft.
func (c *Client) Publish(ctx context.Context, a *article.Article, heroData []byte, heroMIME string) (*PublishResult, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	mediaID := 0
	if len(heroData) > 0 {
		hero := a.ImageByRole(article.RoleHero)
		id, err := c.uploadMedia(ctx, heroData, heroMIME, hero)
		if err != nil {
			// A failed hero upload downgrades to a post without featured
			// media rather than aborting the publish.
			log.Warn().Err(err).Msg("hero image upload failed, publishing without featured media")
		} else {
			mediaID = id
		}
	}

	payload := a.Technical.WordPressPayload
	payload.Status = "draft"
	if mediaID != 0 {
		payload.FeaturedMedia = mediaID
	}

	var post postResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		SetResult(&post).
		Post("/wp-json/wp/v2/posts")
	if err != nil {
		return nil, transportError(err)
	}
	if resp.IsError() {
		return nil, httpError(resp.StatusCode(), "create post")
	}

	log.Info().Int("post_id", post.ID).Str("link", post.Link).Msg("draft post created")
	return &PublishResult{PostID: post.ID, Link: post.Link, FeaturedMediaID: mediaID}, nil
}

// uploadMedia uploads the binary and then patches alt/title/caption in
// a follow-up request, since the upload endpoint ignores those fields.
func (c *Client) uploadMedia(ctx context.Context, data []byte, mime string, spec *article.ImageSpec) (int, error) {
	filename := "hero.png"
	if spec != nil && spec.Filename != "" {
		filename = spec.Filename + extensionFor(mime)
	}

	var media mediaResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", mime).
		SetHeader("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename)).
		SetBody(data).
		SetResult(&media).
		Post("/wp-json/wp/v2/media")
	if err != nil {
		return 0, transportError(err)
	}
	if resp.IsError() {
		return 0, httpError(resp.StatusCode(), "upload media")
	}

	if spec != nil {
		meta := map[string]any{
			"alt_text":    spec.AltText,
			"title":       spec.Title,
			"caption":     spec.Caption,
			"description": spec.Caption,
		}
		resp, err = c.httpClient.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(meta).
			Post(fmt.Sprintf("/wp-json/wp/v2/media/%d", media.ID))
		if err != nil {
			return 0, transportError(err)
		}
		if resp.IsError() {
			log.Warn().Int("status", resp.StatusCode()).Msg("media metadata update rejected")
		}
	}
	return media.ID, nil
}

func (c *Client) validate() error {
	if strings.TrimSpace(c.creds.BaseURL) == "" {
		return generrors.New(generrors.KindConfiguration, "WordPress site URL not configured")
	}
	if strings.TrimSpace(c.creds.Username) == "" || strings.TrimSpace(c.creds.AppPassword) == "" {
		return generrors.New(generrors.KindConfiguration, "WordPress credentials not configured")
	}
	return nil
}

// transportError marks failures that never produced an HTTP status, so
// the UI can suggest checking the site URL and CORS setup.
func transportError(err error) error {
	return generrors.Wrap(generrors.KindTransport, "could not reach the WordPress site", err)
}

func httpError(status int, op string) error {
	if status == 401 || status == 403 {
		return generrors.New(generrors.KindCredentials, "WordPress rejected the credentials")
	}
	return generrors.New(generrors.KindUnavailable, fmt.Sprintf("WordPress %s failed (status %d)", op, status))
}

func extensionFor(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
