// Package video resolves a free-text query into a validated YouTube
// asset. Only the extracted video ID is trusted; embed markup and
// thumbnail URLs are always derived from it, never taken from model
// output.
package video

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	generrors "github.com/Johtaguerrero/artigogenio/internal/domain/errors"
	"github.com/Johtaguerrero/artigogenio/internal/domain/article"
	"github.com/Johtaguerrero/artigogenio/internal/domain/llm"
)

var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractID pulls the 11-character video ID out of a YouTube URL. The
// host is matched exactly against the known YouTube domains, so a
// lookalike host carrying a watch path never passes. Recognized URL
// families: standard watch, short-link, embed and shorts.
func ExtractID(rawURL string) (string, error) {
	raw := strings.TrimSpace(rawURL)
	if raw != "" && !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", generrors.New(generrors.KindValidation, "unparseable video URL: "+rawURL)
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
		if i := strings.IndexByte(id, '/'); i >= 0 {
			id = id[:i]
		}
	case "youtube.com", "youtube-nocookie.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/embed/"):
			id = strings.Trim(strings.TrimPrefix(u.Path, "/embed/"), "/")
		case strings.HasPrefix(u.Path, "/shorts/"):
			id = strings.Trim(strings.TrimPrefix(u.Path, "/shorts/"), "/")
		}
	}
	if !videoIDRe.MatchString(id) {
		return "", generrors.New(generrors.KindValidation, "URL does not match a recognized video watch pattern: "+rawURL)
	}
	return id, nil
}

// EmbedMarkup derives a privacy-respecting sandboxed iframe for a video ID.
func EmbedMarkup(videoID, title string) string {
	return fmt.Sprintf(
		`<iframe src="https://www.youtube-nocookie.com/embed/%s" title=%q loading="lazy" allowfullscreen sandbox="allow-scripts allow-same-origin allow-presentation"></iframe>`,
		videoID, title,
	)
}

// ThumbnailURL derives the maximum-resolution thumbnail for a video ID.
func ThumbnailURL(videoID string) string {
	return fmt.Sprintf("https://i.ytimg.com/vi/%s/maxresdefault.jpg", videoID)
}

// generator is the slice of the dispatcher the resolver needs.
type generator interface {
	Generate(ctx context.Context, prompt string, opts llm.GenerateOptions) (*llm.GenerateResult, error)
}

// Resolver finds a real video for a search query via a search-grounded
// structured generation.
type Resolver struct {
	gen generator
}

// NewResolver creates a resolver on top of the model dispatcher.
func NewResolver(gen generator) *Resolver {
	return &Resolver{gen: gen}
}

type lookupResponse struct {
	Title   string `json:"title"`
	Channel string `json:"channel"`
	URL     string `json:"url"`
	Caption string `json:"caption"`
	AltText string `json:"alt_text"`
}

// Resolve issues a grounded lookup for query and validates the result.
// An unextractable video ID fails the whole resolution; the caller
// decides whether that aborts the run or merely skips video enrichment.
func (r *Resolver) Resolve(ctx context.Context, query string) (*article.VideoAsset, error) {
	if strings.TrimSpace(query) == "" {
		return nil, generrors.New(generrors.KindValidation, "empty video search query")
	}

	prompt := fmt.Sprintf(`Find one real, currently available YouTube video matching this search: %q.
Respond with JSON only: {"title": string, "channel": string, "url": string (the canonical watch URL), "caption": string, "alt_text": string}.
Do not invent a URL; only return a video you found via search.`, query)

	result, err := r.gen.Generate(ctx, prompt, llm.GenerateOptions{
		JSONResponse:    true,
		SearchGrounding: true,
	})
	if err != nil {
		return nil, err
	}

	var resp lookupResponse
	if err := llm.DecodeStructured(result.Text, &resp); err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.URL) == "" {
		return nil, generrors.New(generrors.KindMissingField, "video lookup returned no URL")
	}

	id, err := ExtractID(resp.URL)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("query", query).Str("video_id", id).Msg("resolved video asset")

	return &article.VideoAsset{
		Query:        query,
		Title:        resp.Title,
		Channel:      resp.Channel,
		CanonicalURL: "https://www.youtube.com/watch?v=" + id,
		VideoID:      id,
		EmbedMarkup:  EmbedMarkup(id, resp.Title),
		ThumbnailURL: ThumbnailURL(id),
		Caption:      resp.Caption,
		AltText:      resp.AltText,
	}, nil
}
