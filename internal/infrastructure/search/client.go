// Package search implements the web-search client used for competitor
// title enrichment and site-restricted internal-link discovery.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	generrors "github.com/Johtaguerrero/artigogenio/internal/domain/errors"
	"github.com/Johtaguerrero/artigogenio/internal/domain/pipeline"
)

const searchEndpoint = "https://google.serper.dev/search"

// Client is a Serper-backed implementation of pipeline.LinkSearcher.
type Client struct {
	httpClient *resty.Client
	apiKey     string
}

var _ pipeline.LinkSearcher = (*Client)(nil)

// NewClient creates a Serper search client. An empty API key yields a
// client whose searches fail with a configuration error; callers treat
// discovery as best-effort and continue without it.
func NewClient(apiKey string, timeout time.Duration) *Client {
	return &Client{
		httpClient: resty.New().
			SetHeader("User-Agent", "ArtigoGenio/1.0").
			SetTimeout(timeout),
		apiKey: apiKey,
	}
}

type searchResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

// Search performs a plain web search and returns organic results.
func (c *Client) Search(ctx context.Context, query string, num int) ([]pipeline.SearchResult, error) {
	return c.search(ctx, query, num)
}

// SiteSearch restricts the query to a single domain.
func (c *Client) SiteSearch(ctx context.Context, domain, query string, num int) ([]pipeline.SearchResult, error) {
	return c.search(ctx, fmt.Sprintf("site:%s %s", domain, query), num)
}

func (c *Client) search(ctx context.Context, query string, num int) ([]pipeline.SearchResult, error) {
	if c.apiKey == "" {
		return nil, generrors.New(generrors.KindConfiguration, "search API key not configured")
	}

	var result searchResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("X-API-KEY", c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{"q": query, "num": num}).
		SetResult(&result).
		Post(searchEndpoint)
	if err != nil {
		return nil, generrors.Wrap(generrors.KindTransport, "failed to query search API", err)
	}
	if resp.IsError() {
		if resp.StatusCode() == 429 {
			return nil, generrors.New(generrors.KindRateLimit, "search API rate limited")
		}
		return nil, generrors.New(generrors.KindUnavailable, fmt.Sprintf("search API error (status %d)", resp.StatusCode()))
	}

	results := make([]pipeline.SearchResult, 0, len(result.Organic))
	for _, o := range result.Organic {
		results = append(results, pipeline.SearchResult{
			Title:   o.Title,
			URL:     o.Link,
			Snippet: o.Snippet,
		})
	}
	log.Debug().Str("query", query).Int("results", len(results)).Msg("search completed")
	return results, nil
}
