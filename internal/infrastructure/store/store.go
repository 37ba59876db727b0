// Package store persists articles, authors and settings as plain JSON
// records. Two implementations exist: Redis for deployments and an
// in-memory store for tests and local runs. Both apply the same
// degradation policy when the configured capacity is exceeded: embedded
// image payloads are stripped first, then the oldest completed articles
// are pruned.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/Johtaguerrero/artigogenio/internal/domain/article"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the persistence boundary for all records.
type Store interface {
	SaveArticle(ctx context.Context, a *article.Article) error
	GetArticle(ctx context.Context, id string) (*article.Article, error)
	ListArticles(ctx context.Context) ([]*article.Article, error)
	DeleteArticle(ctx context.Context, id string) error

	SaveAuthor(ctx context.Context, a *article.Author) error
	GetAuthor(ctx context.Context, id string) (*article.Author, error)
	ListAuthors(ctx context.Context) ([]*article.Author, error)
	DeleteAuthor(ctx context.Context, id string) error

	GetSettings(ctx context.Context) (article.Settings, error)
	SaveSettings(ctx context.Context, s article.Settings) error
}

// encodedSize returns the serialized size of an article in bytes.
func encodedSize(a *article.Article) int {
	raw, err := json.Marshal(a)
	if err != nil {
		return 0
	}
	return len(raw)
}

// stripImages drops embedded image payloads, keeping the metadata and
// any external URL. Returns true when anything was removed.
func stripImages(a *article.Article) bool {
	changed := false
	for i := range a.Media.ImageSpecs {
		spec := &a.Media.ImageSpecs[i]
		if spec.RenderedData != "" {
			spec.RenderedData = ""
			if len(spec.RenderedURL) > 256 {
				// Data URLs are as heavy as the payload itself.
				spec.RenderedURL = ""
			}
			changed = true
		}
	}
	return changed
}

// shrink applies the degradation policy to a candidate record set until
// it fits the byte budget: strip embedded images oldest-first, then
// prune the oldest completed articles. Draft articles are never pruned.
// The returned slice is sorted oldest-first.
func shrink(articles []*article.Article, budget int) []*article.Article {
	sort.Slice(articles, func(i, j int) bool {
		return articles[i].UpdatedAt.Before(articles[j].UpdatedAt)
	})

	total := 0
	for _, a := range articles {
		total += encodedSize(a)
	}
	if total <= budget {
		return articles
	}

	for _, a := range articles {
		before := encodedSize(a)
		if stripImages(a) {
			total += encodedSize(a) - before
			if total <= budget {
				return articles
			}
		}
	}

	kept := articles[:0]
	for i, a := range articles {
		if total > budget && a.Status != article.StatusDraft {
			total -= encodedSize(a)
			continue
		}
		kept = append(kept, articles[i])
	}
	return kept
}
