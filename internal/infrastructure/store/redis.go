package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Johtaguerrero/artigogenio/internal/domain/article"
)

const (
	articlesKey = "ag:articles"
	authorsKey  = "ag:authors"
	settingsKey = "ag:settings"
)

// Redis persists records in Redis hashes, one JSON document per field.
type Redis struct {
	client *redis.Client
	budget int
}

var _ Store = (*Redis)(nil)

// NewRedis creates a Redis-backed store with a byte budget for the
// article collection. A zero budget disables degradation.
func NewRedis(client *redis.Client, budget int) *Redis {
	return &Redis{client: client, budget: budget}
}

func (r *Redis) SaveArticle(ctx context.Context, a *article.Article) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal article: %w", err)
	}
	if err := r.client.HSet(ctx, articlesKey, a.ID, raw).Err(); err != nil {
		return fmt.Errorf("save article: %w", err)
	}
	if r.budget > 0 {
		if err := r.degrade(ctx); err != nil {
			log.Warn().Err(err).Msg("article capacity degradation failed")
		}
	}
	return nil
}

// degrade re-applies the shared shrink policy to the whole collection
// and rewrites any record it changed or removed.
func (r *Redis) degrade(ctx context.Context) error {
	all, err := r.ListArticles(ctx)
	if err != nil {
		return err
	}
	before := make(map[string]int, len(all))
	for _, a := range all {
		before[a.ID] = encodedSize(a)
	}

	kept := shrink(all, r.budget)
	keptIDs := make(map[string]bool, len(kept))
	for _, a := range kept {
		keptIDs[a.ID] = true
		if encodedSize(a) != before[a.ID] {
			raw, err := json.Marshal(a)
			if err != nil {
				continue
			}
			if err := r.client.HSet(ctx, articlesKey, a.ID, raw).Err(); err != nil {
				return err
			}
			log.Info().Str("article_id", a.ID).Msg("stripped embedded images to reclaim storage")
		}
	}
	for id := range before {
		if !keptIDs[id] {
			if err := r.client.HDel(ctx, articlesKey, id).Err(); err != nil {
				return err
			}
			log.Info().Str("article_id", id).Msg("pruned oldest article to reclaim storage")
		}
	}
	return nil
}

func (r *Redis) GetArticle(ctx context.Context, id string) (*article.Article, error) {
	raw, err := r.client.HGet(ctx, articlesKey, id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	var a article.Article
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, fmt.Errorf("decode article: %w", err)
	}
	return &a, nil
}

func (r *Redis) ListArticles(ctx context.Context) ([]*article.Article, error) {
	raw, err := r.client.HGetAll(ctx, articlesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	out := make([]*article.Article, 0, len(raw))
	for _, v := range raw {
		var a article.Article
		if err := json.Unmarshal([]byte(v), &a); err != nil {
			log.Warn().Err(err).Msg("skipping undecodable article record")
			continue
		}
		out = append(out, &a)
	}
	return out, nil
}

func (r *Redis) DeleteArticle(ctx context.Context, id string) error {
	n, err := r.client.HDel(ctx, articlesKey, id).Result()
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Redis) SaveAuthor(ctx context.Context, a *article.Author) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal author: %w", err)
	}
	return r.client.HSet(ctx, authorsKey, a.ID, raw).Err()
}

func (r *Redis) GetAuthor(ctx context.Context, id string) (*article.Author, error) {
	raw, err := r.client.HGet(ctx, authorsKey, id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get author: %w", err)
	}
	var a article.Author
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, fmt.Errorf("decode author: %w", err)
	}
	return &a, nil
}

func (r *Redis) ListAuthors(ctx context.Context) ([]*article.Author, error) {
	raw, err := r.client.HGetAll(ctx, authorsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	out := make([]*article.Author, 0, len(raw))
	for _, v := range raw {
		var a article.Author
		if err := json.Unmarshal([]byte(v), &a); err != nil {
			continue
		}
		out = append(out, &a)
	}
	return out, nil
}

func (r *Redis) DeleteAuthor(ctx context.Context, id string) error {
	n, err := r.client.HDel(ctx, authorsKey, id).Result()
	if err != nil {
		return fmt.Errorf("delete author: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Redis) GetSettings(ctx context.Context) (article.Settings, error) {
	raw, err := r.client.Get(ctx, settingsKey).Result()
	if errors.Is(err, redis.Nil) {
		return article.Settings{}, nil
	}
	if err != nil {
		return article.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	var s article.Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return article.Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}

func (r *Redis) SaveSettings(ctx context.Context, s article.Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	return r.client.Set(ctx, settingsKey, raw, 0).Err()
}
