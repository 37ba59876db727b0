package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Johtaguerrero/artigogenio/internal/domain/article"
)

// Memory is an in-process Store used for tests and local development.
type Memory struct {
	mu       sync.RWMutex
	articles map[string]*article.Article
	authors  map[string]*article.Author
	settings article.Settings
	budget   int
}

var _ Store = (*Memory)(nil)

// NewMemory creates an in-memory store with a byte budget for articles.
// A zero budget disables degradation.
func NewMemory(budget int) *Memory {
	return &Memory{
		articles: make(map[string]*article.Article),
		authors:  make(map[string]*article.Author),
		budget:   budget,
	}
}

func (m *Memory) SaveArticle(_ context.Context, a *article.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.articles[a.ID] = clone(a)

	if m.budget > 0 {
		all := make([]*article.Article, 0, len(m.articles))
		for _, v := range m.articles {
			all = append(all, v)
		}
		kept := shrink(all, m.budget)
		m.articles = make(map[string]*article.Article, len(kept))
		for _, v := range kept {
			m.articles[v.ID] = v
		}
	}
	return nil
}

func (m *Memory) GetArticle(_ context.Context, id string) (*article.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.articles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(a), nil
}

func (m *Memory) ListArticles(_ context.Context) ([]*article.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*article.Article, 0, len(m.articles))
	for _, a := range m.articles {
		out = append(out, clone(a))
	}
	return out, nil
}

func (m *Memory) DeleteArticle(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.articles[id]; !ok {
		return ErrNotFound
	}
	delete(m.articles, id)
	return nil
}

func (m *Memory) SaveAuthor(_ context.Context, a *article.Author) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.authors[a.ID] = &cp
	return nil
}

func (m *Memory) GetAuthor(_ context.Context, id string) (*article.Author, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.authors[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *Memory) ListAuthors(_ context.Context) ([]*article.Author, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*article.Author, 0, len(m.authors))
	for _, a := range m.authors {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (m *Memory) DeleteAuthor(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.authors[id]; !ok {
		return ErrNotFound
	}
	delete(m.authors, id)
	return nil
}

func (m *Memory) GetSettings(_ context.Context) (article.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings, nil
}

func (m *Memory) SaveSettings(_ context.Context, s article.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s
	return nil
}

// clone deep-copies through JSON so callers cannot mutate stored state.
func clone(a *article.Article) *article.Article {
	raw, err := json.Marshal(a)
	if err != nil {
		cp := *a
		return &cp
	}
	var out article.Article
	if err := json.Unmarshal(raw, &out); err != nil {
		cp := *a
		return &cp
	}
	return &out
}
