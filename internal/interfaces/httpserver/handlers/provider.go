package handlers

import (
	"github.com/rs/zerolog"

	"github.com/Johtaguerrero/artigogenio/internal/domain/generation"
	"github.com/Johtaguerrero/artigogenio/internal/infrastructure/store"
)

// Provider bundles all HTTP handlers for route registration.
type Provider struct {
	Articles  *ArticleHandler
	Directory *DirectoryHandler
}

// NewProvider wires the handlers to their dependencies.
func NewProvider(service *generation.Service, st store.Store, log zerolog.Logger) *Provider {
	return &Provider{
		Articles:  NewArticleHandler(service, st, log),
		Directory: NewDirectoryHandler(st, log),
	}
}
