// Package requests defines the HTTP request DTOs.
package requests

import "github.com/Johtaguerrero/artigogenio/internal/domain/article"

// GenerateArticle triggers a full pipeline run.
type GenerateArticle struct {
	Topic           string                  `json:"topic" binding:"required"`
	TargetKeyword   string                  `json:"target_keyword" binding:"required"`
	Language        string                  `json:"language" binding:"required"`
	WordCount       string                  `json:"word_count" binding:"required"`
	SiteURL         string                  `json:"site_url"`
	AuthorID        string                  `json:"author_id"`
	AdvancedOptions article.AdvancedOptions `json:"advanced_options"`
}

// ToDomain converts the DTO to a domain request.
func (r GenerateArticle) ToDomain() article.GenerationRequest {
	return article.GenerationRequest{
		Topic:           r.Topic,
		TargetKeyword:   r.TargetKeyword,
		Language:        r.Language,
		WordCount:       article.WordCountTarget(r.WordCount),
		SiteURL:         r.SiteURL,
		AuthorID:        r.AuthorID,
		AdvancedOptions: r.AdvancedOptions,
	}
}

// AttachVideo runs a manual video search for an article.
type AttachVideo struct {
	Query string `json:"query" binding:"required"`
}

// UpsertAuthor creates or updates an author profile.
type UpsertAuthor struct {
	Name      string   `json:"name" binding:"required"`
	Bio       string   `json:"bio"`
	PhotoURL  string   `json:"photo_url"`
	Expertise []string `json:"expertise"`
}
