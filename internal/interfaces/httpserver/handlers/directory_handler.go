package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Johtaguerrero/artigogenio/internal/domain/article"
	"github.com/Johtaguerrero/artigogenio/internal/infrastructure/store"
	"github.com/Johtaguerrero/artigogenio/internal/interfaces/httpserver/requests"
	"github.com/Johtaguerrero/artigogenio/internal/interfaces/httpserver/responses"
)

// DirectoryHandler serves the author and settings endpoints.
type DirectoryHandler struct {
	store store.Store
	log   zerolog.Logger
}

// NewDirectoryHandler creates the handler.
func NewDirectoryHandler(st store.Store, log zerolog.Logger) *DirectoryHandler {
	return &DirectoryHandler{store: st, log: log}
}

// CreateAuthor registers a new author profile.
func (h *DirectoryHandler) CreateAuthor(c *gin.Context) {
	var req requests.UpsertAuthor
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorBody{Error: "invalid request body"})
		return
	}
	author := &article.Author{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Bio:       req.Bio,
		PhotoURL:  req.PhotoURL,
		Expertise: req.Expertise,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.SaveAuthor(c.Request.Context(), author); err != nil {
		responses.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, author)
}

// UpdateAuthor replaces an existing author profile.
func (h *DirectoryHandler) UpdateAuthor(c *gin.Context) {
	existing, err := h.store.GetAuthor(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.WriteError(c, err)
		return
	}
	var req requests.UpsertAuthor
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorBody{Error: "invalid request body"})
		return
	}
	existing.Name = req.Name
	existing.Bio = req.Bio
	existing.PhotoURL = req.PhotoURL
	existing.Expertise = req.Expertise
	if err := h.store.SaveAuthor(c.Request.Context(), existing); err != nil {
		responses.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, existing)
}

// ListAuthors returns all author profiles.
func (h *DirectoryHandler) ListAuthors(c *gin.Context) {
	all, err := h.store.ListAuthors(c.Request.Context())
	if err != nil {
		responses.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": all})
}

// DeleteAuthor removes an author profile.
func (h *DirectoryHandler) DeleteAuthor(c *gin.Context) {
	if err := h.store.DeleteAuthor(c.Request.Context(), c.Param("id")); err != nil {
		responses.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetSettings returns the settings record with the stored application
// password redacted.
func (h *DirectoryHandler) GetSettings(c *gin.Context) {
	settings, err := h.store.GetSettings(c.Request.Context())
	if err != nil {
		responses.WriteError(c, err)
		return
	}
	if settings.WordPressAppSecret != "" {
		settings.WordPressAppSecret = "********"
	}
	c.JSON(http.StatusOK, settings)
}

// PutSettings replaces the settings record. An omitted application
// password keeps the stored one.
func (h *DirectoryHandler) PutSettings(c *gin.Context) {
	var incoming article.Settings
	if err := c.ShouldBindJSON(&incoming); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorBody{Error: "invalid request body"})
		return
	}
	if incoming.WordPressAppSecret == "" || incoming.WordPressAppSecret == "********" {
		if current, err := h.store.GetSettings(c.Request.Context()); err == nil {
			incoming.WordPressAppSecret = current.WordPressAppSecret
		}
	}
	if err := h.store.SaveSettings(c.Request.Context(), incoming); err != nil {
		responses.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
