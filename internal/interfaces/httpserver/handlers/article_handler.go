package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Johtaguerrero/artigogenio/internal/domain/article"
	"github.com/Johtaguerrero/artigogenio/internal/domain/generation"
	"github.com/Johtaguerrero/artigogenio/internal/infrastructure/metrics"
	"github.com/Johtaguerrero/artigogenio/internal/infrastructure/store"
	"github.com/Johtaguerrero/artigogenio/internal/interfaces/httpserver/requests"
	"github.com/Johtaguerrero/artigogenio/internal/interfaces/httpserver/responses"
)

// ArticleHandler serves the article endpoints.
type ArticleHandler struct {
	service *generation.Service
	store   store.Store
	log     zerolog.Logger
}

// NewArticleHandler creates the handler.
func NewArticleHandler(service *generation.Service, st store.Store, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{service: service, store: st, log: log}
}

// Generate runs the full generation pipeline.
func (h *ArticleHandler) Generate(c *gin.Context) {
	var req requests.GenerateArticle
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorBody{Error: "invalid request body"})
		return
	}

	a, err := h.service.Generate(c.Request.Context(), req.ToDomain())
	if err != nil {
		h.log.Error().Err(err).Str("keyword", req.TargetKeyword).Msg("generation run failed")
		responses.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// Get returns one article.
func (h *ArticleHandler) Get(c *gin.Context) {
	a, err := h.store.GetArticle(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// List returns all stored articles.
func (h *ArticleHandler) List(c *gin.Context) {
	all, err := h.store.ListArticles(c.Request.Context())
	if err != nil {
		responses.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": all})
}

// Delete removes one article.
func (h *ArticleHandler) Delete(c *gin.Context) {
	if err := h.store.DeleteArticle(c.Request.Context(), c.Param("id")); err != nil {
		responses.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RenderImage renders one image slot on demand.
func (h *ArticleHandler) RenderImage(c *gin.Context) {
	role := article.ImageRole(c.Param("role"))
	a, err := h.service.RenderImage(c.Request.Context(), c.Param("id"), role)
	if err != nil {
		responses.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// AttachVideo runs a manual video search and re-injects the embed.
func (h *ArticleHandler) AttachVideo(c *gin.Context) {
	var req requests.AttachVideo
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorBody{Error: "invalid request body"})
		return
	}
	a, err := h.service.AttachVideo(c.Request.Context(), c.Param("id"), req.Query)
	if err != nil {
		responses.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Publish creates a CMS draft for the article.
func (h *ArticleHandler) Publish(c *gin.Context) {
	a, result, err := h.service.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		metrics.PublishTotal.WithLabelValues("error").Inc()
		responses.WriteError(c, err)
		return
	}
	metrics.PublishTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, gin.H{"article": a, "publish": result})
}
