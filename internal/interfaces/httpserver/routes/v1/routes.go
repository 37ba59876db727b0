package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/Johtaguerrero/artigogenio/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches all v1 routes under the /v1 prefix.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/v1")

	group.POST("/articles/generate", r.handlers.Articles.Generate)
	group.GET("/articles", r.handlers.Articles.List)
	group.GET("/articles/:id", r.handlers.Articles.Get)
	group.DELETE("/articles/:id", r.handlers.Articles.Delete)
	group.POST("/articles/:id/images/:role/render", r.handlers.Articles.RenderImage)
	group.POST("/articles/:id/video", r.handlers.Articles.AttachVideo)
	group.POST("/articles/:id/publish", r.handlers.Articles.Publish)

	group.POST("/authors", r.handlers.Directory.CreateAuthor)
	group.GET("/authors", r.handlers.Directory.ListAuthors)
	group.PUT("/authors/:id", r.handlers.Directory.UpdateAuthor)
	group.DELETE("/authors/:id", r.handlers.Directory.DeleteAuthor)

	group.GET("/settings", r.handlers.Directory.GetSettings)
	group.PUT("/settings", r.handlers.Directory.PutSettings)
}
