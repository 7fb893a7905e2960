package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/openlibro/librogate/internal/interface/http"
	"github.com/openlibro/librogate/internal/interface/middleware"
	"github.com/openlibro/librogate/pkg/helpers"
)

// BookModule wires the book-detail view and the borrow action.
// Both routes work for anonymous visitors; the borrow workflow itself
// decides what a missing session means.
type BookModule struct {
	Handler *handlers.BookHandler
	JWT     *helpers.JWTManager
}

func NewBookModule(h *handlers.BookHandler, jwt *helpers.JWTManager) *BookModule {
	return &BookModule{Handler: h, JWT: jwt}
}

func (m *BookModule) Register(rg *gin.RouterGroup) {
	books := rg.Group("/books")
	books.Use(middleware.OptionalAuth(m.JWT))
	{
		books.GET("/:id", m.Handler.Get)
		books.POST("/:id/borrow", m.Handler.Borrow)
	}
}
