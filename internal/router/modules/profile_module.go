package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/openlibro/librogate/internal/interface/http"
	"github.com/openlibro/librogate/internal/interface/middleware"
	"github.com/openlibro/librogate/pkg/helpers"
)

// ProfileModule wires the profile page routes. Everything here requires an
// authenticated session.
type ProfileModule struct {
	Handler *handlers.ProfileHandler
	JWT     *helpers.JWTManager
}

func NewProfileModule(h *handlers.ProfileHandler, jwt *helpers.JWTManager) *ProfileModule {
	return &ProfileModule{Handler: h, JWT: jwt}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	profile := rg.Group("/profile")
	profile.Use(middleware.Auth(m.JWT))
	{
		profile.GET("", m.Handler.Get)
		profile.POST("/stage", m.Handler.Stage)
		profile.PUT("", m.Handler.Commit)
		profile.DELETE("", m.Handler.Delete)
		profile.POST("/avatar", m.Handler.UploadAvatar)
		profile.PUT("/password", m.Handler.ChangePassword)
		profile.POST("/card", m.Handler.LinkCard)
	}
}
