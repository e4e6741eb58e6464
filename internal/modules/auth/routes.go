package auth

import (
	"github.com/gin-gonic/gin"

	"vidtube/internal/pkg/httpx"
)

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	users := v1.Group("/users")
	{
		users.POST("/register", httpx.Wrap(h.Register))
		users.POST("/login", httpx.Wrap(h.Login))
		users.POST("/refresh-token", httpx.Wrap(h.Refresh))
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	users := protected.Group("/users")
	{
		users.POST("/logout", httpx.Wrap(h.Logout))
	}
}
