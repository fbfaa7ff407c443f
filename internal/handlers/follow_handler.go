package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	users *services.UserService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(users *services.UserService) *FollowHandler {
	return &FollowHandler{users: users}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:username/follow", h.ToggleFollow)
}

// ToggleFollow follows :username, or unfollows when the caller already follows them
func (h *FollowHandler) ToggleFollow(c echo.Context) error {
	following, err := h.users.ToggleFollow(c.Request().Context(), getUserIDFromContext(c), c.Param("username"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"following": following})
}
