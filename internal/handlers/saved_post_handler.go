package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// SavedPostHandler handles the reading list
type SavedPostHandler struct {
	posts *services.PostService
}

// NewSavedPostHandler creates a new SavedPostHandler
func NewSavedPostHandler(posts *services.PostService) *SavedPostHandler {
	return &SavedPostHandler{posts: posts}
}

// RegisterSavedPostRoutes registers saved post routes
func (h *SavedPostHandler) RegisterSavedPostRoutes(g *echo.Group) {
	g.POST("/posts/saved", h.ToggleSave)
	g.GET("/posts/saved", h.GetSavedPosts)
}

// ToggleSave saves a post, or removes it from the reading list when already saved
func (h *SavedPostHandler) ToggleSave(c echo.Context) error {
	var req models.SavePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	saved, err := h.posts.ToggleSave(c.Request().Context(), getUserIDFromContext(c), req.PostID)
	if err != nil {
		return httpError(err)
	}
	message := "Post removed from reading list"
	if saved {
		message = "Post saved to reading list"
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": message, "saved": saved})
}

// GetSavedPosts lists the caller's reading list, newest first
func (h *SavedPostHandler) GetSavedPosts(c echo.Context) error {
	saved, err := h.posts.Saved(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, saved)
}
