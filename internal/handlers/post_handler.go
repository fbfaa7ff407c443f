package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	posts *services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// RegisterPostRoutes registers post-related routes. The feed owns GET /posts.
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.DELETE("/posts", h.DeletePost)
	g.GET("/posts/:path", h.GetPost)
	g.GET("/posts/:username/:path", h.GetPost)
	g.PATCH("/posts/:path", h.UpdatePost)
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Please login first!")
	}
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.posts.Create(c.Request().Context(), userID, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Post created successfully",
		"newPost": post,
	})
}

// GetPost returns the post page and counts the view
func (h *PostHandler) GetPost(c echo.Context) error {
	detail, err := h.posts.Detail(c.Request().Context(), services.DetailQuery{
		Path:     c.Param("path"),
		Username: c.Param("username"),
		ViewerID: getUserIDFromContext(c),
		ClientIP: c.RealIP(),
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, detail)
}

// UpdatePost edits the caller's post at :path
func (h *PostHandler) UpdatePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "You are not authorize!")
	}
	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.posts.Update(c.Request().Context(), userID, c.Param("path"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Post updated successfully",
		"post":    post,
	})
}

// DeletePost removes ?id together with everything attached to it
func (h *PostHandler) DeletePost(c echo.Context) error {
	if err := h.posts.Delete(c.Request().Context(), getUserIDFromContext(c), c.QueryParam("id")); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Post deleted successfully"})
}
