package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	comments *services.CommentService
	likes    *services.LikeService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments *services.CommentService, likes *services.LikeService) *CommentHandler {
	return &CommentHandler{comments: comments, likes: likes}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/comment", h.CreateComment)
	g.GET("/comment", h.GetComments)
	g.DELETE("/comment", h.DeleteComment)
	g.POST("/comment/reply", h.CreateReply)
	g.DELETE("/comment/reply", h.DeleteComment)
	g.POST("/comment/like", h.ToggleLike)
}

// CreateComment creates a new top-level comment on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Please try login first!")
	}
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if _, err := h.comments.Create(c.Request().Context(), userID, req.PostID, req.Content); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Comment added successfully"})
}

// GetComments lists every comment of ?postId in creation order. With ?nested=true the
// reply tree is returned alongside the flat list.
func (h *CommentHandler) GetComments(c echo.Context) error {
	postID := c.QueryParam("postId")
	if postID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid data send!")
	}

	flat, err := h.comments.List(c.Request().Context(), postID)
	if err != nil {
		return httpError(err)
	}
	if c.QueryParam("nested") == "true" {
		return c.JSON(http.StatusOK, echo.Map{"comments": flat, "thread": services.Thread(flat)})
	}
	return c.JSON(http.StatusOK, flat)
}

// CreateReply answers an existing comment
func (h *CommentHandler) CreateReply(c echo.Context) error {
	var req models.CreateReplyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if req.CommentID == 0 || req.ReplyText == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid data sent.")
	}
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Please log in first!")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	reply, err := h.comments.Reply(c.Request().Context(), userID, req.CommentID, req.ReplyText)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "message": "Reply added", "reply": reply})
}

// DeleteComment removes ?id and its whole reply subtree
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Please log in first!")
	}
	id := parseUintParam(c.QueryParam("id"))

	if err := h.comments.Delete(c.Request().Context(), userID, id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Comment deleted successfully"})
}

// ToggleLike likes or unlikes a comment for the current user
func (h *CommentHandler) ToggleLike(c echo.Context) error {
	var req models.LikeCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	liked, err := h.likes.ToggleComment(c.Request().Context(), getUserIDFromContext(c), req.CommentID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"liked": liked})
}
