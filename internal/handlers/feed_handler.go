package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves the home feed
type FeedHandler struct {
	feed *services.FeedService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feed *services.FeedService) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// RegisterFeedRoutes registers the home feed route
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/posts", h.GetFeed)
}

// GetFeed handles GET /posts?page&limit&sort
func (h *FeedHandler) GetFeed(c echo.Context) error {
	page, err := h.feed.Feed(c.Request().Context(), services.FeedQuery{
		Page:     queryInt(c, "page"),
		Limit:    queryInt(c, "limit"),
		Sort:     c.QueryParam("sort"),
		ViewerID: getUserIDFromContext(c),
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, page)
}
