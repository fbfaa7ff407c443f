package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

type TagHandler struct {
	tags *services.TagService
}

// NewTagHandler creates a new TagHandler
func NewTagHandler(tags *services.TagService) *TagHandler {
	return &TagHandler{tags: tags}
}

// RegisterTagRoutes registers tag routes
func (h *TagHandler) RegisterTagRoutes(g *echo.Group) {
	g.GET("/tags", h.ListTags)
	g.POST("/tags", h.CreateTag)
	g.PATCH("/tags/:id", h.UpdateTag)
	g.DELETE("/tags/:id", h.DeleteTag)
}

// ListTags returns every tag with its post count
func (h *TagHandler) ListTags(c echo.Context) error {
	tags, err := h.tags.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, tags)
}

// CreateTag answers 201 for a new tag and 200 with the stored tag when the value exists
func (h *TagHandler) CreateTag(c echo.Context) error {
	if getUserIDFromContext(c) == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Please login first!")
	}
	var req models.CreateTagRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if req.Label == "" || req.Value == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid tag data")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	tag, created, err := h.tags.Create(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	if created {
		return c.JSON(http.StatusCreated, tag)
	}
	return c.JSON(http.StatusOK, tag)
}

// UpdateTag edits a tag
func (h *TagHandler) UpdateTag(c echo.Context) error {
	if getUserIDFromContext(c) == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Please login first!")
	}
	id := parseUintParam(c.Param("id"))
	if id == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid tag ID")
	}
	var req models.UpdateTagRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	tag, err := h.tags.Update(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, tag)
}

// DeleteTag removes a tag and detaches it from posts
func (h *TagHandler) DeleteTag(c echo.Context) error {
	if getUserIDFromContext(c) == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Please login first!")
	}
	id := parseUintParam(c.Param("id"))
	if id == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid tag ID")
	}
	if err := h.tags.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Tag deleted"})
}
