package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to user profiles
type UserHandler struct {
	users *services.UserService
	auth  *services.AuthService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *services.UserService, auth *services.AuthService) *UserHandler {
	return &UserHandler{users: users, auth: auth}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.GET("/users/:username", h.GetUser)
}

// GetUser returns the public profile of :username
func (h *UserHandler) GetUser(c echo.Context) error {
	profile, err := h.users.Profile(c.Request().Context(), c.Param("username"), getUserIDFromContext(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, profile)
}

// GetProfile retrieves the authenticated user's profile, drafts included
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID := getUserIDFromContext(c)
	me, err := h.auth.Me(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	profile, err := h.users.Profile(c.Request().Context(), me.Username, userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateProfile updates the authenticated user's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Please login first!")
	}
	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), userID, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": user})
}
