package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/inkwell/backend/internal/middleware"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// getUserIDFromContext returns the id set by the JWT middleware, 0 when anonymous
func getUserIDFromContext(c echo.Context) uint {
	return middleware.UserID(c)
}

// httpError maps a service error onto an echo.HTTPError with the matching status
func httpError(err error) error {
	if err == nil {
		return nil
	}
	status := http.StatusInternalServerError
	switch services.KindOf(err) {
	case services.KindInvalid:
		status = http.StatusBadRequest
	case services.KindUnauthorized:
		status = http.StatusUnauthorized
	case services.KindForbidden:
		status = http.StatusForbidden
	case services.KindNotFound:
		status = http.StatusNotFound
	case services.KindConflict:
		status = http.StatusConflict
	}
	return echo.NewHTTPError(status, err.Error())
}

// bindAndValidate decodes the body into req and runs the registered validator
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return c.Validate(req)
}

func parseUintParam(value string) uint {
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

func queryInt(c echo.Context, name string) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return n
}
