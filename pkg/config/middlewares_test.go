package config

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestErrorHandler(t *testing.T) {
	e := echo.New()
	handle := ErrorHandler(zerolog.Nop())

	cases := []struct {
		err  error
		code int
		body string
	}{
		{echo.NewHTTPError(http.StatusNotFound, "Post not found"), http.StatusNotFound, `{"message":"Post not found","success":false}`},
		{errors.New("connection reset"), http.StatusInternalServerError, `{"message":"connection reset","success":false}`},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		handle(tc.err, c)
		assert.Equal(t, tc.code, rec.Code)
		assert.JSONEq(t, tc.body, rec.Body.String())
	}
}
