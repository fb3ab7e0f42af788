package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// NoStore marks the response as uncacheable by intermediaries.
func NoStore(c echo.Context) {
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
}

// JSONBlobResponse writes pre-encoded JSON verbatim.
func JSONBlobResponse(c echo.Context, status int, body []byte) error {
	NoStore(c)
	return c.JSONBlob(status, body)
}

// SuccessResponse writes data as JSON with status 200.
func SuccessResponse(c echo.Context, data interface{}) error {
	NoStore(c)
	return c.JSON(http.StatusOK, data)
}

// ErrorResponse writes {"error": message} with the given status.
func ErrorResponse(c echo.Context, status int, message string) error {
	NoStore(c)
	return c.JSON(status, ErrorBody{Error: message})
}

// AppErrorResponse writes application error response. Errors that are not
// an *AppError are reported as 500 with their message.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return ErrorResponse(c, appErr.Status, appErr.Message)
	}
	return ErrorResponse(c, http.StatusInternalServerError, err.Error())
}
