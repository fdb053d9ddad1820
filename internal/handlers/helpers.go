package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lumagram/backend/internal/errs"
)

// httpError maps the error taxonomy onto HTTP status codes. Store failures
// stay 500; the message is the caller-facing wording, not the wrapped
// error chain.
func httpError(err error, notFoundMessage string) *echo.HTTPError {
	switch {
	case errors.Is(err, errs.NotFound):
		return echo.NewHTTPError(http.StatusNotFound, notFoundMessage)
	case errors.Is(err, errs.Forbidden):
		return echo.NewHTTPError(http.StatusForbidden, "You are not allowed to do that")
	case errors.Is(err, errs.UsernameTaken):
		return echo.NewHTTPError(http.StatusConflict, "Username is already taken")
	case errors.Is(err, errs.Duplicate):
		return echo.NewHTTPError(http.StatusConflict, "Already exists")
	case errors.Is(err, errs.Unavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Media storage is not configured")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func ok(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}
