package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pennywise/expense-tracker/internal/api/middleware"
	"github.com/pennywise/expense-tracker/internal/core/domain"
)

// ctxCaller returns the caller resolved by the Session middleware, failing
// with 401 for anonymous requests.
func ctxCaller(c echo.Context) (*domain.Caller, error) {
	caller, _ := c.Get(middleware.CallerKey).(*domain.Caller)
	if caller == nil || caller.UserID <= 0 {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	return caller, nil
}
