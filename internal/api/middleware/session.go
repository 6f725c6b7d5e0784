package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pennywise/expense-tracker/internal/api/cookie"
	"github.com/pennywise/expense-tracker/internal/core/domain"
	"github.com/pennywise/expense-tracker/internal/core/ports"
)

// CallerKey is the echo.Context key holding the resolved *domain.Caller.
const CallerKey = "caller"

// CallerResolver answers "who, if anyone, sent this request" from the
// session cookie.
type CallerResolver struct {
	auth ports.AuthService
}

func NewCallerResolver(auth ports.AuthService) *CallerResolver {
	return &CallerResolver{auth: auth}
}

// Resolve returns the caller behind r, or nil for an anonymous request.
func (cr *CallerResolver) Resolve(r *http.Request) *domain.Caller {
	token, ok := cookie.ExtractToken(r)
	if !ok {
		return nil
	}

	ctx := r.Context()
	res := cr.auth.VerifySession(ctx, token)
	if !res.Valid || res.UserID == nil {
		return nil
	}

	user := cr.auth.GetUserByID(ctx, *res.UserID)
	if user == nil {
		return nil
	}
	return &domain.Caller{UserID: *res.UserID, User: user}
}

// Session resolves the caller and stores it under CallerKey. Anonymous
// requests pass through untouched; routes decide for themselves whether to
// reject them.
func Session(resolver *CallerResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if caller := resolver.Resolve(c.Request()); caller != nil {
				c.Set(CallerKey, caller)
			}
			return next(c)
		}
	}
}

// RequireCaller rejects requests that Session could not resolve.
func RequireCaller() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if caller, _ := c.Get(CallerKey).(*domain.Caller); caller == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			}
			return next(c)
		}
	}
}
