package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pennywise/expense-tracker/internal/api/cookie"
	"github.com/pennywise/expense-tracker/internal/core/domain"
	"github.com/pennywise/expense-tracker/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	sessionTTL  time.Duration
}

// NewAuthHandler builds the auth routes. sessionTTL sets the cookie
// lifetime and should match the service's session lifetime.
func NewAuthHandler(authService ports.AuthService, sessionTTL time.Duration) *AuthHandler {
	if sessionTTL <= 0 {
		sessionTTL = domain.DefaultSessionTTL
	}
	return &AuthHandler{authService: authService, sessionTTL: sessionTTL}
}

type registerRequest struct {
	Username string `json:"username" validate:"max=64"`
	Email    string `json:"email"    validate:"omitempty,email,max=254"`
	Password string `json:"password" validate:"max=4096"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"max=254"`
	Password string `json:"password" validate:"max=4096"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

var invalidPayload = messageResponse{Message: "invalid payload"}

// statusFor maps a failed auth result to its HTTP status.
func statusFor(kind domain.FailureKind) int {
	switch kind {
	case domain.FailureValidation:
		return http.StatusBadRequest
	case domain.FailureDuplicate:
		return http.StatusConflict
	case domain.FailureAuthentication:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  ports.RegisterResult
// @Failure      400   {object}  messageResponse
// @Failure      409   {object}  ports.RegisterResult
// @Failure      500   {object}  ports.RegisterResult
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, invalidPayload)
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}

	res := h.authService.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	if !res.Success {
		return c.JSON(statusFor(res.Failure), res)
	}
	return c.JSON(http.StatusCreated, res)
}

// Login authenticates a user and sets the session cookie. The token itself
// is only ever sent in the cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  ports.LoginResult
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  ports.LoginResult
// @Failure      500   {object}  ports.LoginResult
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, invalidPayload)
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}

	res := h.authService.Authenticate(c.Request().Context(), req.Email, req.Password)
	if !res.Success {
		return c.JSON(statusFor(res.Failure), res)
	}

	cookie.AttachFor(c.Response(), *res.SessionToken, h.sessionTTL)
	res.SessionToken = nil
	return c.JSON(http.StatusOK, res)
}

// Logout ends the current session, if any, and clears the cookie.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  ports.LogoutResult
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token, _ := cookie.ExtractToken(c.Request())
	res := h.authService.Logout(c.Request().Context(), token)
	cookie.Clear(c.Response())
	return c.JSON(http.StatusOK, res)
}

// Me returns the caller resolved from the session cookie.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.Caller
// @Failure      401  {object}  map[string]string
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, caller)
}
