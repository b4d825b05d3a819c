// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"passport/config"
	"passport/internal/delivery/http/middleware"
	"passport/internal/delivery/http/response"
	domainerrors "passport/internal/domain/errors"
	"passport/internal/domain/service"
	"passport/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthHandler holds dependencies for the authentication endpoints.
type AuthHandler struct {
	uc             usecase.AuthUsecase
	oauthSvc       service.OAuthService
	frontendOrigin string
	logger         *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthUsecase, oauthSvc service.OAuthService, cfg *config.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		uc:             uc,
		oauthSvc:       oauthSvc,
		frontendOrigin: cfg.Frontend.Origin,
		logger:         logger,
	}
}

// Signup handles the local registration request.
func (h *AuthHandler) Signup(c echo.Context) error {
	var input usecase.SignupInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "invalid signup input")
	}
	if err := c.Validate(&input); err != nil {
		return response.BadRequest(c, "INVALID_INPUT", domainerrors.ErrInvalidInput.Message())
	}

	output, err := h.uc.Signup(c.Request().Context(), &input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "signup successful")
}

// Login handles the local login request.
func (h *AuthHandler) Login(c echo.Context) error {
	var input usecase.LoginInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "invalid login input")
	}
	if err := c.Validate(&input); err != nil {
		return response.BadRequest(c, "INVALID_INPUT", domainerrors.ErrInvalidInput.Message())
	}

	output, err := h.uc.Login(c.Request().Context(), &input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "login successful")
}

// GoogleLogin sends the browser into the provider consent flow with a fresh
// state nonce.
func (h *AuthHandler) GoogleLogin(c echo.Context) error {
	state := uuid.New().String()

	return c.Redirect(http.StatusTemporaryRedirect, h.oauthSvc.BuildAuthorizationURL(state))
}

// GoogleCallback receives the provider redirect. The browser is mid-redirect
// here, so every outcome ends in another redirect: success carries the token
// as a query parameter, any failure carries a user-facing message instead.
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	if errParam := c.QueryParam("error"); errParam != "" {
		h.logger.Warn("Provider returned an error on callback", slog.String("error", errParam))

		return h.redirectWithMessage(c, "Google sign-in was cancelled")
	}

	if !h.oauthSvc.ValidateState(c.QueryParam("state")) {
		return h.redirectWithMessage(c, "sign-in session expired, please try again")
	}

	code := c.QueryParam("code")
	if code == "" {
		return h.redirectWithMessage(c, "sign-in session expired, please try again")
	}

	oauthUser, err := h.oauthSvc.ExchangeCode(c.Request().Context(), code)
	if err != nil {
		h.logger.Error("Code exchange failed", slog.Any("error", err))

		return h.redirectWithMessage(c, domainerrors.ErrServerFault.Message())
	}

	result, err := h.uc.ReconcileExternalIdentity(c.Request().Context(), &usecase.ReconcileInput{
		ExternalID:  oauthUser.ID,
		Email:       oauthUser.Email,
		DisplayName: oauthUser.Name,
	})
	if err != nil {
		h.logger.Error("Reconciliation failed", slog.Any("error", err))

		return h.redirectWithMessage(c, domainerrors.ErrServerFault.Message())
	}

	if !result.OK() {
		return h.redirectWithMessage(c, result.FailureMessage)
	}

	return c.Redirect(http.StatusTemporaryRedirect, h.frontendOrigin+"?token="+url.QueryEscape(result.Output.Token))
}

// GetProfile returns the public view of the authenticated user. The gateway
// resolved only the subject id; the record is fetched here.
func (h *AuthHandler) GetProfile(c echo.Context) error {
	userID, ok := c.Get(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "UNAUTHORIZED", "invalid or expired token")
	}

	user, err := h.uc.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]any{"user": user}, "profile retrieved")
}

func (h *AuthHandler) redirectWithMessage(c echo.Context, msg string) error {
	return c.Redirect(http.StatusTemporaryRedirect, h.frontendOrigin+"?msg="+url.QueryEscape(msg))
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "service is healthy")
}
