package middleware

import (
	"strings"

	"passport/internal/delivery/http/response"
	"passport/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// ContextKeyUserID is where Authenticate stores the resolved subject for
// downstream handlers.
const ContextKeyUserID = "userID"

// AuthMiddleware is the protected-route guard. It resolves a bearer token to
// a subject id and nothing more; handlers fetch the full record themselves.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate validates the bearer token on the request and stores the
// subject id on the echo context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return response.Unauthorized(c, "UNAUTHORIZED", "missing token")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			return response.Unauthorized(c, "UNAUTHORIZED", "missing token")
		}

		subject, err := m.tokenSvc.Verify(tokenString)
		if err != nil {
			return response.Unauthorized(c, "UNAUTHORIZED", "invalid or expired token")
		}

		c.Set(ContextKeyUserID, subject)

		return next(c)
	}
}
