package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/topichub/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// Context keys set by the authentication middleware
const (
	ContextKeyClaims = "user"
	ContextKeyUID    = "uid"
)

// JWTAuthMiddleware checks for a valid session JWT signed with secret and
// stores its claims in the context.
func JWTAuthMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c)
			if err != nil {
				return err
			}

			claims := &models.JwtCustomClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(secret), nil
			})
			if err != nil {
				if errors.Is(err, jwt.ErrSignatureInvalid) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token signature").SetInternal(err)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token").SetInternal(err)
			}
			if !token.Valid || claims.UID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(ContextKeyClaims, claims)
			c.Set(ContextKeyUID, claims.UID)
			return next(c)
		}
	}
}

// RequireAdmin rejects callers whose session lacks the admin claim. It must
// run after JWTAuthMiddleware.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(ContextKeyClaims).(*models.JwtCustomClaims)
			if !ok || !claims.Admin {
				return echo.NewHTTPError(http.StatusForbidden, "Admin privileges required")
			}
			return next(c)
		}
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
	}
	return parts[1], nil
}
