package middleware

import (
	"net/http"

	"github.com/anonto42/topichub/backend/internal/identity"
	"github.com/labstack/echo/v4"
)

// ContextKeyFirebaseToken holds the verified *identity.Token
const ContextKeyFirebaseToken = "firebaseToken"

// FirebaseAuthMiddleware creates an Echo middleware to verify Firebase ID tokens
func FirebaseAuthMiddleware(provider identity.Provider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			idToken, err := bearerToken(c)
			if err != nil {
				return err
			}

			token, err := provider.VerifyIDToken(c.Request().Context(), idToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired ID token").SetInternal(err)
			}

			c.Set(ContextKeyUID, token.UID)
			c.Set(ContextKeyFirebaseToken, token)
			return next(c)
		}
	}
}
