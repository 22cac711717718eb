package handlers

import (
	"net/http"

	"github.com/anonto42/topichub/backend/internal/middleware"
	"github.com/anonto42/topichub/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// bindAndValidate binds the request body into req and runs the echo validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload").SetInternal(err)
	}
	return c.Validate(req)
}

func sessionClaims(c echo.Context) (*models.JwtCustomClaims, error) {
	claims, ok := c.Get(middleware.ContextKeyClaims).(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	return claims, nil
}

// authorizeSelf allows the user named in the path or an admin.
func authorizeSelf(c echo.Context, userID string) error {
	claims, err := sessionClaims(c)
	if err != nil {
		return err
	}
	if claims.UID != userID && !claims.Admin {
		return echo.NewHTTPError(http.StatusForbidden, "Cannot act on behalf of another user")
	}
	return nil
}
