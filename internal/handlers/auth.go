package handlers

import (
	"net/http"
	"time"

	"github.com/anonto42/topichub/backend/internal/identity"
	"github.com/anonto42/topichub/backend/internal/middleware"
	"github.com/anonto42/topichub/backend/internal/models"
	"github.com/anonto42/topichub/backend/internal/repositories"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	identity       identity.Provider
	jwtSecret      string
	jwtTTL         time.Duration
	log            *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, provider identity.Provider, jwtSecret string, jwtTTL time.Duration, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		identity:       provider,
		jwtSecret:      jwtSecret,
		jwtTTL:         jwtTTL,
		log:            log,
	}
}

// RegisterAuthRoutes registers authentication routes. The admin group must
// already require an admin session.
func (h *AuthHandler) RegisterAuthRoutes(public, admin *echo.Group) {
	public.POST("/auth/firebase-login", h.FirebaseLogin)
	public.POST("/auth/verify", h.Verify, middleware.FirebaseAuthMiddleware(h.identity))

	admin.POST("/admin/users/:id/claims/admin", h.GrantAdmin)
}

// FirebaseLogin verifies a Firebase ID token, provisions the user's document
// on first login and issues a local JWT
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	token, err := h.identity.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		h.log.Debug("firebase id token rejected", zap.Error(err))
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token").SetInternal(err)
	}

	if err := h.userRepository.CreateUserDocument(ctx, token.UID); err != nil {
		return err
	}

	admin, _ := token.Claims[repositories.AdminClaim].(bool)
	localJWT, err := h.generateJWT(token.UID, token.Email, admin)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate local JWT").SetInternal(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"token": localJWT})
}

// Verify returns the profile of the caller identified by a Firebase ID token
func (h *AuthHandler) Verify(c echo.Context) error {
	uid, _ := c.Get(middleware.ContextKeyUID).(string)
	user, err := h.userRepository.GetUserByID(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// GrantAdmin gives the user in the path the admin claim. It takes effect on
// the user's next login.
func (h *AuthHandler) GrantAdmin(c echo.Context) error {
	userID := c.Param("id")
	if err := h.userRepository.GrantAdminClaim(c.Request().Context(), userID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"id": userID, "admin": true})
}

// generateJWT generates a session JWT for a verified identity
func (h *AuthHandler) generateJWT(uid, email string, admin bool) (string, error) {
	now := time.Now()
	claims := &models.JwtCustomClaims{
		UID:   uid,
		Email: email,
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ExpiresAt: jwt.NewNumericDate(now.Add(h.jwtTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
