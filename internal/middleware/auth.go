package middleware

import (
	"net/http"
	"strings"

	"storefront-service/internal/model"
	"storefront-service/pkg/database"
	"storefront-service/pkg/jwtutil"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const userContextKey = "auth_user"

// AuthMiddleware validates the bearer token and loads the merchant account.
// Invalid or missing credentials fail with 401, an inactive account with 403.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)
		prometheus.AuthAttemptsCounter.Inc()

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			prometheus.AuthErrorsCounter.Inc()
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			prometheus.AuthErrorsCounter.Inc()
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Warn("Invalid JWT token", zap.Error(err))
			prometheus.AuthErrorsCounter.Inc()
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// Load the account so deactivated users are cut off immediately
		var user model.User
		if err := database.GetDB().First(&user, claims.UserID).Error; err != nil {
			log.Warn("User from token not found", zap.Uint("user_id", claims.UserID))
			prometheus.AuthErrorsCounter.Inc()
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		if !user.IsActive {
			log.Warn("Inactive account", zap.Uint("user_id", user.ID))
			return c.JSON(http.StatusForbidden, echo.Map{"error": "account is inactive"})
		}

		c.Set(userContextKey, &user)
		c.Set("user_id", user.ID)

		return next(c)
	}
}

// UserFromContext retrieves the authenticated user set by AuthMiddleware.
func UserFromContext(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(userContextKey).(*model.User)
	return user, ok
}
