package middleware

import (
	"storefront-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestIDMiddleware tags each request with a unique id, propagates it
// on the response header, and places a request-scoped logger in the
// context under logger.ContextKey for logger.FromContext.
func RequestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := uuid.New().String()

		c.Request().Header.Set(logger.RequestIDKey, requestID)
		c.Response().Header().Set(logger.RequestIDKey, requestID)
		c.Set(logger.RequestIDKey, requestID)

		log := logger.GetLogger().With(zap.String("request_id", requestID))
		c.Set(logger.ContextKey, log)

		return next(c)
	}
}
