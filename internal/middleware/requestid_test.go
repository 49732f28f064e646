package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func TestRequestIDMiddlewareWiresLogger(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequestIDMiddleware(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}

	requestID, ok := c.Get(logger.RequestIDKey).(string)
	if !ok || requestID == "" {
		t.Fatal("expected request id in context")
	}
	if got := rec.Header().Get(logger.RequestIDKey); got != requestID {
		t.Fatalf("response header %q does not match context id %q", got, requestID)
	}

	// FromContext must hand back the request-scoped logger set here,
	// not the global fallback.
	scoped, ok := c.Get(logger.ContextKey).(*zap.Logger)
	if !ok {
		t.Fatal("expected request-scoped logger in context")
	}
	if logger.FromContext(c) != scoped {
		t.Fatal("FromContext did not return the request-scoped logger")
	}
}
