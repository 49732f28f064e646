package handler

import (
	"net/http"

	"storefront-service/internal/middleware"
	"storefront-service/internal/model"
	"storefront-service/prometheus"

	"github.com/labstack/echo/v4"
)

// requireTenant returns the tenant resolved for this request, or replies
// 400 when the request reached an API handler without one.
func requireTenant(c echo.Context) (*model.Tenant, error) {
	tenant, ok := middleware.TenantFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant context required"})
	}
	return tenant, nil
}

// requireTenantOwner returns the resolved tenant if the authenticated
// user owns it, replying 403 otherwise. Ownership failures present the
// same way whether the tenant is missing or owned by someone else.
func requireTenantOwner(c echo.Context) (*model.Tenant, error) {
	tenant, ok := middleware.TenantFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return nil, c.JSON(http.StatusForbidden, echo.Map{"error": "not authorized"})
	}
	user, ok := middleware.UserFromContext(c)
	if !ok || tenant.OwnerID != user.ID {
		return nil, c.JSON(http.StatusForbidden, echo.Map{"error": "not authorized"})
	}
	return tenant, nil
}
