package middleware

import (
	"errors"
	"net/http"
	"strings"

	"storefront-service/internal/model"
	"storefront-service/pkg/config"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const tenantContextKey = "resolved_tenant"

// TenantResolver maps each inbound request's Host header to a tenant
// before any handler runs. The resolved tenant is attached to the echo
// context once and is read-only for the rest of the request; handlers
// access it through TenantFromContext and never re-resolve.
type TenantResolver struct {
	db        *gorm.DB
	reserved  map[string]struct{}
	bypass    []string
	apiPrefix string
}

// NewTenantResolver builds a resolver from the domain configuration.
func NewTenantResolver(db *gorm.DB, domain *config.DomainConfig) *TenantResolver {
	reserved := make(map[string]struct{}, len(domain.ReservedSubdomains))
	for _, s := range domain.ReservedSubdomains {
		reserved[strings.ToLower(s)] = struct{}{}
	}
	return &TenantResolver{
		db:        db,
		reserved:  reserved,
		bypass:    domain.BypassPaths,
		apiPrefix: domain.APIPathPrefix,
	}
}

// ExtractSubdomain returns the candidate tenant slug from a Host header
// value, or "" when the host carries no usable subdomain. A host needs
// at least three dot-separated labels for its first label to count as a
// subdomain, and reserved labels never resolve to a tenant. The label
// is lowercased; hostnames are case-insensitive.
func (r *TenantResolver) ExtractSubdomain(host string) string {
	hostname := host
	if i := strings.IndexByte(hostname, ':'); i >= 0 {
		hostname = hostname[:i]
	}

	labels := strings.Split(hostname, ".")
	if len(labels) < 3 {
		return ""
	}

	candidate := strings.ToLower(labels[0])
	if _, ok := r.reserved[candidate]; ok {
		return ""
	}
	return candidate
}

// Middleware performs tenant resolution for every request. Store pages
// under an unknown subdomain fail with 404 before any handler executes;
// API paths proceed with no tenant and let the handler decide.
func (r *TenantResolver) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path

		// Infrastructure paths never require a tenant
		for _, p := range r.bypass {
			if strings.HasPrefix(path, p) {
				return next(c)
			}
		}

		slug := r.ExtractSubdomain(c.Request().Host)
		if slug == "" {
			prometheus.RecordTenantResolution("none")
			return next(c)
		}

		log := logger.FromContext(c)

		var tenant model.Tenant
		err := r.db.WithContext(c.Request().Context()).
			Where("slug = ? AND is_active = ?", slug, true).
			First(&tenant).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Error("Tenant lookup failed", zap.String("slug", slug), zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
			}

			prometheus.RecordTenantResolution("not_found")
			if !strings.HasPrefix(path, r.apiPrefix) {
				log.Info("Store not found for subdomain", zap.String("slug", slug))
				return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
			}
			// API paths forward with no tenant; handlers that need one
			// reply with 400.
			return next(c)
		}

		prometheus.RecordTenantResolution("resolved")
		c.Set(tenantContextKey, &tenant)

		return next(c)
	}
}

// TenantFromContext retrieves the tenant resolved for this request.
// Returns nil, false when the request carried no tenant.
func TenantFromContext(c echo.Context) (*model.Tenant, bool) {
	tenant, ok := c.Get(tenantContextKey).(*model.Tenant)
	if !ok || tenant == nil {
		return nil, false
	}
	return tenant, true
}
