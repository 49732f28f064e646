package handler

import (
	"net/http"
	"time"

	"storefront-service/internal/middleware"
	"storefront-service/internal/model"
	"storefront-service/pkg/database"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TenantRequest defines the structure for store creation/update requests
type TenantRequest struct {
	Slug                  string  `json:"slug"`
	Name                  string  `json:"name"`
	Logo                  *string `json:"logo"`
	BrandColor            *string `json:"brand_color"`
	Currency              *string `json:"currency"`
	DefaultLanguage       *string `json:"default_language"`
	WhatsappNumber        *string `json:"whatsapp_number"`
	SupportPhone          *string `json:"support_phone"`
	SupportEmail          *string `json:"support_email"`
	EnableCOD             *bool   `json:"enable_cod"`
	EnableFacebookPixel   *bool   `json:"enable_facebook_pixel"`
	FacebookPixelID       *string `json:"facebook_pixel_id"`
	FacebookAccessToken   *string `json:"facebook_access_token"`
	EmailNotifications    *bool   `json:"email_notifications"`
	WhatsappNotifications *bool   `json:"whatsapp_notifications"`
	NotificationEmail     *string `json:"notification_email"`
	NotificationWhatsapp  *string `json:"notification_whatsapp"`
	IsActive              *bool   `json:"is_active"`
}

// validSlug accepts lowercase alphanumerics and hyphens only.
func validSlug(slug string) bool {
	if slug == "" {
		return false
	}
	for _, r := range slug {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return false
		}
	}
	return true
}

// CreateTenant creates a new store for the authenticated merchant.
func CreateTenant(c echo.Context) error {
	log := logger.FromContext(c)
	user, ok := middleware.UserFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}

	var req TenantRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	slug := model.NormalizeSlug(req.Slug)
	if !validSlug(slug) || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "a valid slug and name are required"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	var count int64
	database.GetDB().Model(&model.Tenant{}).Where("slug = ?", slug).Count(&count)
	if count > 0 {
		log.Warn("Store slug already exists", zap.String("slug", slug))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "store slug already exists"})
	}

	tenant := model.Tenant{
		Slug:     slug,
		Name:     req.Name,
		OwnerID:  user.ID,
		IsActive: true,
	}
	applyTenantUpdate(&tenant, &req)

	if err := database.GetDB().Create(&tenant).Error; err != nil {
		log.Error("Failed to create tenant", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create store"})
	}

	log.Info("Tenant created", zap.Uint("tenant_id", tenant.ID), zap.String("slug", tenant.Slug))
	return c.JSON(http.StatusCreated, tenant)
}

// ListTenants lists the stores owned by the authenticated merchant.
func ListTenants(c echo.Context) error {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var tenants []model.Tenant
	if err := database.GetDB().Where("owner_id = ?", user.ID).Find(&tenants).Error; err != nil {
		logger.FromContext(c).Error("Failed to list tenants", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve stores"})
	}
	return c.JSON(http.StatusOK, tenants)
}

// GetTenant returns one of the merchant's own stores by id.
func GetTenant(c echo.Context) error {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var tenant model.Tenant
	err := database.GetDB().Where("id = ? AND owner_id = ?", c.Param("id"), user.ID).First(&tenant).Error
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
	}
	return c.JSON(http.StatusOK, tenant)
}

// UpdateTenant updates one of the merchant's own stores. The slug is
// immutable once assigned.
func UpdateTenant(c echo.Context) error {
	log := logger.FromContext(c)
	user, ok := middleware.UserFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	var tenant model.Tenant
	err := database.GetDB().Where("id = ? AND owner_id = ?", c.Param("id"), user.ID).First(&tenant).Error
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
	}

	var req TenantRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	if req.Name != "" {
		tenant.Name = req.Name
	}
	applyTenantUpdate(&tenant, &req)

	if err := database.GetDB().Save(&tenant).Error; err != nil {
		log.Error("Failed to update tenant", zap.Uint("tenant_id", tenant.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update store"})
	}

	log.Info("Tenant updated", zap.Uint("tenant_id", tenant.ID))
	return c.JSON(http.StatusOK, tenant)
}

// GetTenantBySlug returns an active store by slug. Public endpoint used
// by store pages.
func GetTenantBySlug(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var tenant model.Tenant
	err := database.GetDB().
		Where("slug = ? AND is_active = ?", model.NormalizeSlug(c.Param("slug")), true).
		First(&tenant).Error
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
	}
	return c.JSON(http.StatusOK, tenant)
}

func applyTenantUpdate(tenant *model.Tenant, req *TenantRequest) {
	if req.Logo != nil {
		tenant.Logo = *req.Logo
	}
	if req.BrandColor != nil {
		tenant.BrandColor = *req.BrandColor
	}
	if req.Currency != nil {
		tenant.Currency = *req.Currency
	}
	if req.DefaultLanguage != nil {
		tenant.DefaultLanguage = *req.DefaultLanguage
	}
	if req.WhatsappNumber != nil {
		tenant.WhatsappNumber = *req.WhatsappNumber
	}
	if req.SupportPhone != nil {
		tenant.SupportPhone = *req.SupportPhone
	}
	if req.SupportEmail != nil {
		tenant.SupportEmail = *req.SupportEmail
	}
	if req.EnableCOD != nil {
		tenant.EnableCOD = *req.EnableCOD
	}
	if req.EnableFacebookPixel != nil {
		tenant.EnableFacebookPixel = *req.EnableFacebookPixel
	}
	if req.FacebookPixelID != nil {
		tenant.FacebookPixelID = *req.FacebookPixelID
	}
	if req.FacebookAccessToken != nil {
		tenant.FacebookAccessToken = *req.FacebookAccessToken
	}
	if req.EmailNotifications != nil {
		tenant.EmailNotifications = *req.EmailNotifications
	}
	if req.WhatsappNotifications != nil {
		tenant.WhatsappNotifications = *req.WhatsappNotifications
	}
	if req.NotificationEmail != nil {
		tenant.NotificationEmail = *req.NotificationEmail
	}
	if req.NotificationWhatsapp != nil {
		tenant.NotificationWhatsapp = *req.NotificationWhatsapp
	}
	if req.IsActive != nil {
		tenant.IsActive = *req.IsActive
	}
}
