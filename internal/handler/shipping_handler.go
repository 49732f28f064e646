package handler

import (
	"net/http"
	"strconv"
	"time"

	"storefront-service/internal/model"
	"storefront-service/pkg/database"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ShippingClassRequest defines the structure for shipping class requests
type ShippingClassRequest struct {
	Name        string   `json:"name"`
	NameBn      *string  `json:"name_bn"`
	Description *string  `json:"description"`
	Cost        *float64 `json:"cost"`
	IsActive    *bool    `json:"is_active"`
	SortOrder   *int     `json:"sort_order"`
}

// CreateShippingClass creates a shipping option for the resolved tenant.
func CreateShippingClass(c echo.Context) error {
	log := logger.FromContext(c)
	tenant, err := requireTenantOwner(c)
	if err != nil {
		return err
	}

	var req ShippingClassRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Name == "" || req.Cost == nil || *req.Cost < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and a non-negative cost are required"})
	}

	class := model.ShippingClass{
		TenantID: tenant.ID,
		Name:     req.Name,
		Cost:     *req.Cost,
		IsActive: true,
	}
	applyShippingClassUpdate(&class, &req)

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := database.GetDB().Create(&class).Error; err != nil {
		log.Error("Failed to create shipping class", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create shipping class"})
	}

	log.Info("Shipping class created",
		zap.Uint("shipping_class_id", class.ID),
		zap.Uint("tenant_id", tenant.ID))
	return c.JSON(http.StatusCreated, class)
}

// ListShippingClasses lists the resolved tenant's shipping options,
// sorted by position then name. Public endpoint feeding checkout pages.
func ListShippingClasses(c echo.Context) error {
	tenant, err := requireTenant(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	query := database.GetDB().Where("tenant_id = ?", tenant.ID)

	if v := c.QueryParam("active_only"); v != "" {
		if activeOnly, err := strconv.ParseBool(v); err == nil && activeOnly {
			query = query.Where("is_active = ?", true)
		}
	}

	var classes []model.ShippingClass
	if err := query.Order("sort_order, name").Find(&classes).Error; err != nil {
		logger.FromContext(c).Error("Failed to list shipping classes", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve shipping classes"})
	}
	return c.JSON(http.StatusOK, classes)
}

// GetShippingClass returns one shipping option within the resolved tenant.
func GetShippingClass(c echo.Context) error {
	tenant, err := requireTenant(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var class model.ShippingClass
	err = database.GetDB().
		Where("id = ? AND tenant_id = ?", c.Param("id"), tenant.ID).
		First(&class).Error
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "shipping class not found"})
	}
	return c.JSON(http.StatusOK, class)
}

// UpdateShippingClass updates a shipping option within the resolved tenant.
func UpdateShippingClass(c echo.Context) error {
	log := logger.FromContext(c)
	tenant, err := requireTenantOwner(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	var class model.ShippingClass
	err = database.GetDB().
		Where("id = ? AND tenant_id = ?", c.Param("id"), tenant.ID).
		First(&class).Error
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "shipping class not found"})
	}

	var req ShippingClassRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	if req.Name != "" {
		class.Name = req.Name
	}
	if req.Cost != nil {
		class.Cost = *req.Cost
	}
	applyShippingClassUpdate(&class, &req)

	if err := database.GetDB().Save(&class).Error; err != nil {
		log.Error("Failed to update shipping class", zap.Uint("shipping_class_id", class.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update shipping class"})
	}

	log.Info("Shipping class updated", zap.Uint("shipping_class_id", class.ID))
	return c.JSON(http.StatusOK, class)
}

// DeleteShippingClass removes a shipping option within the resolved tenant.
func DeleteShippingClass(c echo.Context) error {
	log := logger.FromContext(c)
	tenant, err := requireTenantOwner(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	res := database.GetDB().
		Where("tenant_id = ?", tenant.ID).
		Delete(&model.ShippingClass{}, c.Param("id"))
	if res.Error != nil {
		log.Error("Failed to delete shipping class", zap.Error(res.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete shipping class"})
	}
	if res.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "shipping class not found"})
	}

	log.Info("Shipping class deleted", zap.String("shipping_class_id", c.Param("id")))
	return c.NoContent(http.StatusNoContent)
}

func applyShippingClassUpdate(class *model.ShippingClass, req *ShippingClassRequest) {
	if req.NameBn != nil {
		class.NameBn = *req.NameBn
	}
	if req.Description != nil {
		class.Description = *req.Description
	}
	if req.IsActive != nil {
		class.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		class.SortOrder = *req.SortOrder
	}
}
