package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront-service/internal/model"
	"storefront-service/pkg/database"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ProductRequest defines the structure for product creation/update requests
type ProductRequest struct {
	Title           string   `json:"title"`
	TitleBn         *string  `json:"title_bn"`
	Description     *string  `json:"description"`
	Price           *float64 `json:"price"`
	DiscountPrice   *float64 `json:"discount_price"`
	StockQuantity   *int     `json:"stock_quantity"`
	IsInStock       *bool    `json:"is_in_stock"`
	TrackInventory  *bool    `json:"track_inventory"`
	Images          *string  `json:"images"`
	Slug            *string  `json:"slug"`
	MetaTitle       *string  `json:"meta_title"`
	MetaDescription *string  `json:"meta_description"`
	IsPublished     *bool    `json:"is_published"`
	IsFeatured      *bool    `json:"is_featured"`
}

// SlugifyTitle derives a URL-safe slug from a product title.
func SlugifyTitle(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// CreateProduct creates a product for the resolved tenant.
func CreateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	tenant, err := requireTenantOwner(c)
	if err != nil {
		return err
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Title == "" || req.Price == nil || *req.Price < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and a non-negative price are required"})
	}

	slug := ""
	if req.Slug != nil {
		slug = *req.Slug
	}
	if slug == "" {
		slug = SlugifyTitle(req.Title)
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	// Keep slugs unique within the tenant
	var count int64
	database.GetDB().Model(&model.Product{}).
		Where("tenant_id = ? AND slug = ?", tenant.ID, slug).Count(&count)
	if count > 0 {
		slug = slug + "-" + uuid.NewString()[:8]
	}

	product := model.Product{
		TenantID:       tenant.ID,
		Title:          req.Title,
		Price:          *req.Price,
		DiscountPrice:  req.DiscountPrice,
		Slug:           slug,
		IsInStock:      true,
		TrackInventory: true,
		IsPublished:    true,
	}
	applyProductUpdate(&product, &req)

	if err := database.GetDB().Create(&product).Error; err != nil {
		log.Error("Failed to create product", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create product"})
	}

	log.Info("Product created",
		zap.Uint("product_id", product.ID),
		zap.Uint("tenant_id", tenant.ID),
		zap.String("slug", product.Slug))
	return c.JSON(http.StatusCreated, product)
}

// ListProducts lists the resolved tenant's products. Public endpoint;
// defaults to published products only.
func ListProducts(c echo.Context) error {
	tenant, err := requireTenant(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	query := database.GetDB().Where("tenant_id = ?", tenant.ID)

	publishedOnly := true
	if v := c.QueryParam("published_only"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			publishedOnly = parsed
		}
	}
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}

	var products []model.Product
	if err := query.Order("created_at DESC").Find(&products).Error; err != nil {
		logger.FromContext(c).Error("Failed to list products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve products"})
	}
	return c.JSON(http.StatusOK, products)
}

// GetProduct returns a product by id within the resolved tenant.
func GetProduct(c echo.Context) error {
	tenant, err := requireTenant(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var product model.Product
	err = database.GetDB().
		Where("id = ? AND tenant_id = ?", c.Param("id"), tenant.ID).
		First(&product).Error
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}
	return c.JSON(http.StatusOK, product)
}

// GetProductBySlug returns a published product by slug. Public endpoint
// backing product landing pages.
func GetProductBySlug(c echo.Context) error {
	tenant, err := requireTenant(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var product model.Product
	err = database.GetDB().
		Where("slug = ? AND tenant_id = ? AND is_published = ?", c.Param("slug"), tenant.ID, true).
		First(&product).Error
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}
	return c.JSON(http.StatusOK, product)
}

// UpdateProduct updates a product within the resolved tenant.
func UpdateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	tenant, err := requireTenantOwner(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	var product model.Product
	err = database.GetDB().
		Where("id = ? AND tenant_id = ?", c.Param("id"), tenant.ID).
		First(&product).Error
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	if req.Title != "" {
		product.Title = req.Title
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.DiscountPrice != nil {
		product.DiscountPrice = req.DiscountPrice
	}
	if req.Slug != nil && *req.Slug != "" {
		product.Slug = *req.Slug
	}
	applyProductUpdate(&product, &req)

	if err := database.GetDB().Save(&product).Error; err != nil {
		log.Error("Failed to update product", zap.Uint("product_id", product.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update product"})
	}

	log.Info("Product updated", zap.Uint("product_id", product.ID))
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product within the resolved tenant.
func DeleteProduct(c echo.Context) error {
	log := logger.FromContext(c)
	tenant, err := requireTenantOwner(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	res := database.GetDB().
		Where("tenant_id = ?", tenant.ID).
		Delete(&model.Product{}, c.Param("id"))
	if res.Error != nil {
		log.Error("Failed to delete product", zap.Error(res.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete product"})
	}
	if res.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	log.Info("Product deleted", zap.String("product_id", c.Param("id")))
	return c.NoContent(http.StatusNoContent)
}

func applyProductUpdate(product *model.Product, req *ProductRequest) {
	if req.TitleBn != nil {
		product.TitleBn = *req.TitleBn
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.StockQuantity != nil {
		product.StockQuantity = *req.StockQuantity
	}
	if req.IsInStock != nil {
		product.IsInStock = *req.IsInStock
	}
	if req.TrackInventory != nil {
		product.TrackInventory = *req.TrackInventory
	}
	if req.Images != nil {
		product.Images = *req.Images
	}
	if req.MetaTitle != nil {
		product.MetaTitle = *req.MetaTitle
	}
	if req.MetaDescription != nil {
		product.MetaDescription = *req.MetaDescription
	}
	if req.IsPublished != nil {
		product.IsPublished = *req.IsPublished
	}
	if req.IsFeatured != nil {
		product.IsFeatured = *req.IsFeatured
	}
}
