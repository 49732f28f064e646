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

type topProduct struct {
	ID           uint    `json:"id"`
	Title        string  `json:"title"`
	TotalSold    int64   `json:"total_sold"`
	TotalRevenue float64 `json:"total_revenue"`
}

type trendPoint struct {
	Date    string  `json:"date"`
	Orders  int64   `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// Dashboard returns order and revenue aggregates for the resolved
// tenant. Cancelled orders are excluded from revenue. Owner only.
func Dashboard(c echo.Context) error {
	log := logger.FromContext(c)
	tenant, err := requireTenantOwner(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	db := database.GetDB()
	fail := func(err error) error {
		log.Error("Dashboard query failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute analytics"})
	}

	var totalOrders int64
	if err := db.Model(&model.Order{}).Where("tenant_id = ?", tenant.ID).Count(&totalOrders).Error; err != nil {
		return fail(err)
	}

	var totalRevenue float64
	if err := db.Model(&model.Order{}).
		Where("tenant_id = ? AND status <> ?", tenant.ID, model.OrderStatusCancelled).
		Select("COALESCE(SUM(total), 0)").Scan(&totalRevenue).Error; err != nil {
		return fail(err)
	}

	var pendingOrders int64
	if err := db.Model(&model.Order{}).
		Where("tenant_id = ? AND status = ?", tenant.ID, model.OrderStatusPending).
		Count(&pendingOrders).Error; err != nil {
		return fail(err)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)

	var todayOrders int64
	if err := db.Model(&model.Order{}).
		Where("tenant_id = ? AND created_at >= ?", tenant.ID, today).
		Count(&todayOrders).Error; err != nil {
		return fail(err)
	}

	var todayRevenue float64
	if err := db.Model(&model.Order{}).
		Where("tenant_id = ? AND created_at >= ? AND status <> ?", tenant.ID, today, model.OrderStatusCancelled).
		Select("COALESCE(SUM(total), 0)").Scan(&todayRevenue).Error; err != nil {
		return fail(err)
	}

	var topProducts []topProduct
	if err := db.Model(&model.OrderItem{}).
		Select("products.id, products.title, SUM(order_items.quantity) AS total_sold, SUM(order_items.subtotal) AS total_revenue").
		Joins("JOIN products ON products.id = order_items.product_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.tenant_id = ? AND orders.status <> ?", tenant.ID, model.OrderStatusCancelled).
		Group("products.id, products.title").
		Order("total_sold DESC").
		Limit(5).
		Scan(&topProducts).Error; err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total_orders":   totalOrders,
		"total_revenue":  totalRevenue,
		"pending_orders": pendingOrders,
		"today_orders":   todayOrders,
		"today_revenue":  todayRevenue,
		"top_products":   topProducts,
	})
}

// OrdersTrend returns per-day order counts and revenue over the last N
// days (default 7). Owner only.
func OrdersTrend(c echo.Context) error {
	log := logger.FromContext(c)
	tenant, err := requireTenantOwner(c)
	if err != nil {
		return err
	}

	days := 7
	if v := c.QueryParam("days"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 90 {
			days = parsed
		}
	}
	start := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -(days - 1))

	defer prometheus.TrackDBOperation("query")(time.Now())

	var points []trendPoint
	err = database.GetDB().Model(&model.Order{}).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') AS date, COUNT(*) AS orders, COALESCE(SUM(total), 0) AS revenue").
		Where("tenant_id = ? AND created_at >= ? AND status <> ?", tenant.ID, start, model.OrderStatusCancelled).
		Group("date").
		Order("date").
		Scan(&points).Error
	if err != nil {
		log.Error("Trend query failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute analytics"})
	}

	return c.JSON(http.StatusOK, points)
}
