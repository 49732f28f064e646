package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront-service/internal/model"
	"storefront-service/internal/notifier"
	"storefront-service/internal/service"
	"storefront-service/pkg/database"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// OrderRequest defines the structure for order creation requests
type OrderRequest struct {
	CustomerName    string              `json:"customer_name"`
	CustomerPhone   string              `json:"customer_phone"`
	CustomerEmail   string              `json:"customer_email"`
	CustomerAddress string              `json:"customer_address"`
	Items           []service.OrderLine `json:"items"`
	ShippingClassID *uint               `json:"shipping_class_id"`
	ShippingNotes   string              `json:"shipping_notes"`
	PaymentMethod   string              `json:"payment_method"`
	Notes           string              `json:"notes"`
	FbPixelID       string              `json:"fb_pixel_id"`
	FbEventID       string              `json:"fb_event_id"`
}

// OrderUpdateRequest defines the structure for order update requests
type OrderUpdateRequest struct {
	Status        *model.OrderStatus   `json:"status"`
	PaymentStatus *model.PaymentStatus `json:"payment_status"`
	PaymentMethod *string              `json:"payment_method"`
	ShippingNotes *string              `json:"shipping_notes"`
	Notes         *string              `json:"notes"`
}

// OrderHandler serves the order surface. Creation goes through the
// order transaction service; committed orders are handed to the
// notification dispatcher after the response is decided.
type OrderHandler struct {
	orders     *service.OrderService
	dispatcher *notifier.Dispatcher
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(orders *service.OrderService, dispatcher *notifier.Dispatcher) *OrderHandler {
	return &OrderHandler{orders: orders, dispatcher: dispatcher}
}

// CreateOrder creates an order for the resolved tenant. Public endpoint.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	log := logger.FromContext(c)
	tenant, err := requireTenant(c)
	if err != nil {
		return err
	}

	var req OrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.CustomerName == "" || req.CustomerPhone == "" || req.CustomerAddress == "" {
		prometheus.RecordOrderRejected("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer name, phone and address are required"})
	}

	order, err := h.orders.CreateOrder(c.Request().Context(), tenant, &service.CreateOrderInput{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		CustomerAddress: req.CustomerAddress,
		Items:           req.Items,
		ShippingClassID: req.ShippingClassID,
		ShippingNotes:   req.ShippingNotes,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
		FbPixelID:       req.FbPixelID,
		FbEventID:       req.FbEventID,
	})
	if err != nil {
		return h.orderError(c, err)
	}

	log.Info("Order created",
		zap.String("order_number", order.OrderNumber),
		zap.Uint("tenant_id", tenant.ID),
		zap.Float64("total", order.Total),
		zap.Int("items", len(order.Items)))

	// The order is durable; notification outcomes cannot affect this
	// response anymore.
	h.dispatcher.Enqueue(*tenant, *order)

	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) orderError(c echo.Context, err error) error {
	log := logger.FromContext(c)

	switch {
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidQuantity):
		prometheus.RecordOrderRejected("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrCODDisabled):
		prometheus.RecordOrderRejected("cod_disabled")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInsufficientStock):
		prometheus.RecordOrderRejected("insufficient_stock")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrProductNotFound):
		prometheus.RecordOrderRejected("product_not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrStockConflict),
		errors.Is(err, service.ErrOrderNumberExhausted):
		prometheus.RecordOrderRejected("conflict")
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		prometheus.RecordOrderRejected("internal")
		log.Error("Order transaction failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create order"})
	}
}

// ListOrders lists the resolved tenant's orders, newest first. Owner only.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	tenant, err := requireTenantOwner(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	query := database.GetDB().Where("tenant_id = ?", tenant.ID)

	if v := c.QueryParam("status"); v != "" {
		status := model.OrderStatus(v)
		if !status.Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status filter"})
		}
		query = query.Where("status = ?", status)
	}

	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}
	offset := 0
	if v := c.QueryParam("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	var orders []model.Order
	err = query.Preload("Items").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error
	if err != nil {
		logger.FromContext(c).Error("Failed to list orders", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve orders"})
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrder returns one order within the resolved tenant. Owner only.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	tenant, err := requireTenantOwner(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var order model.Order
	err = database.GetDB().Preload("Items").
		Where("id = ? AND tenant_id = ?", c.Param("id"), tenant.ID).
		First(&order).Error
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateOrder updates an order's status fields. Owner only. Totals and
// item snapshots are immutable; only the mutable fields bind here.
func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	log := logger.FromContext(c)
	tenant, err := requireTenantOwner(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	var order model.Order
	err = database.GetDB().Preload("Items").
		Where("id = ? AND tenant_id = ?", c.Param("id"), tenant.ID).
		First(&order).Error
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}

	var req OrderUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	if req.Status != nil {
		if !req.Status.Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order status"})
		}
		order.Status = *req.Status
	}
	if req.PaymentStatus != nil {
		if !req.PaymentStatus.Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment status"})
		}
		order.PaymentStatus = *req.PaymentStatus
	}
	if req.PaymentMethod != nil {
		order.PaymentMethod = *req.PaymentMethod
	}
	if req.ShippingNotes != nil {
		order.ShippingNotes = *req.ShippingNotes
	}
	if req.Notes != nil {
		order.Notes = *req.Notes
	}

	// Items are immutable snapshots, keep them out of the write.
	if err := database.GetDB().Omit("Items").Save(&order).Error; err != nil {
		log.Error("Failed to update order", zap.Uint("order_id", order.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update order"})
	}

	log.Info("Order updated",
		zap.Uint("order_id", order.ID),
		zap.String("status", string(order.Status)))
	return c.JSON(http.StatusOK, order)
}
