package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"storefront-service/internal/model"
	"storefront-service/pkg/config"
	"storefront-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Order creation failures. Handlers map these onto HTTP status codes.
var (
	ErrEmptyCart            = errors.New("cart must contain at least one item")
	ErrInvalidQuantity      = errors.New("item quantity must be a positive integer")
	ErrCODDisabled          = errors.New("cash on delivery not enabled for this store")
	ErrProductNotFound      = errors.New("product not found")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrStockConflict        = errors.New("stock exhausted by a concurrent order")
	ErrOrderNumberExhausted = errors.New("could not allocate a unique order number")
)

const orderNumberAttempts = 5

// OrderLine is one requested cart line.
type OrderLine struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// CreateOrderInput carries a validated order request into the transaction.
type CreateOrderInput struct {
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	CustomerAddress string
	Items           []OrderLine
	ShippingClassID *uint
	ShippingNotes   string
	PaymentMethod   string
	Notes           string
	FbPixelID       string
	FbEventID       string
}

// OrderService owns the order-creation transaction: the only multi-step,
// multi-entity write in the system. Everything it does commits or rolls
// back as one unit.
type OrderService struct {
	db  *gorm.DB
	cfg *config.OrderConfig
	log *zap.Logger
}

// NewOrderService creates an OrderService.
func NewOrderService(db *gorm.DB, cfg *config.OrderConfig, log *zap.Logger) *OrderService {
	return &OrderService{db: db, cfg: cfg, log: log}
}

// aggregateLines sums the requested quantity per product, so duplicate
// cart lines for the same product are judged against stock as one
// request.
func aggregateLines(lines []OrderLine) map[uint]int {
	totals := make(map[uint]int, len(lines))
	for _, line := range lines {
		totals[line.ProductID] += line.Quantity
	}
	return totals
}

// insufficientStock reports whether a product cannot cover the total
// requested quantity. A product with inventory tracking off is limited
// only by its in-stock flag.
func insufficientStock(p *model.Product, requested int) bool {
	return !p.IsInStock || (p.TrackInventory && p.StockQuantity < requested)
}

// snapshotItem freezes one cart line at the product's effective price.
func snapshotItem(p *model.Product, qty int) model.OrderItem {
	price := p.EffectivePrice()
	return model.OrderItem{
		ProductID:    p.ID,
		ProductTitle: p.Title,
		ProductPrice: price,
		Quantity:     qty,
		Subtotal:     price * float64(qty),
	}
}

// orderTotals sums the item snapshots; shipping is added exactly once
// on top of the subtotal.
func orderTotals(items []model.OrderItem, shippingCost float64) (subtotal, total float64) {
	for _, item := range items {
		subtotal += item.Subtotal
	}
	return subtotal, subtotal + shippingCost
}

// CreateOrder validates the cart against live inventory, computes totals,
// decrements stock and persists the order with its item snapshots in a
// single transaction bounded by the configured timeout. A failure at any
// step leaves no partial state behind.
//
// Stock is decremented with a conditional update guarded by the current
// quantity, so two concurrent orders racing for the same product cannot
// drive stock negative: the loser's update affects zero rows and its
// whole order rolls back.
func (s *OrderService) CreateOrder(ctx context.Context, tenant *model.Tenant, in *CreateOrderInput) (*model.Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyCart
	}
	for _, line := range in.Items {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product %d", ErrInvalidQuantity, line.ProductID)
		}
	}

	paymentMethod := in.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "cod"
	}
	if paymentMethod == "cod" && !tenant.EnableCOD {
		return nil, ErrCODDisabled
	}

	totals := aggregateLines(in.Items)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.TxTimeout)
	defer cancel()

	defer prometheus.TrackDBOperation("create_order")(time.Now())

	var order *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := make([]model.OrderItem, 0, len(in.Items))
		decrements := make(map[uint]int, len(in.Items))
		decrementOrder := make([]uint, 0, len(in.Items))

		// Lines are processed, and snapshotted, in submitted order.
		// Stock is checked against the aggregate across all lines for
		// the product, not the single line.
		for _, line := range in.Items {
			var product model.Product
			err := tx.Where("id = ? AND tenant_id = ? AND is_published = ?",
				line.ProductID, tenant.ID, true).First(&product).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: product %d", ErrProductNotFound, line.ProductID)
				}
				return err
			}

			if insufficientStock(&product, totals[product.ID]) {
				return fmt.Errorf("%w: %s", ErrInsufficientStock, product.Title)
			}

			items = append(items, snapshotItem(&product, line.Quantity))
			if product.TrackInventory {
				if _, seen := decrements[product.ID]; !seen {
					decrementOrder = append(decrementOrder, product.ID)
					decrements[product.ID] = totals[product.ID]
				}
			}
		}

		// The shipping cost is copied onto the order, never live-joined.
		// An unknown or inactive class yields zero cost.
		shippingCost := 0.0
		if in.ShippingClassID != nil {
			var class model.ShippingClass
			err := tx.Where("id = ? AND tenant_id = ? AND is_active = ?",
				*in.ShippingClassID, tenant.ID, true).First(&class).Error
			switch {
			case err == nil:
				shippingCost = class.Cost
			case errors.Is(err, gorm.ErrRecordNotFound):
				s.log.Warn("shipping_class_missing",
					zap.Uint("shipping_class_id", *in.ShippingClassID),
					zap.Uint("tenant_id", tenant.ID))
			default:
				return err
			}
		}

		orderNumber, err := s.uniqueOrderNumber(tx)
		if err != nil {
			return err
		}

		subtotal, total := orderTotals(items, shippingCost)
		order = &model.Order{
			TenantID:        tenant.ID,
			OrderNumber:     orderNumber,
			CustomerName:    in.CustomerName,
			CustomerPhone:   in.CustomerPhone,
			CustomerEmail:   in.CustomerEmail,
			CustomerAddress: in.CustomerAddress,
			Status:          model.OrderStatusPending,
			Subtotal:        subtotal,
			ShippingCost:    shippingCost,
			Total:           total,
			ShippingClassID: in.ShippingClassID,
			ShippingNotes:   in.ShippingNotes,
			PaymentMethod:   paymentMethod,
			PaymentStatus:   model.PaymentStatusPending,
			FbPixelID:       in.FbPixelID,
			FbEventID:       in.FbEventID,
			Notes:           in.Notes,
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		order.Items = items

		// Conditional decrement: the stock guard re-checks quantity at
		// write time, closing the race between the read above and this
		// update. is_in_stock flips in the same statement.
		for _, productID := range decrementOrder {
			qty := decrements[productID]
			res := tx.Model(&model.Product{}).
				Where("id = ? AND tenant_id = ? AND track_inventory = ? AND stock_quantity >= ?",
					productID, tenant.ID, true, qty).
				Updates(map[string]interface{}{
					"stock_quantity": gorm.Expr("stock_quantity - ?", qty),
					"is_in_stock":    gorm.Expr("stock_quantity - ? > 0", qty),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				prometheus.StockConflictCounter.Inc()
				return fmt.Errorf("%w: product %d", ErrStockConflict, productID)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	prometheus.OrdersCreatedCounter.Inc()
	return order, nil
}

// uniqueOrderNumber generates an order number that is free at the time of
// checking. The unique index on order_number still backstops the residual
// race; a collision at insert aborts the transaction.
func (s *OrderService) uniqueOrderNumber(tx *gorm.DB) (string, error) {
	for i := 0; i < orderNumberAttempts; i++ {
		number, err := GenerateOrderNumber(s.cfg.NumberPrefix)
		if err != nil {
			return "", err
		}
		var count int64
		if err := tx.Model(&model.Order{}).Where("order_number = ?", number).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return number, nil
		}
	}
	return "", ErrOrderNumberExhausted
}

const orderNumberCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateOrderNumber produces a human-readable order number:
// prefix + "-" + 8 random uppercase-alphanumeric characters.
func GenerateOrderNumber(prefix string) (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = orderNumberCharset[int(b)%len(orderNumberCharset)]
	}
	return prefix + "-" + string(buf), nil
}
