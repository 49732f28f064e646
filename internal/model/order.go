package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatus is the closed set of order lifecycle states.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// PaymentStatus is the closed set of payment states. It is not linked
// to OrderStatus.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}

// Order is a committed purchase. Totals are computed once at creation
// and never recomputed; items are immutable snapshots.
type Order struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	UUID     string `json:"uuid" gorm:"type:varchar(36);uniqueIndex"`
	TenantID uint   `json:"tenant_id" gorm:"index;not null"`

	OrderNumber string `json:"order_number" gorm:"type:varchar(50);uniqueIndex;not null"`

	CustomerName    string `json:"customer_name" gorm:"type:varchar(255);not null"`
	CustomerPhone   string `json:"customer_phone" gorm:"type:varchar(20);not null"`
	CustomerEmail   string `json:"customer_email" gorm:"type:varchar(255)"`
	CustomerAddress string `json:"customer_address" gorm:"type:text;not null"`

	Status       OrderStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	Subtotal     float64     `json:"subtotal" gorm:"type:numeric(10,2);not null"`
	ShippingCost float64     `json:"shipping_cost" gorm:"type:numeric(10,2);default:0"`
	Total        float64     `json:"total" gorm:"type:numeric(10,2);not null"`

	ShippingClassID *uint  `json:"shipping_class_id"`
	ShippingNotes   string `json:"shipping_notes" gorm:"type:text"`

	PaymentMethod string        `json:"payment_method" gorm:"type:varchar(50);default:'cod'"`
	PaymentStatus PaymentStatus `json:"payment_status" gorm:"type:varchar(50);default:'pending'"`

	// Meta conversion tracking
	FbPixelID string `json:"fb_pixel_id" gorm:"type:varchar(50)"`
	FbEventID string `json:"fb_event_id" gorm:"type:varchar(100)"`

	Notes string `json:"notes" gorm:"type:text"`

	Items []OrderItem `json:"items" gorm:"foreignKey:OrderID"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderItem freezes product title and unit price at order time so later
// product edits never alter historical orders.
type OrderItem struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	OrderID   uint `json:"order_id" gorm:"index;not null"`
	ProductID uint `json:"product_id" gorm:"not null"`

	ProductTitle string  `json:"product_title" gorm:"type:varchar(500);not null"`
	ProductPrice float64 `json:"product_price" gorm:"type:numeric(10,2);not null"`
	Quantity     int     `json:"quantity" gorm:"not null"`
	Subtotal     float64 `json:"subtotal" gorm:"type:numeric(10,2);not null"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.UUID == "" {
		o.UUID = uuid.NewString()
	}
	return nil
}
