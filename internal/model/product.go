package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product represents an item listed by a tenant.
type Product struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	UUID     string `json:"uuid" gorm:"type:varchar(36);uniqueIndex"`
	TenantID uint   `json:"tenant_id" gorm:"index;not null"`

	Title       string `json:"title" gorm:"type:varchar(500);not null"`
	TitleBn     string `json:"title_bn" gorm:"type:varchar(500)"`
	Description string `json:"description" gorm:"type:text"`

	// Pricing. DiscountPrice, when set, is the effective unit price.
	Price         float64  `json:"price" gorm:"type:numeric(10,2);not null"`
	DiscountPrice *float64 `json:"discount_price" gorm:"type:numeric(10,2)"`

	// Inventory. StockQuantity is authoritative only when TrackInventory
	// is set; an untracked product is always purchasable.
	StockQuantity  int  `json:"stock_quantity" gorm:"default:0"`
	IsInStock      bool `json:"is_in_stock" gorm:"default:true"`
	TrackInventory bool `json:"track_inventory" gorm:"default:true"`

	Images string `json:"images,omitempty" gorm:"type:jsonb;default:'[]'"`

	Slug            string `json:"slug" gorm:"type:varchar(500);index"`
	MetaTitle       string `json:"meta_title" gorm:"type:varchar(255)"`
	MetaDescription string `json:"meta_description" gorm:"type:text"`

	IsPublished bool `json:"is_published" gorm:"default:true"`
	IsFeatured  bool `json:"is_featured" gorm:"default:false"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// EffectivePrice returns the discount price when one is set below the
// list price, otherwise the list price.
func (p *Product) EffectivePrice() float64 {
	if p.DiscountPrice != nil && *p.DiscountPrice < p.Price {
		return *p.DiscountPrice
	}
	return p.Price
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.NewString()
	}
	return nil
}
