package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShippingClass is a named flat shipping cost option for a tenant. The
// cost is copied onto orders at creation, never live-joined.
type ShippingClass struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	UUID     string `json:"uuid" gorm:"type:varchar(36);uniqueIndex"`
	TenantID uint   `json:"tenant_id" gorm:"index;not null"`

	Name        string  `json:"name" gorm:"type:varchar(255);not null"`
	NameBn      string  `json:"name_bn" gorm:"type:varchar(255)"`
	Description string  `json:"description" gorm:"type:text"`
	Cost        float64 `json:"cost" gorm:"type:numeric(10,2);not null;default:0"`
	IsActive    bool    `json:"is_active" gorm:"default:true"`
	SortOrder   int     `json:"sort_order" gorm:"default:0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (s *ShippingClass) BeforeCreate(tx *gorm.DB) error {
	if s.UUID == "" {
		s.UUID = uuid.NewString()
	}
	return nil
}
