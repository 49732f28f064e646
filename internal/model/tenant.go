package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant represents a merchant storefront resolved by subdomain slug.
// The slug is the sole key used for request-time resolution.
type Tenant struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	UUID string `json:"uuid" gorm:"type:varchar(36);uniqueIndex"`
	Slug string `json:"slug" gorm:"type:varchar(100);uniqueIndex;not null"`
	Name string `json:"name" gorm:"type:varchar(255);not null"`

	Logo            string `json:"logo" gorm:"type:varchar(500)"`
	BrandColor      string `json:"brand_color" gorm:"type:varchar(7);default:'#3B82F6'"`
	Currency        string `json:"currency" gorm:"type:varchar(3);default:'BDT'"`
	DefaultLanguage string `json:"default_language" gorm:"type:varchar(5);default:'bn'"`

	// Contact info
	WhatsappNumber string `json:"whatsapp_number" gorm:"type:varchar(20)"`
	SupportPhone   string `json:"support_phone" gorm:"type:varchar(20)"`
	SupportEmail   string `json:"support_email" gorm:"type:varchar(255)"`

	// Feature flags
	EnableCOD           bool   `json:"enable_cod" gorm:"default:true"`
	EnableFacebookPixel bool   `json:"enable_facebook_pixel" gorm:"default:false"`
	FacebookPixelID     string `json:"facebook_pixel_id" gorm:"type:varchar(50)"`
	FacebookAccessToken string `json:"-" gorm:"type:varchar(500)"`

	// Notification settings
	EmailNotifications    bool   `json:"email_notifications" gorm:"default:true"`
	WhatsappNotifications bool   `json:"whatsapp_notifications" gorm:"default:true"`
	NotificationEmail     string `json:"notification_email" gorm:"type:varchar(255)"`
	NotificationWhatsapp  string `json:"notification_whatsapp" gorm:"type:varchar(20)"`

	Settings string `json:"settings,omitempty" gorm:"type:jsonb;default:'{}'"`

	IsActive bool `json:"is_active" gorm:"default:true"`

	OwnerID uint `json:"owner_id" gorm:"index;not null"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// NormalizeSlug lowercases a candidate slug. Hostnames are
// case-insensitive, so slugs are stored and compared lowercase.
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.UUID == "" {
		t.UUID = uuid.NewString()
	}
	t.Slug = NormalizeSlug(t.Slug)
	return nil
}
