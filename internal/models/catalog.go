package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service is a billable catalog entry with a base price. The price on the
// row is a fallback: invoices may override it per line.
type Service struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name       string          `gorm:"size:255;not null" json:"name"`
	BasePrice  decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"base_price"`
	CategoryID *uint           `gorm:"index" json:"category_id,omitempty"`

	Groups []ServiceGroup `gorm:"many2many:service_group_links;" json:"groups,omitempty"`
}

// ServiceGroup bundles services so they can be added to an invoice in one
// step. DiscountPercent, when set, is a blanket discount applied to every
// member unless the link carries its own override.
type ServiceGroup struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name            string           `gorm:"size:255;not null" json:"name"`
	DiscountPercent *decimal.Decimal `gorm:"type:decimal(5,2)" json:"discount_percent,omitempty"`

	Links []ServiceGroupLink `gorm:"foreignKey:ServiceGroupID" json:"links,omitempty"`
}

// ServiceGroupLink joins a service to a group. DiscountOverride, when set,
// takes precedence over the group's blanket discount for this member.
type ServiceGroupLink struct {
	ServiceGroupID uint `gorm:"primaryKey" json:"service_group_id"`
	ServiceID      uint `gorm:"primaryKey" json:"service_id"`

	Service *Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`

	DiscountOverride *decimal.Decimal `gorm:"type:decimal(5,2)" json:"discount_override,omitempty"`
}
