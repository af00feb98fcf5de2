package inventory

import (
	"time"

	"gorm.io/gorm"
)

type Item struct {
	ID           string         `gorm:"type:uuid;primaryKey" json:"id"`
	HotelID      string         `gorm:"type:uuid;index;not null" json:"hotel_id"`
	Name         string         `gorm:"not null" json:"name"`
	SKU          string         `gorm:"column:sku" json:"sku"`
	Quantity     int64          `gorm:"not null;default:0" json:"quantity"`
	ReorderLevel int64          `gorm:"not null;default:0" json:"reorder_level"`
	Version      int64          `gorm:"not null;default:1" json:"version"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Item) TableName() string {
	return "inventory_items"
}

// Adjustment is an immutable ledger row. Its delta has already been applied
// to the item's on-hand quantity in the same transaction that created it.
type Adjustment struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	HotelID   string    `gorm:"type:uuid;index;not null" json:"hotel_id"`
	ItemID    string    `gorm:"type:uuid;index;not null" json:"item_id"`
	Delta     int64     `gorm:"not null" json:"delta"`
	Reason    string    `gorm:"not null" json:"reason"`
	CreatedBy string    `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Adjustment) TableName() string {
	return "inventory_adjustments"
}

type AdjustInput struct {
	HotelID   string
	ItemID    string
	Delta     int64
	Reason    string
	CreatedBy string
}
