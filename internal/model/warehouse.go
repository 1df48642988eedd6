package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockMovementType enum constants
const (
	StockMoveIn  = "IN"
	StockMoveOut = "OUT"
)

// Warehouse represents a storage location with a tracked flour/grain stock level
type Warehouse struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name       string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Location   string          `gorm:"type:text" json:"location"`
	CapacityKg decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0" json:"capacity_kg"`
	StockKg    decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0" json:"stock_kg"`
	IsActive   bool            `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`
}

// StockMovement records every stock change against a warehouse, whether from
// a purchase receipt or a manual adjustment
type StockMovement struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WarehouseID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"warehouse_id"`
	PurchaseID   *uuid.UUID      `gorm:"type:uuid;index" json:"purchase_id"` // Nullable for manual adjustments
	MovementType string          `gorm:"type:varchar(10);not null" json:"movement_type"` // IN, OUT
	QuantityKg   decimal.Decimal `gorm:"type:decimal(18,3);not null" json:"quantity_kg"`
	StockAfterKg decimal.Decimal `gorm:"type:decimal(18,3);not null" json:"stock_after_kg"`
	Note         string          `gorm:"type:text" json:"note"`
	CreatedAt    time.Time       `json:"created_at"`
}
