package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentStatus enum constants
const (
	PaymentPending = "PENDING"
	PaymentPartial = "PARTIAL"
	PaymentPaid    = "PAID"
)

// Purchase represents a grain purchase from a supplier. Total, due amount,
// and payment status are derived server-side from the line items and the
// paid amount; clients never submit them directly.
type Purchase struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PurchaseNo    string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"purchase_no"`
	SupplierID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"supplier_id"`
	Supplier      *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	WarehouseID   *uuid.UUID      `gorm:"type:uuid;index" json:"warehouse_id"`
	Warehouse     *Warehouse      `gorm:"foreignKey:WarehouseID" json:"warehouse,omitempty"`
	Items         []PurchaseItem  `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_amount"` // Σ quantity × unit price
	PaidAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"paid_amount"`
	DueAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"due_amount"` // total − paid
	PaymentStatus string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"payment_status"`
	PurchaseDate  time.Time       `gorm:"type:date;not null;index" json:"purchase_date"`
	Note          string          `gorm:"type:text" json:"note"`
	CreatedBy     *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// PurchaseItem represents a line item within a Purchase
type PurchaseItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PurchaseID uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_id"`
	Product    string          `gorm:"type:varchar(255);not null" json:"product"` // e.g. "Wheat, grade A"
	QuantityKg decimal.Decimal `gorm:"type:decimal(18,3);not null" json:"quantity_kg"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"` // per kg
	LineTotal  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"line_total"` // quantity × unit price
}

// PurchaseSummary aggregates purchase totals for the reporting endpoint
type PurchaseSummary struct {
	TotalPurchases int64           `json:"total_purchases"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	TotalDue       decimal.Decimal `json:"total_due"`
	ByStatus       []StatusTotal   `json:"by_status"`
	BySupplier     []SupplierTotal `json:"by_supplier"`
}

// StatusTotal represents purchase totals grouped by payment status
type StatusTotal struct {
	PaymentStatus string          `json:"payment_status"`
	Count         int64           `json:"count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// SupplierTotal represents purchase totals grouped by supplier
type SupplierTotal struct {
	SupplierID   string          `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	Count        int64           `json:"count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	TotalDue     decimal.Decimal `json:"total_due"`
}
