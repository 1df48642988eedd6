package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Employee represents a mill worker on the payroll. Separate from User:
// most employees never sign in to the system.
type Employee struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FirstName   string          `gorm:"type:varchar(100);not null" json:"firstName"`
	LastName    string          `gorm:"type:varchar(100);not null" json:"lastName"`
	Email       string          `gorm:"type:varchar(255)" json:"email"`
	Phone       string          `gorm:"type:varchar(50)" json:"phone"`
	Position    string          `gorm:"type:varchar(100);not null" json:"position"`
	Salary      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"salary"`
	HireDate    time.Time       `gorm:"type:date;not null" json:"hire_date"`
	WarehouseID *uuid.UUID      `gorm:"type:uuid;index" json:"warehouse_id"`
	Warehouse   *Warehouse      `gorm:"foreignKey:WarehouseID" json:"warehouse,omitempty"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}
