package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	// Session lifecycle actions
	ActionLoginSuccess = "LOGIN_SUCCESS"
	ActionLoginFailed  = "LOGIN_FAILED"
	ActionLogout       = "LOGOUT"
	ActionTokenRefresh = "TOKEN_REFRESH"

	// CRUD actions
	ActionCreateUser      = "CREATE_USER"
	ActionUpdateUser      = "UPDATE_USER"
	ActionDeleteUser      = "DELETE_USER"
	ActionCreateSupplier  = "CREATE_SUPPLIER"
	ActionUpdateSupplier  = "UPDATE_SUPPLIER"
	ActionDeleteSupplier  = "DELETE_SUPPLIER"
	ActionCreatePurchase  = "CREATE_PURCHASE"
	ActionUpdatePurchase  = "UPDATE_PURCHASE"
	ActionDeletePurchase  = "DELETE_PURCHASE"
	ActionAdjustStock     = "ADJUST_STOCK"
	ActionCreateWarehouse = "CREATE_WAREHOUSE"
	ActionCreateEmployee  = "CREATE_EMPLOYEE"
)

// AuditLog tracks Who, What, and When for sign-ins and critical changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable for failed logins on unknown accounts
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code/email)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
