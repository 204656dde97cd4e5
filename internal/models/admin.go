package models

import (
	"time"

	"gorm.io/datatypes"
)

// Admin is an operator account for the admin area.
type Admin struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username     string         `gorm:"type:varchar(64);not null;uniqueIndex"` // Login name.
	Password     string         `gorm:"type:varchar(255);not null"`            // Bcrypt hash.
	Active       bool           `gorm:"not null;default:true"`                 // Disabled admins cannot log in.
	IsSuperAdmin bool           `gorm:"not null;default:false"`                // Bypasses permission checks.
	Permissions  datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`      // Granted permission keys.
	TOTPSecret   *string        `gorm:"type:varchar(128)"`                     // Optional second factor secret.
	PendingTOTP  *string        `gorm:"type:varchar(128)"`                     // Secret awaiting confirmation.

	LastLoginAt *time.Time // Last successful login.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
