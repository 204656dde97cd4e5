package models

import (
	"time"

	"gorm.io/datatypes"
)

// ContentSection stores the admin-editable content blob for one page section.
type ContentSection struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	SectionKey  string         `gorm:"type:varchar(64);not null;uniqueIndex"` // Section identifier, e.g. "hero".
	Title       string         `gorm:"type:varchar(255)"`                     // Admin-facing title.
	Description string         `gorm:"type:text"`                             // Admin-facing description.
	Content     datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"`      // Structured section content.
	Images      datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"`      // Image references keyed by slot.

	Version int64 `gorm:"not null;default:1"` // Incremented on every save.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
