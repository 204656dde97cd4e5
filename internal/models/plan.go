package models

import (
	"time"

	"gorm.io/datatypes"
)

// Plan represents a subscription tier shown in the plans section.
type Plan struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name             string         `gorm:"type:varchar(255);not null"`       // Plan name.
	Subtitle         string         `gorm:"type:varchar(255)"`                // Short tagline.
	Percentage       string         `gorm:"type:varchar(32)"`                 // Expected savings, e.g. "20%".
	ConsumptionRange string         `gorm:"type:varchar(255)"`                // Monthly consumption band, e.g. "250-500 kWh".
	EstimatedSavings string         `gorm:"type:varchar(255)"`                // Estimated monthly savings text.
	Features         datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"` // Ordered feature strings.

	ButtonText    string `gorm:"type:varchar(255);not null;default:'Contratar Plano'"` // Call-to-action label.
	ButtonVariant string `gorm:"type:varchar(32);not null;default:'outline'"`          // Button style name.

	Active       bool `gorm:"not null;default:true;index"` // Whether the plan is public.
	Popular      bool `gorm:"not null;default:false"`      // Highlighted as most chosen.
	DisplayOrder int  `gorm:"not null;default:0"`          // Ascending display position.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
