package models

import (
	"time"

	"gorm.io/datatypes"
)

// AnalyticsEvent is a single logged site event.
type AnalyticsEvent struct {
	ID string `gorm:"primaryKey;type:varchar(36)"` // UUID.

	EventType string         `gorm:"type:varchar(128);not null;index"` // Event tag, e.g. "form_submission".
	EventData datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"` // Free-form payload.
	UserAgent string         `gorm:"type:text"`                        // Request user agent.
	Referrer  string         `gorm:"type:text"`                        // Request referrer.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"` // Event timestamp.
}
