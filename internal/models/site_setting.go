package models

import "time"

// SiteSetting is a flat key/value pair such as contact info or integration credentials.
type SiteSetting struct {
	SettingKey   string    `gorm:"primaryKey;type:varchar(128)"`  // Setting key.
	SettingValue string    `gorm:"type:text;not null;default:''"` // Setting value.
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime"`       // Last update timestamp.
}
