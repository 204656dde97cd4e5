package models

import "time"

// FAQ is a question and answer pair shown in the FAQ section.
type FAQ struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Question string `gorm:"type:text;not null"` // Question text.
	Answer   string `gorm:"type:text;not null"` // Answer text.

	Active       bool `gorm:"not null;default:true;index"` // Whether the entry is public.
	DisplayOrder int  `gorm:"not null;default:0"`          // Ascending display position.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// TableName pins the table name; gorm would otherwise pluralize to "fa_qs".
func (FAQ) TableName() string { return "faqs" }
