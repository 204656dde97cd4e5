package models

import "time"

// FormSubmission is a lead captured by the public form.
type FormSubmission struct {
	ID string `gorm:"primaryKey;type:varchar(36)"` // UUID.

	Name        string  `gorm:"type:varchar(255);not null"`                  // Full name.
	Email       string  `gorm:"type:varchar(255);not null"`                  // Contact email.
	Phone       string  `gorm:"type:varchar(64);not null"`                   // Contact phone.
	Estado      string  `gorm:"type:varchar(64);not null"`                   // Brazilian state or region.
	Consumption *string `gorm:"type:varchar(255)"`                           // Optional monthly consumption estimate.
	Message     *string `gorm:"type:text"`                                   // Optional free text.
	Source      string  `gorm:"type:varchar(64);not null;default:'website'"` // Origin tag.
	ClientIP    string  `gorm:"type:varchar(64)"`                            // Requesting client address.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"` // Submission timestamp.
}
