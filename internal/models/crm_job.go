package models

import (
	"time"

	"gorm.io/datatypes"
)

// CRM job statuses.
const (
	CRMJobPending = "pending"
	CRMJobDone    = "done"
	CRMJobDead    = "dead"
)

// CRMJob is an outbox entry forwarding one lead to the CRM.
type CRMJob struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	SubmissionID string         `gorm:"type:varchar(36);not null;index"`                   // Source form submission.
	Payload      datatypes.JSON `gorm:"type:jsonb;not null"`                               // Contact body sent to the CRM.
	Status       string         `gorm:"type:varchar(16);not null;default:'pending';index"` // pending, done or dead.
	Attempts     int            `gorm:"not null;default:0"`                                // Delivery attempts so far.
	LastError    string         `gorm:"type:text"`                                         // Most recent failure.

	NextAttemptAt time.Time  `gorm:"not null;index"` // Earliest time for the next attempt.
	CompletedAt   *time.Time // Delivery or dead-letter time.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
