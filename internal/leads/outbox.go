package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/energee/energee-site/internal/models"
	"gorm.io/gorm"
)

// JobQuery filters the CRM job listing.
type JobQuery struct {
	Status   string // pending, done, dead or empty for all.
	Page     int
	PageSize int
}

// ListJobs returns CRM jobs newest first with the total matching count.
func ListJobs(ctx context.Context, db *gorm.DB, q JobQuery) ([]models.CRMJob, int64, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 || q.PageSize > 200 {
		q.PageSize = 50
	}
	query := db.WithContext(ctx).Model(&models.CRMJob{})
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	var total int64
	if errCount := query.Count(&total).Error; errCount != nil {
		return nil, 0, fmt.Errorf("leads: count crm jobs: %w", errCount)
	}
	var jobs []models.CRMJob
	if errFind := query.Order("id DESC").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&jobs).Error; errFind != nil {
		return nil, 0, fmt.Errorf("leads: list crm jobs: %w", errFind)
	}
	return jobs, total, nil
}

// RetryJob puts a dead job back in the queue with a fresh attempt budget.
// Jobs in any other status are left alone and ErrJobNotDead is returned.
func RetryJob(ctx context.Context, db *gorm.DB, id uint64, now time.Time) (models.CRMJob, error) {
	var job models.CRMJob
	errTx := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errFind := tx.First(&job, id).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrJobNotFound
			}
			return errFind
		}
		res := tx.Model(&models.CRMJob{}).
			Where("id = ? AND status = ?", id, models.CRMJobDead).
			Updates(map[string]any{
				"status":          models.CRMJobPending,
				"attempts":        0,
				"next_attempt_at": now.UTC(),
				"completed_at":    nil,
				"updated_at":      now.UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrJobNotDead
		}
		return tx.First(&job, id).Error
	})
	if errTx != nil {
		if errors.Is(errTx, ErrJobNotFound) || errors.Is(errTx, ErrJobNotDead) {
			return models.CRMJob{}, errTx
		}
		return models.CRMJob{}, fmt.Errorf("leads: retry crm job: %w", errTx)
	}
	return job, nil
}

// CountJobsByStatus returns the number of jobs per status for the dashboard.
func CountJobsByStatus(ctx context.Context, db *gorm.DB) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	if errScan := db.WithContext(ctx).Model(&models.CRMJob{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; errScan != nil {
		return nil, fmt.Errorf("leads: count crm jobs by status: %w", errScan)
	}
	out := map[string]int64{
		models.CRMJobPending: 0,
		models.CRMJobDone:    0,
		models.CRMJobDead:    0,
	}
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}
