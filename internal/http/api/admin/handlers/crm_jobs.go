package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/energee/energee-site/internal/leads"
	"github.com/energee/energee-site/internal/models"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CRMJobHandler exposes the CRM outbox to operators.
type CRMJobHandler struct {
	db *gorm.DB // Database handle for outbox rows.
}

// NewCRMJobHandler constructs a CRM job handler.
func NewCRMJobHandler(db *gorm.DB) *CRMJobHandler {
	return &CRMJobHandler{db: db}
}

// crmJobListQuery defines filters for the job listing.
type crmJobListQuery struct {
	Status string `form:"status"`           // pending, done or dead.
	Page   int    `form:"page,default=1"`   // Page number.
	Limit  int    `form:"limit,default=50"` // Page size.
}

// List returns outbox jobs, newest first.
func (h *CRMJobHandler) List(c *gin.Context) {
	var q crmJobListQuery
	if errBind := c.ShouldBindQuery(&q); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}
	status := strings.TrimSpace(q.Status)
	switch status {
	case "", models.CRMJobPending, models.CRMJobDone, models.CRMJobDead:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	jobs, total, errList := leads.ListJobs(c.Request.Context(), h.db, leads.JobQuery{
		Status:   status,
		Page:     q.Page,
		PageSize: q.Limit,
	})
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list crm jobs failed"})
		return
	}
	out := make([]gin.H, 0, len(jobs))
	for i := range jobs {
		out = append(out, formatCRMJob(&jobs[i]))
	}
	c.JSON(http.StatusOK, gin.H{"jobs": out, "total": total})
}

// Retry requeues a dead job with a fresh attempt budget.
func (h *CRMJobHandler) Retry(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	job, errRetry := leads.RetryJob(c.Request.Context(), h.db, id, time.Now())
	if errRetry != nil {
		if errors.Is(errRetry, leads.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		if errors.Is(errRetry, leads.ErrJobNotDead) {
			c.JSON(http.StatusConflict, gin.H{"error": "job is not dead"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "retry failed"})
		return
	}
	log.WithFields(log.Fields{"job": job.ID, "submission": job.SubmissionID}).Info("crm job requeued")
	c.JSON(http.StatusOK, formatCRMJob(&job))
}

// formatCRMJob converts an outbox row into a response payload.
func formatCRMJob(j *models.CRMJob) gin.H {
	return gin.H{
		"id":              j.ID,
		"submission_id":   j.SubmissionID,
		"status":          j.Status,
		"attempts":        j.Attempts,
		"last_error":      j.LastError,
		"next_attempt_at": j.NextAttemptAt,
		"completed_at":    j.CompletedAt,
		"created_at":      j.CreatedAt,
		"updated_at":      j.UpdatedAt,
	}
}
