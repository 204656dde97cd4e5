package handlers

import (
	"net/http"
	"time"

	"github.com/energee/energee-site/internal/analytics"
	"github.com/energee/energee-site/internal/leads"
	"github.com/energee/energee-site/internal/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// DashboardHandler serves the admin overview.
type DashboardHandler struct {
	db     *gorm.DB            // Database handle for counts.
	events *analytics.Recorder // Analytics summaries.
	nowFn  func() time.Time    // Clock, replaceable in tests.
}

// NewDashboardHandler constructs a dashboard handler.
func NewDashboardHandler(db *gorm.DB, events *analytics.Recorder) *DashboardHandler {
	return &DashboardHandler{db: db, events: events, nowFn: time.Now}
}

// recentSubmissionLimit caps the latest submissions shown on the dashboard.
const recentSubmissionLimit = 5

// Overview returns totals, CRM queue health, and the latest submissions.
func (h *DashboardHandler) Overview(c *gin.Context) {
	ctx := c.Request.Context()
	since := h.nowFn().UTC().Add(-7 * 24 * time.Hour)

	var (
		totalSubmissions int64
		activePlans      int64
		activeFAQs       int64
		eventStats       analytics.Stats
		jobCounts        map[string]int64
		recent           []models.FormSubmission
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return h.db.WithContext(gctx).Model(&models.FormSubmission{}).Count(&totalSubmissions).Error
	})
	g.Go(func() error {
		return h.db.WithContext(gctx).Model(&models.Plan{}).Where("active = ?", true).Count(&activePlans).Error
	})
	g.Go(func() error {
		return h.db.WithContext(gctx).Model(&models.FAQ{}).Where("active = ?", true).Count(&activeFAQs).Error
	})
	g.Go(func() error {
		stats, errStats := h.events.Stats(gctx, since)
		eventStats = stats
		return errStats
	})
	g.Go(func() error {
		counts, errCounts := leads.CountJobsByStatus(gctx, h.db)
		jobCounts = counts
		return errCounts
	})
	g.Go(func() error {
		return h.db.WithContext(gctx).Order("created_at DESC").Limit(recentSubmissionLimit).Find(&recent).Error
	})
	if errWait := g.Wait(); errWait != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	latest := make([]gin.H, 0, len(recent))
	for i := range recent {
		latest = append(latest, formatSubmission(&recent[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"total_submissions":  totalSubmissions,
		"total_events":       eventStats.Total,
		"events_last_7_days": eventStats.Since,
		"events_by_type":     eventStats.ByType,
		"active_plans":       activePlans,
		"active_faqs":        activeFAQs,
		"crm_jobs_pending":   jobCounts[models.CRMJobPending],
		"crm_jobs_dead":      jobCounts[models.CRMJobDead],
		"recent_submissions": latest,
	})
}
