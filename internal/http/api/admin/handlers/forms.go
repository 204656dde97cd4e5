package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	dbutil "github.com/energee/energee-site/internal/db"
	"github.com/energee/energee-site/internal/models"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// FormHandler lists, exports, and deletes captured leads.
type FormHandler struct {
	db    *gorm.DB         // Database handle for form submissions.
	nowFn func() time.Time // Clock used for export file names.
}

// NewFormHandler constructs a form submission handler.
func NewFormHandler(db *gorm.DB) *FormHandler {
	return &FormHandler{db: db, nowFn: time.Now}
}

// formListQuery defines pagination and search for submissions.
type formListQuery struct {
	Page   int    `form:"page,default=1"`   // Page number.
	Limit  int    `form:"limit,default=20"` // Page size.
	Search string `form:"search"`           // Matches name, email, phone or estado.
}

// exportHeaders are the CSV column titles used by the export.
var exportHeaders = []string{"Nome", "Email", "Telefone", "Estado", "Consumo", "Mensagem", "Data"}

// exportLocation renders export timestamps in Brasília time.
var exportLocation = func() *time.Location {
	loc, errLoad := time.LoadLocation("America/Sao_Paulo")
	if errLoad != nil {
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}()

// applySearch filters submissions by a case-insensitive substring.
func (h *FormHandler) applySearch(q *gorm.DB, search string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" {
		return q
	}
	pattern := dbutil.ContainsPattern(h.db, search)
	return q.Where(
		dbutil.CaseInsensitiveLikeExpr(h.db, "name")+" OR "+
			dbutil.CaseInsensitiveLikeExpr(h.db, "email")+" OR "+
			dbutil.CaseInsensitiveLikeExpr(h.db, "phone")+" OR "+
			dbutil.CaseInsensitiveLikeExpr(h.db, "estado"),
		pattern, pattern, pattern, pattern,
	)
}

// List returns submissions newest first with pagination.
func (h *FormHandler) List(c *gin.Context) {
	var q formListQuery
	if errBind := c.ShouldBindQuery(&q); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}

	base := h.applySearch(h.db.WithContext(c.Request.Context()).Model(&models.FormSubmission{}), q.Search)
	var total int64
	if errCount := base.Count(&total).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count submissions failed"})
		return
	}

	var rows []models.FormSubmission
	if errFind := base.Order("created_at DESC, id DESC").
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list submissions failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, formatSubmission(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"submissions": out,
		"total":       total,
		"page":        q.Page,
		"limit":       q.Limit,
	})
}

// Get returns one submission.
func (h *FormHandler) Get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var row models.FormSubmission
	if errFind := h.db.WithContext(c.Request.Context()).Where("id = ?", id).First(&row).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, formatSubmission(&row))
}

// Delete removes a submission and any CRM jobs queued for it.
func (h *FormHandler) Delete(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var affected int64
	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.FormSubmission{})
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		if affected == 0 {
			return nil
		}
		return tx.Where("submission_id = ? AND status = ?", id, models.CRMJobPending).Delete(&models.CRMJob{}).Error
	})
	if errTx != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Export streams the filtered submissions as CSV.
func (h *FormHandler) Export(c *gin.Context) {
	q := h.applySearch(h.db.WithContext(c.Request.Context()).Model(&models.FormSubmission{}), c.Query("search"))
	var rows []models.FormSubmission
	if errFind := q.Order("created_at DESC, id DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	filename := fmt.Sprintf("formularios_%s.csv", h.nowFn().UTC().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	if errWrite := w.Write(exportHeaders); errWrite != nil {
		log.WithError(errWrite).Warn("forms export: write header")
		return
	}
	for i := range rows {
		if errWrite := w.Write(exportRecord(&rows[i])); errWrite != nil {
			log.WithError(errWrite).Warn("forms export: write row")
			return
		}
	}
	w.Flush()
	if errFlush := w.Error(); errFlush != nil {
		log.WithError(errFlush).Warn("forms export: flush")
	}
}

// exportRecord renders one CSV line. Commas in the message become semicolons.
func exportRecord(row *models.FormSubmission) []string {
	consumption := ""
	if row.Consumption != nil {
		consumption = *row.Consumption
	}
	message := ""
	if row.Message != nil {
		message = strings.ReplaceAll(*row.Message, ",", ";")
	}
	return []string{
		row.Name,
		row.Email,
		row.Phone,
		row.Estado,
		consumption,
		message,
		row.CreatedAt.In(exportLocation).Format("02/01/2006 15:04:05"),
	}
}

// formatSubmission converts a submission into a response payload.
func formatSubmission(s *models.FormSubmission) gin.H {
	return gin.H{
		"id":          s.ID,
		"name":        s.Name,
		"email":       s.Email,
		"phone":       s.Phone,
		"estado":      s.Estado,
		"consumption": s.Consumption,
		"message":     s.Message,
		"source":      s.Source,
		"client_ip":   s.ClientIP,
		"created_at":  s.CreatedAt,
	}
}
