package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/energee/energee-site/internal/analytics"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// AnalyticsHandler logs client-side events.
type AnalyticsHandler struct {
	recorder *analytics.Recorder
}

// NewAnalyticsHandler constructs an AnalyticsHandler.
func NewAnalyticsHandler(recorder *analytics.Recorder) *AnalyticsHandler {
	return &AnalyticsHandler{recorder: recorder}
}

// trackRequest captures the payload for tracking an event.
type trackRequest struct {
	EventType string          `json:"event_type"` // Event tag.
	EventData json.RawMessage `json:"event_data"` // Optional free-form payload.
}

// Track stores one analytics event.
func (h *AnalyticsHandler) Track(c *gin.Context) {
	var req trackRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request"})
		return
	}
	_, errTrack := h.recorder.Track(c.Request.Context(), analytics.Event{
		EventType: req.EventType,
		EventData: req.EventData,
		UserAgent: c.Request.UserAgent(),
		Referrer:  c.Request.Referer(),
	})
	switch {
	case errTrack == nil:
		c.JSON(http.StatusOK, gin.H{"success": true})
	case errors.Is(errTrack, analytics.ErrMissingEventType), errors.Is(errTrack, analytics.ErrInvalidEventData):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": errTrack.Error()})
	default:
		log.WithError(errTrack).Error("track analytics event failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "track failed"})
	}
}
