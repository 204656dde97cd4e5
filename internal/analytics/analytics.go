package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/energee/energee-site/internal/metrics"
	"github.com/energee/energee-site/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EventFormSubmission is logged after every stored lead.
const EventFormSubmission = "form_submission"

var (
	// ErrMissingEventType is returned when event_type is blank.
	ErrMissingEventType = errors.New("analytics: event_type is required")
	// ErrInvalidEventData is returned when event_data is not valid JSON.
	ErrInvalidEventData = errors.New("analytics: event_data must be valid JSON")
)

// maxEventTypeLength matches the event_type column width.
const maxEventTypeLength = 128

// Event is one event to record.
type Event struct {
	EventType string
	EventData json.RawMessage // Defaults to {} when empty.
	UserAgent string
	Referrer  string
}

// Recorder stores analytics events.
type Recorder struct {
	db    *gorm.DB
	nowFn func() time.Time
}

// NewRecorder constructs a Recorder.
func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db, nowFn: time.Now}
}

// Track inserts one event. There is no deduplication.
func (r *Recorder) Track(ctx context.Context, ev Event) (models.AnalyticsEvent, error) {
	eventType := strings.TrimSpace(ev.EventType)
	if eventType == "" {
		return models.AnalyticsEvent{}, ErrMissingEventType
	}
	if utf8.RuneCountInString(eventType) > maxEventTypeLength {
		eventType = string([]rune(eventType)[:maxEventTypeLength])
	}
	data := bytes.TrimSpace(ev.EventData)
	if len(data) == 0 || string(data) == "null" {
		data = []byte("{}")
	}
	if !json.Valid(data) {
		return models.AnalyticsEvent{}, ErrInvalidEventData
	}

	row := models.AnalyticsEvent{
		ID:        uuid.NewString(),
		EventType: eventType,
		EventData: datatypes.JSON(data),
		UserAgent: ev.UserAgent,
		Referrer:  ev.Referrer,
		CreatedAt: r.nowFn().UTC(),
	}
	if errCreate := r.db.WithContext(ctx).Create(&row).Error; errCreate != nil {
		return models.AnalyticsEvent{}, fmt.Errorf("analytics: insert event: %w", errCreate)
	}
	metrics.RecordAnalyticsEvent(eventType)
	return row, nil
}

// TypeCount is the number of events of one type.
type TypeCount struct {
	EventType string `json:"event_type"`
	Count     int64  `json:"count"`
}

// Stats summarizes stored events for the admin dashboard.
type Stats struct {
	Total  int64       `json:"total"`
	Since  int64       `json:"since"` // Events at or after the requested time.
	ByType []TypeCount `json:"by_type"`
}

// Stats counts events overall, since the given time, and per type.
func (r *Recorder) Stats(ctx context.Context, since time.Time) (Stats, error) {
	var out Stats
	conn := r.db.WithContext(ctx)
	if errCount := conn.Model(&models.AnalyticsEvent{}).Count(&out.Total).Error; errCount != nil {
		return Stats{}, fmt.Errorf("analytics: count events: %w", errCount)
	}
	if errCount := conn.Model(&models.AnalyticsEvent{}).Where("created_at >= ?", since.UTC()).Count(&out.Since).Error; errCount != nil {
		return Stats{}, fmt.Errorf("analytics: count recent events: %w", errCount)
	}
	out.ByType = make([]TypeCount, 0)
	if errGroup := conn.Model(&models.AnalyticsEvent{}).
		Select("event_type, COUNT(*) AS count").
		Group("event_type").
		Order("count DESC, event_type ASC").
		Scan(&out.ByType).Error; errGroup != nil {
		return Stats{}, fmt.Errorf("analytics: group events: %w", errGroup)
	}
	return out, nil
}
