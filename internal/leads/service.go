package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/energee/energee-site/internal/analytics"
	"github.com/energee/energee-site/internal/metrics"
	"github.com/energee/energee-site/internal/models"
	internalsettings "github.com/energee/energee-site/internal/settings"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SourceWebsite tags leads captured by the public form.
const SourceWebsite = "website"

// ErrStoreFailed is returned when the submission row could not be written.
var ErrStoreFailed = errors.New("leads: store submission failed")

// Submission is the public lead form payload.
type Submission struct {
	Name        string `json:"name" validate:"required,max=255"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Phone       string `json:"phone" validate:"required,max=64"`
	Estado      string `json:"estado" validate:"required,max=64"`
	Consumption string `json:"consumption" validate:"max=255"`
	Message     string `json:"message" validate:"max=5000"`
}

// RequestMeta carries request details stored alongside a lead.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
	Referrer  string
}

// ValidationError reports the first invalid field of a submission.
type ValidationError struct {
	Field string
	Tag   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("leads: invalid %s (%s)", e.Field, e.Tag)
}

// Message is the user-facing text for the error.
func (e *ValidationError) Message() string {
	switch e.Tag {
	case "required":
		return "Por favor, preencha todos os campos obrigatórios."
	case "email":
		return "Por favor, informe um email válido."
	default:
		return "Dados do formulário inválidos."
	}
}

// SettingsReader reads site settings.
type SettingsReader interface {
	GetSetting(key, def string) string
}

// EventTracker records analytics events.
type EventTracker interface {
	Track(ctx context.Context, ev analytics.Event) (models.AnalyticsEvent, error)
}

// Service stores leads and queues them for the CRM.
type Service struct {
	db       *gorm.DB
	settings SettingsReader
	events   EventTracker
	validate *validator.Validate
	nowFn    func() time.Time
}

// NewService constructs a lead service. events may be nil.
func NewService(db *gorm.DB, settings SettingsReader, events EventTracker) *Service {
	return &Service{
		db:       db,
		settings: settings,
		events:   events,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		nowFn:    time.Now,
	}
}

// Validate trims the submission and checks required fields.
func (s *Service) Validate(in *Submission) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Estado = strings.TrimSpace(in.Estado)
	in.Consumption = strings.TrimSpace(in.Consumption)
	in.Message = strings.TrimSpace(in.Message)
	errValidate := s.validate.Struct(in)
	if errValidate == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(errValidate, &fieldErrs) && len(fieldErrs) > 0 {
		return &ValidationError{Field: strings.ToLower(fieldErrs[0].Field()), Tag: fieldErrs[0].Tag()}
	}
	return &ValidationError{Tag: "invalid"}
}

// Submit validates and stores a lead, queues CRM delivery when configured
// and logs a form_submission event. Only validation and the lead insert
// can fail the call.
func (s *Service) Submit(ctx context.Context, in Submission, meta RequestMeta) (models.FormSubmission, error) {
	if errValidate := s.Validate(&in); errValidate != nil {
		metrics.RecordSubmission("invalid")
		return models.FormSubmission{}, errValidate
	}

	now := s.nowFn().UTC()
	row := models.FormSubmission{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Email:       in.Email,
		Phone:       in.Phone,
		Estado:      in.Estado,
		Consumption: optional(in.Consumption),
		Message:     optional(in.Message),
		Source:      SourceWebsite,
		ClientIP:    meta.ClientIP,
		CreatedAt:   now,
	}
	if errCreate := s.db.WithContext(ctx).Create(&row).Error; errCreate != nil {
		metrics.RecordSubmission("failed")
		log.WithError(errCreate).Error("leads: insert submission failed")
		return models.FormSubmission{}, fmt.Errorf("%w: %v", ErrStoreFailed, errCreate)
	}
	metrics.RecordSubmission("accepted")

	if errEnqueue := s.enqueueCRM(ctx, row, now); errEnqueue != nil {
		log.WithError(errEnqueue).WithField("submission_id", row.ID).Warn("leads: enqueue crm job failed")
	}
	s.trackSubmission(ctx, meta)
	return row, nil
}

// enqueueCRM writes an outbox job when the CRM is configured.
func (s *Service) enqueueCRM(ctx context.Context, row models.FormSubmission, now time.Time) error {
	if !crmConfigured(s.settings) {
		return nil
	}
	payload, errMarshal := json.Marshal(ContactFromSubmission(row))
	if errMarshal != nil {
		return fmt.Errorf("encode contact: %w", errMarshal)
	}
	job := models.CRMJob{
		SubmissionID:  row.ID,
		Payload:       datatypes.JSON(payload),
		Status:        models.CRMJobPending,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return s.db.WithContext(ctx).Create(&job).Error
}

func (s *Service) trackSubmission(ctx context.Context, meta RequestMeta) {
	if s.events == nil {
		return
	}
	data, _ := json.Marshal(map[string]string{"form_type": "lead_capture", "source": SourceWebsite})
	if _, errTrack := s.events.Track(ctx, analytics.Event{
		EventType: analytics.EventFormSubmission,
		EventData: data,
		UserAgent: meta.UserAgent,
		Referrer:  meta.Referrer,
	}); errTrack != nil {
		log.WithError(errTrack).Warn("leads: track form submission failed")
	}
}

// crmConfigured reports whether both CRM settings are present.
func crmConfigured(settings SettingsReader) bool {
	if settings == nil {
		return false
	}
	return settings.GetSetting(internalsettings.MauticAPIURLKey, "") != "" &&
		settings.GetSetting(internalsettings.MauticAPITokenKey, "") != ""
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
