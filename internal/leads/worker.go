package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/energee/energee-site/internal/config"
	"github.com/energee/energee-site/internal/metrics"
	"github.com/energee/energee-site/internal/models"
	"github.com/energee/energee-site/internal/notify"
	internalsettings "github.com/energee/energee-site/internal/settings"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	baseBackoff = 30 * time.Second
	maxBackoff  = time.Hour

	// reasonNotConfigured dead-letters jobs whose CRM settings were removed.
	reasonNotConfigured = "crm not configured"
)

var (
	// ErrJobNotFound is returned when a CRM job does not exist.
	ErrJobNotFound = errors.New("leads: crm job not found")
	// ErrJobNotDead is returned when retrying a job that is not dead-lettered.
	ErrJobNotDead = errors.New("leads: crm job is not dead")
)

// Backoff returns the delay before the next attempt after attempts failures.
func Backoff(attempts int) time.Duration {
	if attempts <= 0 {
		return baseBackoff
	}
	delay := baseBackoff
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}

// Worker drains the CRM outbox.
type Worker struct {
	db       *gorm.DB
	settings SettingsReader
	client   CRMClient
	notifier notify.Notifier
	cfg      config.CRMConfig
	nowFn    func() time.Time
}

// NewWorker constructs an outbox worker. notifier may be nil.
func NewWorker(db *gorm.DB, settings SettingsReader, client CRMClient, notifier notify.Notifier, cfg config.CRMConfig) *Worker {
	if db == nil {
		return nil
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &Worker{
		db:       db,
		settings: settings,
		client:   client,
		notifier: notifier,
		cfg:      cfg,
		nowFn:    time.Now,
	}
}

// Start runs the delivery loop in the background until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	if w == nil {
		return
	}
	go w.run(ctx)
	log.Infof("crm outbox worker started (interval=%s, max_attempts=%d)", w.cfg.PollInterval, w.cfg.MaxAttempts)
}

func (w *Worker) run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()
	for {
		if _, err := w.ProcessDue(ctx); err != nil && ctx.Err() == nil {
			log.WithError(err).Warn("crm worker: process due jobs failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ProcessDue delivers up to one batch of due jobs and returns how many it handled.
func (w *Worker) ProcessDue(ctx context.Context) (int, error) {
	if w == nil {
		return 0, nil
	}
	now := w.nowFn().UTC()
	var jobs []models.CRMJob
	if errFind := w.db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", models.CRMJobPending, now).
		Order("next_attempt_at ASC, id ASC").
		Limit(w.cfg.BatchSize).
		Find(&jobs).Error; errFind != nil {
		return 0, fmt.Errorf("crm worker: load jobs: %w", errFind)
	}
	handled := 0
	for i := range jobs {
		if ctx.Err() != nil {
			break
		}
		claimed, errClaim := w.claim(ctx, &jobs[i], now)
		if errClaim != nil {
			log.WithError(errClaim).WithField("job_id", jobs[i].ID).Warn("crm worker: claim failed")
			continue
		}
		if !claimed {
			continue
		}
		w.deliver(ctx, jobs[i])
		handled++
	}
	return handled, nil
}

// claim leases a job so another instance does not send it concurrently.
func (w *Worker) claim(ctx context.Context, job *models.CRMJob, now time.Time) (bool, error) {
	lease := now.Add(2 * w.cfg.Timeout)
	res := w.db.WithContext(ctx).Model(&models.CRMJob{}).
		Where("id = ? AND status = ? AND next_attempt_at = ?", job.ID, models.CRMJobPending, job.NextAttemptAt).
		Updates(map[string]any{"next_attempt_at": lease, "updated_at": now})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (w *Worker) deliver(ctx context.Context, job models.CRMJob) {
	baseURL := ""
	token := ""
	if w.settings != nil {
		baseURL = w.settings.GetSetting(internalsettings.MauticAPIURLKey, "")
		token = w.settings.GetSetting(internalsettings.MauticAPITokenKey, "")
	}
	if baseURL == "" || token == "" || w.client == nil {
		w.markDead(ctx, job, job.Attempts, reasonNotConfigured)
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, w.cfg.Timeout)
	start := time.Now()
	errSend := w.client.CreateContact(sendCtx, baseURL, token, job.Payload)
	cancel()
	elapsed := time.Since(start).Seconds()

	attempts := job.Attempts + 1
	now := w.nowFn().UTC()
	if errSend == nil {
		metrics.RecordCRMAttempt("success", elapsed)
		if errUpdate := w.db.WithContext(ctx).Model(&models.CRMJob{}).Where("id = ?", job.ID).Updates(map[string]any{
			"status":       models.CRMJobDone,
			"attempts":     attempts,
			"last_error":   "",
			"completed_at": now,
			"updated_at":   now,
		}).Error; errUpdate != nil {
			log.WithError(errUpdate).WithField("job_id", job.ID).Error("crm worker: mark done failed")
			return
		}
		log.WithFields(log.Fields{"job_id": job.ID, "submission_id": job.SubmissionID}).Info("lead sent to crm")
		return
	}

	metrics.RecordCRMAttempt("failure", elapsed)
	if attempts >= w.cfg.MaxAttempts {
		w.markDead(ctx, job, attempts, errSend.Error())
		return
	}
	next := now.Add(Backoff(attempts))
	if errUpdate := w.db.WithContext(ctx).Model(&models.CRMJob{}).Where("id = ?", job.ID).Updates(map[string]any{
		"attempts":        attempts,
		"last_error":      errSend.Error(),
		"next_attempt_at": next,
		"updated_at":      now,
	}).Error; errUpdate != nil {
		log.WithError(errUpdate).WithField("job_id", job.ID).Error("crm worker: schedule retry failed")
		return
	}
	log.WithError(errSend).WithFields(log.Fields{
		"job_id":   job.ID,
		"attempts": attempts,
		"next":     next.Format(time.RFC3339),
	}).Warn("crm worker: delivery failed, retrying")
}

// markDead moves a job to the dead state and raises the operator alert.
func (w *Worker) markDead(ctx context.Context, job models.CRMJob, attempts int, reason string) {
	now := w.nowFn().UTC()
	if errUpdate := w.db.WithContext(ctx).Model(&models.CRMJob{}).Where("id = ?", job.ID).Updates(map[string]any{
		"status":       models.CRMJobDead,
		"attempts":     attempts,
		"last_error":   reason,
		"completed_at": now,
		"updated_at":   now,
	}).Error; errUpdate != nil {
		log.WithError(errUpdate).WithField("job_id", job.ID).Error("crm worker: mark dead failed")
		return
	}
	metrics.RecordCRMDeadLetter()
	log.WithFields(log.Fields{
		"job_id":        job.ID,
		"submission_id": job.SubmissionID,
		"attempts":      attempts,
		"reason":        reason,
	}).Error("crm worker: job dead-lettered")

	body := fmt.Sprintf(
		"A lead could not be delivered to the CRM.\n\nJob: %d\nSubmission: %s\nAttempts: %d\nReason: %s\n\nRetry it from the admin panel once the CRM is reachable.",
		job.ID, job.SubmissionID, attempts, reason,
	)
	if errNotify := w.notifier.Notify(ctx, "CRM delivery failed", body); errNotify != nil {
		log.WithError(errNotify).Warn("crm worker: dead-letter alert failed")
	}
}
