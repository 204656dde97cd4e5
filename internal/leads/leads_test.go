package leads

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/energee/energee-site/internal/analytics"
	"github.com/energee/energee-site/internal/config"
	dbutil "github.com/energee/energee-site/internal/db"
	"github.com/energee/energee-site/internal/models"
	internalsettings "github.com/energee/energee-site/internal/settings"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mapSettings map[string]string

func (m mapSettings) GetSetting(key, def string) string {
	if v, ok := m[key]; ok && v != "" {
		return v
	}
	return def
}

type recordingNotifier struct {
	mu       sync.Mutex
	subjects []string
}

func (n *recordingNotifier) Notify(_ context.Context, subject, _ string) error {
	n.mu.Lock()
	n.subjects = append(n.subjects, subject)
	n.mu.Unlock()
	return nil
}

type failingTracker struct{}

func (failingTracker) Track(context.Context, analytics.Event) (models.AnalyticsEvent, error) {
	return models.AnalyticsEvent{}, errors.New("analytics down")
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := dbutil.Open("file:" + filepath.Join(t.TempDir(), "leads.db"))
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.FormSubmission{}, &models.AnalyticsEvent{}, &models.CRMJob{}))
	return conn
}

func validSubmission() Submission {
	return Submission{
		Name:        "Maria da Silva Souza",
		Email:       "maria@example.com",
		Phone:       "(11) 99999-0000",
		Estado:      "SP",
		Consumption: "250-500 kWh",
	}
}

func crmSettings(url string) mapSettings {
	return mapSettings{
		internalsettings.MauticAPIURLKey:   url,
		internalsettings.MauticAPITokenKey: "tok",
	}
}

func TestSubmit_StoresLeadAndEvent(t *testing.T) {
	conn := openTestDB(t)
	svc := NewService(conn, mapSettings{}, analytics.NewRecorder(conn))

	row, err := svc.Submit(context.Background(), validSubmission(), RequestMeta{ClientIP: "10.0.0.1", UserAgent: "ua", Referrer: "ref"})
	require.NoError(t, err)
	require.NotEmpty(t, row.ID)
	require.Equal(t, SourceWebsite, row.Source)
	require.Nil(t, row.Message)

	var events []models.AnalyticsEvent
	require.NoError(t, conn.Find(&events).Error)
	require.Len(t, events, 1)
	require.Equal(t, analytics.EventFormSubmission, events[0].EventType)
	require.JSONEq(t, `{"form_type":"lead_capture","source":"website"}`, string(events[0].EventData))
	require.Equal(t, "ua", events[0].UserAgent)

	var jobs int64
	conn.Model(&models.CRMJob{}).Count(&jobs)
	require.Zero(t, jobs, "no crm job without crm settings")
}

func TestSubmit_EnqueuesCRMJobWhenConfigured(t *testing.T) {
	conn := openTestDB(t)
	svc := NewService(conn, crmSettings("https://crm.example.com"), nil)

	row, err := svc.Submit(context.Background(), validSubmission(), RequestMeta{})
	require.NoError(t, err)

	var job models.CRMJob
	require.NoError(t, conn.First(&job).Error)
	require.Equal(t, row.ID, job.SubmissionID)
	require.Equal(t, models.CRMJobPending, job.Status)

	var contact Contact
	require.NoError(t, json.Unmarshal(job.Payload, &contact))
	require.Equal(t, "Maria", contact.Firstname)
	require.Equal(t, "da Silva Souza", contact.Lastname)
	require.Equal(t, "SP", contact.State)
	require.Equal(t, []string{"website-lead", "energee-form"}, contact.Tags)
}

func TestSubmit_ValidationError(t *testing.T) {
	conn := openTestDB(t)
	svc := NewService(conn, mapSettings{}, nil)

	in := validSubmission()
	in.Email = "not-an-email"
	_, err := svc.Submit(context.Background(), in, RequestMeta{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "email", verr.Tag)

	in = validSubmission()
	in.Name = "   "
	_, err = svc.Submit(context.Background(), in, RequestMeta{})
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "required", verr.Tag)
	require.Equal(t, "name", verr.Field)

	var count int64
	conn.Model(&models.FormSubmission{}).Count(&count)
	require.Zero(t, count)
}

func TestSubmit_TrackFailureStillAcceptsLead(t *testing.T) {
	conn := openTestDB(t)
	svc := NewService(conn, mapSettings{}, failingTracker{})

	row, err := svc.Submit(context.Background(), validSubmission(), RequestMeta{})
	require.NoError(t, err)
	require.NotEmpty(t, row.ID)

	var count int64
	conn.Model(&models.FormSubmission{}).Count(&count)
	require.Equal(t, int64(1), count)
}

func TestSubmit_EnqueueFailureStillAcceptsLead(t *testing.T) {
	conn := openTestDB(t)
	require.NoError(t, conn.Migrator().DropTable(&models.CRMJob{}))
	svc := NewService(conn, crmSettings("https://crm.example.com"), analytics.NewRecorder(conn))

	row, err := svc.Submit(context.Background(), validSubmission(), RequestMeta{})
	require.NoError(t, err)
	require.NotEmpty(t, row.ID)

	var stored, events int64
	conn.Model(&models.FormSubmission{}).Count(&stored)
	conn.Model(&models.AnalyticsEvent{}).Count(&events)
	require.Equal(t, int64(1), stored)
	require.Equal(t, int64(1), events, "event is logged even when the outbox insert fails")
}

func TestSubmit_InsertFailureLeavesNothingBehind(t *testing.T) {
	conn := openTestDB(t)
	require.NoError(t, conn.Migrator().DropTable(&models.FormSubmission{}))
	svc := NewService(conn, crmSettings("https://crm.example.com"), analytics.NewRecorder(conn))

	_, err := svc.Submit(context.Background(), validSubmission(), RequestMeta{})
	require.ErrorIs(t, err, ErrStoreFailed)

	var jobs, events int64
	conn.Model(&models.CRMJob{}).Count(&jobs)
	conn.Model(&models.AnalyticsEvent{}).Count(&events)
	require.Zero(t, jobs)
	require.Zero(t, events)
}

func TestWorker_DeliversToMautic(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	conn := openTestDB(t)
	settings := crmSettings(server.URL)
	svc := NewService(conn, settings, nil)
	_, err := svc.Submit(context.Background(), validSubmission(), RequestMeta{})
	require.NoError(t, err)

	worker := NewWorker(conn, settings, NewMauticClient(time.Second), nil, config.CRMConfig{MaxAttempts: 3})
	handled, err := worker.ProcessDue(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, handled)

	require.Equal(t, "Bearer tok", gotAuth)
	require.Equal(t, "/api/contacts/new", gotPath)
	require.Equal(t, "maria@example.com", gotBody["email"])

	var job models.CRMJob
	require.NoError(t, conn.First(&job).Error)
	require.Equal(t, models.CRMJobDone, job.Status)
	require.Equal(t, 1, job.Attempts)
	require.NotNil(t, job.CompletedAt)
}

func TestWorker_FailingCRMRetriesThenDeadLetters(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	conn := openTestDB(t)
	settings := crmSettings(server.URL)
	svc := NewService(conn, settings, nil)
	row, err := svc.Submit(context.Background(), validSubmission(), RequestMeta{})
	require.NoError(t, err, "lead must be stored even when the crm is down")

	notifier := &recordingNotifier{}
	worker := NewWorker(conn, settings, NewMauticClient(time.Second), notifier, config.CRMConfig{MaxAttempts: 2})
	clock := time.Now()
	worker.nowFn = func() time.Time { return clock }

	_, err = worker.ProcessDue(context.Background())
	require.NoError(t, err)
	var job models.CRMJob
	require.NoError(t, conn.First(&job).Error)
	require.Equal(t, models.CRMJobPending, job.Status)
	require.Equal(t, 1, job.Attempts)
	require.Contains(t, job.LastError, "502")

	// Not due yet.
	handled, _ := worker.ProcessDue(context.Background())
	require.Zero(t, handled)

	clock = clock.Add(Backoff(1) + time.Second)
	_, err = worker.ProcessDue(context.Background())
	require.NoError(t, err)
	require.NoError(t, conn.First(&job).Error)
	require.Equal(t, models.CRMJobDead, job.Status)
	require.Equal(t, 2, job.Attempts)
	require.Equal(t, int32(2), calls.Load())
	require.Equal(t, []string{"CRM delivery failed"}, notifier.subjects)

	var stored models.FormSubmission
	require.NoError(t, conn.First(&stored, "id = ?", row.ID).Error)

	retried, err := RetryJob(context.Background(), conn, job.ID, clock)
	require.NoError(t, err)
	require.Equal(t, models.CRMJobPending, retried.Status)
	require.Zero(t, retried.Attempts)
	require.Nil(t, retried.CompletedAt)

	counts, err := CountJobsByStatus(context.Background(), conn)
	require.NoError(t, err)
	require.Equal(t, int64(1), counts[models.CRMJobPending])
	require.Equal(t, int64(0), counts[models.CRMJobDead])
}

func TestWorker_DeadLettersWhenCRMSettingsRemoved(t *testing.T) {
	conn := openTestDB(t)
	settings := crmSettings("https://crm.example.com")
	svc := NewService(conn, settings, nil)
	_, err := svc.Submit(context.Background(), validSubmission(), RequestMeta{})
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	worker := NewWorker(conn, mapSettings{}, NewMauticClient(time.Second), notifier, config.CRMConfig{})
	_, err = worker.ProcessDue(context.Background())
	require.NoError(t, err)

	var job models.CRMJob
	require.NoError(t, conn.First(&job).Error)
	require.Equal(t, models.CRMJobDead, job.Status)
	require.Equal(t, reasonNotConfigured, job.LastError)
	require.Len(t, notifier.subjects, 1)
}

func TestRetryJob_NotFound(t *testing.T) {
	_, err := RetryJob(context.Background(), openTestDB(t), 99, time.Now())
	require.True(t, errors.Is(err, ErrJobNotFound))
}

func TestRetryJob_OnlyDeadJobs(t *testing.T) {
	conn := openTestDB(t)
	now := time.Now().UTC().Truncate(time.Second)
	pending := models.CRMJob{SubmissionID: "p", Payload: []byte(`{}`), Status: models.CRMJobPending, Attempts: 3, NextAttemptAt: now.Add(time.Hour)}
	done := models.CRMJob{SubmissionID: "d", Payload: []byte(`{}`), Status: models.CRMJobDone, Attempts: 1, NextAttemptAt: now, CompletedAt: &now}
	require.NoError(t, conn.Create(&pending).Error)
	require.NoError(t, conn.Create(&done).Error)

	_, err := RetryJob(context.Background(), conn, pending.ID, now)
	require.ErrorIs(t, err, ErrJobNotDead)
	_, err = RetryJob(context.Background(), conn, done.ID, now)
	require.ErrorIs(t, err, ErrJobNotDead)

	var stored models.CRMJob
	require.NoError(t, conn.First(&stored, pending.ID).Error)
	require.Equal(t, models.CRMJobPending, stored.Status)
	require.Equal(t, 3, stored.Attempts)
	require.WithinDuration(t, now.Add(time.Hour), stored.NextAttemptAt, time.Second)
	require.NoError(t, conn.First(&stored, done.ID).Error)
	require.Equal(t, models.CRMJobDone, stored.Status)

	dead := models.CRMJob{SubmissionID: "x", Payload: []byte(`{}`), Status: models.CRMJobDead, Attempts: 5, NextAttemptAt: now, CompletedAt: &now}
	require.NoError(t, conn.Create(&dead).Error)
	job, err := RetryJob(context.Background(), conn, dead.ID, now)
	require.NoError(t, err)
	require.Equal(t, models.CRMJobPending, job.Status)
	require.Zero(t, job.Attempts)
	require.Nil(t, job.CompletedAt)
}

func TestTruncateUTF8_KeepsRunesWhole(t *testing.T) {
	body := strings.Repeat("ã", maxErrorBody)
	got := truncateUTF8(body, maxErrorBody+1)
	require.True(t, utf8.ValidString(got))
	require.LessOrEqual(t, len(got), maxErrorBody+1)
	require.Equal(t, maxErrorBody, len(got))
	require.Equal(t, "short", truncateUTF8("short", maxErrorBody))
}

func TestListJobs_FiltersByStatus(t *testing.T) {
	conn := openTestDB(t)
	now := time.Now().UTC()
	for _, status := range []string{models.CRMJobPending, models.CRMJobDead, models.CRMJobDead} {
		require.NoError(t, conn.Create(&models.CRMJob{SubmissionID: "s", Payload: []byte(`{}`), Status: status, NextAttemptAt: now}).Error)
	}
	jobs, total, err := ListJobs(context.Background(), conn, JobQuery{Status: models.CRMJobDead})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, jobs, 2)
}

func TestBackoff(t *testing.T) {
	require.Equal(t, 30*time.Second, Backoff(1))
	require.Equal(t, time.Minute, Backoff(2))
	require.Equal(t, 2*time.Minute, Backoff(3))
	require.Equal(t, time.Hour, Backoff(20))
}

func TestContactFromSubmission_SingleName(t *testing.T) {
	contact := ContactFromSubmission(models.FormSubmission{Name: "Cher"})
	require.Equal(t, "Cher", contact.Firstname)
	require.Empty(t, contact.Lastname)
}
