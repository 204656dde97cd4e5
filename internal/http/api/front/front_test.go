package front

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/energee/energee-site/internal/analytics"
	"github.com/energee/energee-site/internal/config"
	"github.com/energee/energee-site/internal/content"
	dbutil "github.com/energee/energee-site/internal/db"
	"github.com/energee/energee-site/internal/leads"
	"github.com/energee/energee-site/internal/models"
	"github.com/energee/energee-site/internal/ratelimit"
	internalsettings "github.com/energee/energee-site/internal/settings"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
	loader *content.Loader
}

func newTestServer(t *testing.T, limits config.RateLimitConfig) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	conn, err := dbutil.Open("file:" + filepath.Join(t.TempDir(), "front.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if errMigrate := dbutil.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	loader := content.NewLoader(conn)
	if errRefresh := loader.Refresh(context.Background()); errRefresh != nil {
		t.Fatalf("refresh: %v", errRefresh)
	}
	recorder := analytics.NewRecorder(conn)
	engine := gin.New()
	RegisterFrontRoutes(engine, Deps{
		Content:   loader,
		Leads:     leads.NewService(conn, loader, recorder),
		Analytics: recorder,
		Limiter:   ratelimit.NewManager(ratelimit.Options{}),
		Limits:    limits,
	})
	return &testServer{engine: engine, db: conn, loader: loader}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", "front-test")
	req.RemoteAddr = "203.0.113.7:1234"
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

const validLead = `{"name":"João Pereira","email":"joao@example.com","phone":"11999990000","estado":"MG","consumption":"300 kWh"}`

func TestSubmit_Success(t *testing.T) {
	srv := newTestServer(t, config.RateLimitConfig{})
	rec := srv.do(http.MethodPost, "/v0/forms/submit", validLead)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success      bool   `json:"success"`
		Message      string `json:"message"`
		SubmissionID string `json:"submissionId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.SubmissionID == "" || resp.Message != "Formulário enviado com sucesso!" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected open CORS, got %q", got)
	}

	var submissions, events int64
	srv.db.Model(&models.FormSubmission{}).Count(&submissions)
	srv.db.Model(&models.AnalyticsEvent{}).Where("event_type = ?", "form_submission").Count(&events)
	if submissions != 1 || events != 1 {
		t.Fatalf("expected 1 submission and 1 event, got %d and %d", submissions, events)
	}
	var stored models.FormSubmission
	srv.db.First(&stored)
	if stored.ClientIP != "203.0.113.7" {
		t.Fatalf("expected client ip recorded, got %q", stored.ClientIP)
	}
}

func TestSubmit_Invalid(t *testing.T) {
	srv := newTestServer(t, config.RateLimitConfig{})
	rec := srv.do(http.MethodPost, "/v0/forms/submit", `{"name":"X","email":"bad","phone":"1","estado":"SP"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	rec = srv.do(http.MethodPost, "/v0/forms/submit", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestSubmit_InsertFailure(t *testing.T) {
	srv := newTestServer(t, config.RateLimitConfig{})
	if err := srv.db.Migrator().DropTable(&models.FormSubmission{}); err != nil {
		t.Fatalf("drop: %v", err)
	}
	rec := srv.do(http.MethodPost, "/v0/forms/submit", validLead)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Erro ao processar formulário. Tente novamente.") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
	var events int64
	srv.db.Model(&models.AnalyticsEvent{}).Count(&events)
	if events != 0 {
		t.Fatalf("expected no analytics event after failed insert, got %d", events)
	}
}

func TestSubmit_RateLimited(t *testing.T) {
	srv := newTestServer(t, config.RateLimitConfig{SubmitPerMinute: 2})
	for i := 0; i < 2; i++ {
		if rec := srv.do(http.MethodPost, "/v0/forms/submit", validLead); rec.Code != http.StatusOK {
			t.Fatalf("expected 200 for request %d, got %d", i, rec.Code)
		}
	}
	rec := srv.do(http.MethodPost, "/v0/forms/submit", validLead)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestPreflight(t *testing.T) {
	srv := newTestServer(t, config.RateLimitConfig{})
	for _, path := range []string{"/v0/forms/submit", "/v0/analytics/track"} {
		rec := srv.do(http.MethodOptions, path, "")
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204 for %s, got %d", path, rec.Code)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Fatalf("expected CORS header for %s", path)
		}
	}
}

func TestTrack(t *testing.T) {
	srv := newTestServer(t, config.RateLimitConfig{})
	if rec := srv.do(http.MethodPost, "/v0/analytics/track", `{"event_data":{"x":1}}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without event_type, got %d", rec.Code)
	}
	rec := srv.do(http.MethodPost, "/v0/analytics/track", `{"event_type":"whatsapp_click","event_data":{"location":"header"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var event models.AnalyticsEvent
	if err := srv.db.Where("event_type = ?", "whatsapp_click").First(&event).Error; err != nil {
		t.Fatalf("find event: %v", err)
	}
	if event.UserAgent != "front-test" {
		t.Fatalf("expected user agent stored, got %q", event.UserAgent)
	}
}

func TestPage_RendersDefaults(t *testing.T) {
	srv := newTestServer(t, config.RateLimitConfig{})
	rec := srv.do(http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("expected html, got %q", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), "Escolha seu Plano de Economia") {
		t.Fatalf("expected plans heading in page")
	}
}

func TestContent_HidesIntegrationSettings(t *testing.T) {
	srv := newTestServer(t, config.RateLimitConfig{})
	srv.db.Create(&models.SiteSetting{SettingKey: internalsettings.MauticAPITokenKey, SettingValue: "secret-token"})
	srv.db.Create(&models.SiteSetting{SettingKey: internalsettings.MauticAPIURLKey, SettingValue: "https://crm.example.com"})
	if err := srv.loader.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	rec := srv.do(http.MethodGet, "/v0/site/content", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "secret-token") || strings.Contains(body, "crm.example.com") {
		t.Fatalf("expected integration settings hidden, got %s", body)
	}
	if !strings.Contains(body, internalsettings.DefaultContactEmail) {
		t.Fatalf("expected public settings in content")
	}
}

func TestPlans_DisabledPlanHiddenAfterRefresh(t *testing.T) {
	srv := newTestServer(t, config.RateLimitConfig{})
	if err := srv.db.Model(&models.Plan{}).Where("name = ?", "Máximo").Update("active", false).Error; err != nil {
		t.Fatalf("disable: %v", err)
	}
	if err := srv.loader.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	rec := srv.do(http.MethodGet, "/v0/site/plans", "")
	var resp struct {
		Plans []struct {
			Name string `json:"name"`
		} `json:"plans"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Plans) != 2 {
		t.Fatalf("expected 2 public plans, got %d", len(resp.Plans))
	}
	for _, plan := range resp.Plans {
		if plan.Name == "Máximo" {
			t.Fatalf("expected disabled plan hidden")
		}
	}
	var rows int64
	srv.db.Model(&models.Plan{}).Count(&rows)
	if rows != 3 {
		t.Fatalf("expected disabled plan row kept, got %d rows", rows)
	}
}
