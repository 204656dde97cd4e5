package content

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/energee/energee-site/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "content.db")
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := conn.AutoMigrate(&models.ContentSection{}, &models.Plan{}, &models.FAQ{}, &models.SiteSetting{}); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func TestLoader_RefreshLoadsAllTables(t *testing.T) {
	conn := openTestDB(t)
	seed := []any{
		&models.ContentSection{SectionKey: "hero", Content: datatypes.JSON(`{"title":"Olá"}`)},
		&models.Plan{Name: "B", Active: true, DisplayOrder: 2},
		&models.Plan{Name: "A", Active: true, DisplayOrder: 1},
		&models.Plan{Name: "Hidden", Active: true, DisplayOrder: 0},
		&models.FAQ{Question: "Q2", Answer: "A2", Active: true, DisplayOrder: 2},
		&models.FAQ{Question: "Q1", Answer: "A1", Active: true, DisplayOrder: 1},
		&models.SiteSetting{SettingKey: "contact_email", SettingValue: "x@example.com"},
		&models.SiteSetting{SettingKey: "blank", SettingValue: "  "},
	}
	for _, row := range seed {
		if err := conn.Create(row).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	// Active defaults to true on create; flip one plan off afterwards.
	if err := conn.Model(&models.Plan{}).Where("name = ?", "Hidden").Update("active", false).Error; err != nil {
		t.Fatalf("disable plan: %v", err)
	}

	loader := NewLoader(conn)
	if loader.Loaded() {
		t.Fatalf("expected loader to start unloaded")
	}
	if err := loader.Refresh(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !loader.Loaded() || loader.LastLoaded().IsZero() {
		t.Fatalf("expected loader marked loaded")
	}

	section, ok := loader.GetSection("hero")
	if !ok || string(section.Content) != `{"title":"Olá"}` {
		t.Fatalf("expected hero section, got %v %s", ok, section.Content)
	}
	if _, ok := loader.GetSection("Hero"); ok {
		t.Fatalf("expected exact-match lookup")
	}

	plans, ok := loader.Plans()
	if !ok || len(plans) != 2 || plans[0].Name != "A" || plans[1].Name != "B" {
		t.Fatalf("expected active plans ordered by display_order, got %+v", plans)
	}
	faqs, ok := loader.FAQs()
	if !ok || len(faqs) != 2 || faqs[0].Question != "Q1" {
		t.Fatalf("expected ordered faqs, got %+v", faqs)
	}

	if got := loader.GetSetting("contact_email", "d"); got != "x@example.com" {
		t.Fatalf("expected stored setting, got %q", got)
	}
	if got := loader.GetSetting("blank", "d"); got != "d" {
		t.Fatalf("expected default for blank setting, got %q", got)
	}
	if got := loader.GetSetting("missing", "d"); got != "d" {
		t.Fatalf("expected default for missing setting, got %q", got)
	}
}

func TestLoader_DisablingPlanRemovesItOnNextRefresh(t *testing.T) {
	conn := openTestDB(t)
	plan := models.Plan{Name: "Solo", Active: true}
	if err := conn.Create(&plan).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	loader := NewLoader(conn)
	_ = loader.Refresh(context.Background())
	if plans, _ := loader.Plans(); len(plans) != 1 {
		t.Fatalf("expected 1 plan, got %d", len(plans))
	}

	if err := conn.Model(&plan).Update("active", false).Error; err != nil {
		t.Fatalf("disable: %v", err)
	}
	_ = loader.Refresh(context.Background())
	plans, ok := loader.Plans()
	if !ok || len(plans) != 0 {
		t.Fatalf("expected no active plans, got %+v", plans)
	}
	var count int64
	conn.Model(&models.Plan{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected row kept, got %d", count)
	}
}

func TestLoader_FailedTableKeepsPreviousSnapshot(t *testing.T) {
	conn := openTestDB(t)
	if err := conn.Create(&models.FAQ{Question: "Q", Answer: "A", Active: true}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := conn.Create(&models.SiteSetting{SettingKey: "k", SettingValue: "v"}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	loader := NewLoader(conn)
	_ = loader.Refresh(context.Background())

	if err := conn.Migrator().DropTable(&models.FAQ{}); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if err := conn.Create(&models.SiteSetting{SettingKey: "k2", SettingValue: "v2"}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := loader.Refresh(context.Background()); err == nil {
		t.Fatalf("expected refresh error for dropped table")
	}
	faqs, ok := loader.FAQs()
	if !ok || len(faqs) != 1 {
		t.Fatalf("expected previous faq snapshot kept, got %+v", faqs)
	}
	if got := loader.GetSetting("k2", ""); got != "v2" {
		t.Fatalf("expected settings refreshed independently, got %q", got)
	}
}

func TestLoader_UnreachableStoreStillCompletes(t *testing.T) {
	loader := NewLoader(nil)
	if err := loader.Refresh(context.Background()); err == nil {
		t.Fatalf("expected error without a database")
	}
	if !loader.Loaded() {
		t.Fatalf("expected loader marked loaded after failed refresh")
	}
	if _, ok := loader.Plans(); ok {
		t.Fatalf("expected plans not loaded")
	}
	if got := loader.GetSetting("any", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestLoader_NilSafe(t *testing.T) {
	var loader *Loader
	if got := loader.GetSetting("k", "d"); got != "d" {
		t.Fatalf("expected default from nil loader, got %q", got)
	}
	if _, ok := loader.GetSection("hero"); ok {
		t.Fatalf("expected no section from nil loader")
	}
}
