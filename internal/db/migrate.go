package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/energee/energee-site/internal/models"
	"github.com/energee/energee-site/internal/sections"
	internalsettings "github.com/energee/energee-site/internal/settings"
	"gorm.io/gorm"
)

// allModels lists every table owned by the service.
var allModels = []any{
	&models.Admin{},
	&models.ContentSection{},
	&models.Plan{},
	&models.FAQ{},
	&models.SiteSetting{},
	&models.FormSubmission{},
	&models.AnalyticsEvent{},
	&models.CRMJob{},
}

// Migrate runs database migrations for the current dialect.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	switch DialectName(conn) {
	case DialectSQLite:
		return migrateSQLite(conn)
	case DialectPostgres, "":
		return migratePostgres(conn)
	default:
		return fmt.Errorf("db: unsupported dialect: %s", DialectName(conn))
	}
}

// ddl defines an index or DDL statement to apply.
type ddl struct {
	name string // Human-readable name for error reporting.
	sql  string // SQL to execute.
}

// migratePostgres applies PostgreSQL-specific schema updates and indexes.
func migratePostgres(conn *gorm.DB) error {
	if errAutoMigrate := conn.AutoMigrate(allModels...); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}
	if errSeed := seedDefaults(conn); errSeed != nil {
		return errSeed
	}

	_ = conn.Exec(`CREATE EXTENSION IF NOT EXISTS pg_trgm`).Error

	ddls := []ddl{
		{
			name: "idx_plans_active_display_order",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_plans_active_display_order
				ON plans (display_order, id)
				WHERE active = true
			`,
		},
		{
			name: "idx_faqs_active_display_order",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_faqs_active_display_order
				ON faqs (display_order, id)
				WHERE active = true
			`,
		},
		{
			name: "idx_crm_jobs_pending_due",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_crm_jobs_pending_due
				ON crm_jobs (next_attempt_at, id)
				WHERE status = 'pending'
			`,
		},
		{
			name: "idx_form_submissions_email_trgm",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_form_submissions_email_trgm
				ON form_submissions USING gin (email gin_trgm_ops)
			`,
		},
		{
			name: "idx_form_submissions_name_trgm",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_form_submissions_name_trgm
				ON form_submissions USING gin (name gin_trgm_ops)
			`,
		},
	}
	for _, stmt := range ddls {
		if errExec := conn.Exec(stmt.sql).Error; errExec != nil {
			return fmt.Errorf("db: create %s: %w", stmt.name, errExec)
		}
	}
	return nil
}

// migrateSQLite applies SQLite schema updates and indexes.
func migrateSQLite(conn *gorm.DB) error {
	if errAutoMigrate := conn.AutoMigrate(allModels...); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}
	if errSeed := seedDefaults(conn); errSeed != nil {
		return errSeed
	}

	ddls := []ddl{
		{
			name: "idx_plans_active_display_order",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_plans_active_display_order
				ON plans (active, display_order, id)
			`,
		},
		{
			name: "idx_faqs_active_display_order",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_faqs_active_display_order
				ON faqs (active, display_order, id)
			`,
		},
		{
			name: "idx_crm_jobs_status_due",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_crm_jobs_status_due
				ON crm_jobs (status, next_attempt_at, id)
			`,
		},
	}
	for _, stmt := range ddls {
		if errExec := conn.Exec(stmt.sql).Error; errExec != nil {
			return fmt.Errorf("db: create %s: %w", stmt.name, errExec)
		}
	}
	return nil
}

// seedDefaults fills empty tables with the built-in site content.
func seedDefaults(conn *gorm.DB) error {
	if errSeed := ensureDefaultPlans(conn); errSeed != nil {
		return errSeed
	}
	if errSeed := ensureDefaultFAQs(conn); errSeed != nil {
		return errSeed
	}
	if errSeed := ensureStringSetting(conn, internalsettings.CompanyNameKey, internalsettings.DefaultCompanyName); errSeed != nil {
		return errSeed
	}
	if errSeed := ensureStringSetting(conn, internalsettings.ContactEmailKey, internalsettings.DefaultContactEmail); errSeed != nil {
		return errSeed
	}
	return ensureStringSetting(conn, internalsettings.WhatsAppNumberKey, internalsettings.DefaultWhatsAppNumber)
}

// ensureDefaultPlans seeds the built-in plan tiers when the table is empty.
func ensureDefaultPlans(conn *gorm.DB) error {
	var count int64
	if errCount := conn.Model(&models.Plan{}).Count(&count).Error; errCount != nil {
		return fmt.Errorf("db: count plans: %w", errCount)
	}
	if count > 0 {
		return nil
	}
	plans := sections.DefaultPlans()
	if errCreate := conn.Create(&plans).Error; errCreate != nil {
		return fmt.Errorf("db: seed plans: %w", errCreate)
	}
	return nil
}

// ensureDefaultFAQs seeds the built-in FAQ entries when the table is empty.
func ensureDefaultFAQs(conn *gorm.DB) error {
	var count int64
	if errCount := conn.Model(&models.FAQ{}).Count(&count).Error; errCount != nil {
		return fmt.Errorf("db: count faqs: %w", errCount)
	}
	if count > 0 {
		return nil
	}
	faqs := sections.DefaultFAQs()
	if errCreate := conn.Create(&faqs).Error; errCreate != nil {
		return fmt.Errorf("db: seed faqs: %w", errCreate)
	}
	return nil
}

// ensureStringSetting creates a setting with value when the key is missing.
// Existing values, including deliberately blank ones, are left alone.
func ensureStringSetting(conn *gorm.DB, key, value string) error {
	var existing models.SiteSetting
	errFind := conn.Where("setting_key = ?", key).First(&existing).Error
	if errFind == nil {
		return nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return fmt.Errorf("db: query %s setting: %w", key, errFind)
	}
	setting := models.SiteSetting{
		SettingKey:   key,
		SettingValue: value,
		UpdatedAt:    time.Now().UTC(),
	}
	if errCreate := conn.Create(&setting).Error; errCreate != nil {
		return fmt.Errorf("db: create %s setting: %w", key, errCreate)
	}
	return nil
}
