package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/energee/energee-site/internal/config"
	"github.com/energee/energee-site/internal/db"
	"github.com/energee/energee-site/internal/models"
	"github.com/energee/energee-site/internal/security"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// minBootstrapPasswordLength is the shortest accepted bootstrap password.
const minBootstrapPasswordLength = 8

// ErrAdminExists is returned when an admin already exists.
var ErrAdminExists = errors.New("admin already initialized")

// CreateAdminUser opens the database, migrates it and creates a super admin.
func CreateAdminUser(dsn string, username, password string) error {
	conn, err := db.Open(dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return fmt.Errorf("migrate database: %w", errMigrate)
	}
	return CreateAdminUserWithConn(conn, username, password)
}

// CreateAdminUserWithConn creates a super admin account.
func CreateAdminUserWithConn(conn *gorm.DB, username, password string) error {
	if conn == nil {
		return fmt.Errorf("open database: nil connection")
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("admin username is required")
	}
	if len(password) < minBootstrapPasswordLength {
		return fmt.Errorf("admin password must be at least %d characters", minBootstrapPasswordLength)
	}

	hashedPassword, errHash := security.HashPassword(password)
	if errHash != nil {
		return fmt.Errorf("hash password: %w", errHash)
	}

	now := time.Now().UTC()
	admin := models.Admin{
		Username:     username,
		Password:     hashedPassword,
		Active:       true,
		IsSuperAdmin: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if errCreate := conn.Create(&admin).Error; errCreate != nil {
		if db.IsUniqueViolation(errCreate) {
			return ErrAdminExists
		}
		return fmt.Errorf("create admin: %w", errCreate)
	}
	return nil
}

// HasAdminInitialized reports whether at least one admin account exists.
// An unmigrated database has none.
func HasAdminInitialized(conn *gorm.DB) (bool, error) {
	if conn == nil {
		return false, fmt.Errorf("nil db")
	}
	if !conn.Migrator().HasTable(&models.Admin{}) {
		return false, nil
	}
	var admin models.Admin
	errFind := conn.Select("id").Take(&admin).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if errFind != nil {
		return false, errFind
	}
	return true, nil
}

// EnsureBootstrapAdmin creates the configured super admin when no admin exists.
// It reports whether an account was created.
func EnsureBootstrapAdmin(conn *gorm.DB, cfg config.AdminBootstrapConfig) (bool, error) {
	initialized, errInit := HasAdminInitialized(conn)
	if errInit != nil {
		return false, fmt.Errorf("check admin status: %w", errInit)
	}
	if initialized {
		return false, nil
	}
	if strings.TrimSpace(cfg.Username) == "" || cfg.Password == "" {
		log.Warn("no admin account exists; set ADMIN_USERNAME and ADMIN_PASSWORD to create one")
		return false, nil
	}
	if errCreate := CreateAdminUserWithConn(conn, cfg.Username, cfg.Password); errCreate != nil {
		if errors.Is(errCreate, ErrAdminExists) {
			return false, nil
		}
		return false, errCreate
	}
	log.WithField("username", strings.TrimSpace(cfg.Username)).Info("bootstrap super admin created")
	return true, nil
}
