package app

import (
	"path/filepath"
	"testing"

	"github.com/energee/energee-site/internal/config"
	"github.com/energee/energee-site/internal/db"
	"github.com/energee/energee-site/internal/models"
	"github.com/energee/energee-site/internal/security"
	"gorm.io/gorm"
)

func openMigrated(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "energee-test.db")
	conn, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func TestHasAdminInitialized(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "energee-test.db")
	conn, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	initialized, err := HasAdminInitialized(conn)
	if err != nil {
		t.Fatalf("HasAdminInitialized: %v", err)
	}
	if initialized {
		t.Fatalf("expected initialized=false before migrate")
	}

	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	initialized, err = HasAdminInitialized(conn)
	if err != nil {
		t.Fatalf("HasAdminInitialized after migrate: %v", err)
	}
	if initialized {
		t.Fatalf("expected initialized=false with empty admins table")
	}

	if errCreate := conn.Create(&models.Admin{Username: "admin", Password: "hashed-password", Active: true}).Error; errCreate != nil {
		t.Fatalf("create admin: %v", errCreate)
	}
	initialized, err = HasAdminInitialized(conn)
	if err != nil {
		t.Fatalf("HasAdminInitialized after seed: %v", err)
	}
	if !initialized {
		t.Fatalf("expected initialized=true after admin created")
	}
}

func TestCreateAdminUserWithConn_SetsSuperAdmin(t *testing.T) {
	conn := openMigrated(t)

	if errCreate := CreateAdminUserWithConn(conn, " admin ", "password123"); errCreate != nil {
		t.Fatalf("CreateAdminUserWithConn: %v", errCreate)
	}

	var admin models.Admin
	if errFind := conn.First(&admin).Error; errFind != nil {
		t.Fatalf("find admin: %v", errFind)
	}
	if !admin.IsSuperAdmin {
		t.Fatalf("expected first admin to be super admin")
	}
	if admin.Username != "admin" {
		t.Fatalf("expected trimmed username, got %q", admin.Username)
	}
	if !security.CheckPassword(admin.Password, "password123") {
		t.Fatalf("expected stored password hash to match")
	}
}

func TestCreateAdminUserWithConn_RejectsShortPassword(t *testing.T) {
	conn := openMigrated(t)

	if errCreate := CreateAdminUserWithConn(conn, "admin", "short"); errCreate == nil {
		t.Fatalf("expected short password error")
	}
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	conn := openMigrated(t)

	created, err := EnsureBootstrapAdmin(conn, config.AdminBootstrapConfig{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created {
		t.Fatalf("expected no admin without credentials")
	}

	cfg := config.AdminBootstrapConfig{Username: "root", Password: "changeme1"}
	created, err = EnsureBootstrapAdmin(conn, cfg)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !created {
		t.Fatalf("expected admin to be created")
	}

	created, err = EnsureBootstrapAdmin(conn, cfg)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created {
		t.Fatalf("expected second call to be a no-op")
	}

	var count int64
	if errCount := conn.Model(&models.Admin{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count admins: %v", errCount)
	}
	if count != 1 {
		t.Fatalf("expected 1 admin, got %d", count)
	}
}
