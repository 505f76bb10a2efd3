package db

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/clinicdesk/crm/internal/models"
)

func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func TestSeedCreatesDefaultProfiles(t *testing.T) {
	conn := setupSeedDB(t)
	if err := Seed(conn); err != nil {
		t.Fatalf("seed: %v", err)
	}

	for _, name := range []string{"admin", "practitioner", "receptionist", "viewer"} {
		var profile models.Profile
		if err := conn.Preload("Permissions").Where("name = ?", name).First(&profile).Error; err != nil {
			t.Errorf("profile %s missing: %v", name, err)
			continue
		}
		if !profile.IsSystem {
			t.Errorf("profile %s should be a system profile", name)
		}
		if len(profile.Permissions) == 0 {
			t.Errorf("profile %s has no permissions", name)
		}
	}

	// Admin carries the superadmin wildcard.
	var admin models.Profile
	conn.Preload("Permissions").Where("name = ?", "admin").First(&admin)
	found := false
	for _, p := range admin.Permissions {
		if p.ResourceType == "*" && p.Action == "*" {
			found = true
		}
	}
	if !found {
		t.Error("admin profile lacks *:* permission")
	}

	// Domain transitions are seeded as grantable permissions.
	for _, action := range []string{"submit", "pay", "archive"} {
		var count int64
		conn.Model(&models.Permission{}).
			Where("resource_type = ? AND action = ?", "consultation", action).
			Count(&count)
		if count != 1 {
			t.Errorf("consultation:%s permission missing", action)
		}
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	conn := setupSeedDB(t)
	if err := Seed(conn); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	var before int64
	conn.Model(&models.Permission{}).Count(&before)

	if err := Seed(conn); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	var after int64
	conn.Model(&models.Permission{}).Count(&after)
	if before != after {
		t.Errorf("re-seeding changed permission count: %d -> %d", before, after)
	}

	var profiles int64
	conn.Model(&models.Profile{}).Count(&profiles)
	if profiles != 4 {
		t.Errorf("expected 4 profiles, got %d", profiles)
	}
}
