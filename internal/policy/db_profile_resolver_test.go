package policy

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/clinicdesk/crm/gate"
	"github.com/clinicdesk/crm/internal/models"
)

func setupPolicyDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Profile{}, &models.Permission{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestResolveProfileWithWildcard(t *testing.T) {
	db := setupPolicyDB(t)

	perm := models.Permission{ResourceType: "patient", Action: "*"}
	db.Create(&perm)
	profile := models.Profile{Name: "practitioner", Permissions: []models.Permission{perm}}
	db.Create(&profile)
	db.Create(&models.User{Email: "doc@example.com", Password: "x", ProfileID: &profile.ID})

	resolver := NewDBProfileResolver(db)
	resolved, err := resolver.Resolve(context.Background(), 1)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved == nil {
		t.Fatal("expected a profile")
	}
	if resolved.Name() != "practitioner" {
		t.Errorf("name: got %s", resolved.Name())
	}
	// patient:* covers every patient action but nothing else.
	if !resolved.HasPermission(gate.NewPermission("patient", gate.ActionDelete)) {
		t.Error("patient:* should cover patient:delete")
	}
	if resolved.HasPermission(gate.NewPermission("deal", gate.ActionView)) {
		t.Error("patient:* must not cover deal:view")
	}
}

func TestResolveUserWithoutProfile(t *testing.T) {
	db := setupPolicyDB(t)
	db.Create(&models.User{Email: "new@example.com", Password: "x"})

	resolver := NewDBProfileResolver(db)
	resolved, err := resolver.Resolve(context.Background(), 1)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved != nil {
		t.Errorf("expected nil profile, got %v", resolved)
	}
}
