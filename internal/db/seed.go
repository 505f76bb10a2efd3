package db

import (
	"strings"

	"github.com/clinicdesk/crm/internal/models"
	"gorm.io/gorm"
)

// Seed creates the default permissions and profiles. Idempotent.
func Seed(db *gorm.DB) error {
	return SeedProfiles(db)
}

// SeedPermissions creates the core permissions for the application.
// Called during initial database setup or migration.
func SeedPermissions(db *gorm.DB) error {
	permissions := []struct {
		ResourceType string
		Action       string
		Description  string
	}{
		// Superadmin wildcard
		{"*", "*", "Full system access"},
		// Patient permissions
		{"patient", "*", "All patient actions"},
		{"patient", "list", "List patients"},
		{"patient", "view", "View patient details"},
		{"patient", "create", "Create patients"},
		{"patient", "update", "Edit patients"},
		{"patient", "delete", "Delete patients"},
		// Deal permissions
		{"deal", "*", "All deal actions"},
		{"deal", "list", "List deals"},
		{"deal", "view", "View deal details"},
		{"deal", "create", "Create deals"},
		{"deal", "update", "Edit deals"},
		{"deal", "delete", "Delete deals"},
		// Task permissions
		{"task", "*", "All task actions"},
		{"task", "list", "List tasks"},
		{"task", "view", "View task details"},
		{"task", "create", "Create tasks"},
		{"task", "update", "Edit tasks"},
		{"task", "delete", "Delete tasks"},
		// Note permissions
		{"note", "*", "All note actions"},
		{"note", "list", "List notes"},
		{"note", "view", "View notes"},
		{"note", "create", "Create notes"},
		{"note", "delete", "Delete notes"},
		// Service catalog
		{"service", "*", "All service actions"},
		{"service", "list", "List services"},
		{"service", "view", "View service details"},
		{"service", "create", "Create services"},
		{"service", "update", "Edit services"},
		{"service", "delete", "Delete services"},
		// Service groups
		{"group", "*", "All group actions"},
		{"group", "list", "List service groups"},
		{"group", "view", "View service group details"},
		{"group", "create", "Create service groups"},
		{"group", "update", "Edit service groups"},
		{"group", "delete", "Delete service groups"},
		// Consultations and invoices
		{"consultation", "*", "All consultation actions"},
		{"consultation", "list", "List consultations"},
		{"consultation", "view", "View consultation details"},
		{"consultation", "create", "Create consultations"},
		{"consultation", "update", "Edit consultations"},
		{"consultation", "delete", "Delete consultations"},
		{"consultation", "submit", "Submit invoices"},
		{"consultation", "pay", "Mark invoices paid"},
		{"consultation", "archive", "Archive consultations"},
		// Outbound messages
		{"message", "*", "All message actions"},
		{"message", "list", "List messages"},
		{"message", "send", "Send messages"},
		// Revenue summary
		{"summary", "*", "All summary actions"},
		{"summary", "view", "View revenue summary"},
		// User management
		{"user", "*", "All user management"},
		{"user", "list", "List users"},
		{"user", "view", "View user details"},
		{"user", "update", "Edit users"},
		// Profile management (admin only)
		{"profile", "*", "All profile management"},
		{"profile", "list", "List profiles"},
		{"profile", "view", "View profile details"},
		{"profile", "create", "Create profiles"},
		{"profile", "update", "Edit profiles"},
		{"profile", "delete", "Delete profiles"},
	}

	for _, p := range permissions {
		perm := models.Permission{
			ResourceType: p.ResourceType,
			Action:       p.Action,
			Description:  p.Description,
		}
		// Use FirstOrCreate to avoid duplicates
		result := db.Where("resource_type = ? AND action = ?", p.ResourceType, p.Action).
			FirstOrCreate(&perm)
		if result.Error != nil {
			return result.Error
		}
	}
	return nil
}

// SeedProfiles creates the default system profiles with their permissions.
func SeedProfiles(db *gorm.DB) error {
	// First ensure permissions exist
	if err := SeedPermissions(db); err != nil {
		return err
	}

	profiles := []struct {
		Name        string
		Description string
		IsSystem    bool
		Permissions []string // "resource:action" format
	}{
		{
			Name:        "admin",
			Description: "Full system administrator with all permissions",
			IsSystem:    true,
			Permissions: []string{"*:*"},
		},
		{
			Name:        "practitioner",
			Description: "Clinical staff: full patient and consultation access",
			IsSystem:    true,
			Permissions: []string{
				"patient:*",
				"consultation:*",
				"note:*",
				"task:*",
				"message:*",
				"service:list",
				"service:view",
				"group:list",
				"group:view",
				"summary:view",
			},
		},
		{
			Name:        "receptionist",
			Description: "Front desk: CRM pipeline, scheduling and messaging",
			IsSystem:    true,
			Permissions: []string{
				"patient:list",
				"patient:view",
				"patient:create",
				"patient:update",
				"deal:*",
				"task:*",
				"note:*",
				"message:*",
				"consultation:list",
				"consultation:view",
			},
		},
		{
			Name:        "viewer",
			Description: "Read-only access to all resources",
			IsSystem:    true,
			Permissions: []string{
				"patient:list",
				"patient:view",
				"deal:list",
				"deal:view",
				"task:list",
				"task:view",
				"note:list",
				"note:view",
				"service:list",
				"service:view",
				"group:list",
				"group:view",
				"consultation:list",
				"consultation:view",
				"message:list",
				"summary:view",
			},
		},
	}

	for _, p := range profiles {
		var profile models.Profile
		result := db.Where("name = ?", p.Name).First(&profile)
		if result.Error != nil && result.Error != gorm.ErrRecordNotFound {
			return result.Error
		}

		// If profile doesn't exist, create it
		if result.Error == gorm.ErrRecordNotFound {
			profile = models.Profile{
				Name:        p.Name,
				Description: p.Description,
				IsSystem:    p.IsSystem,
			}
			if err := db.Create(&profile).Error; err != nil {
				return err
			}
		}

		// Assign permissions
		var perms []models.Permission
		for _, code := range p.Permissions {
			resource, action, ok := strings.Cut(code, ":")
			if !ok {
				continue
			}
			var perm models.Permission
			if err := db.Where("resource_type = ? AND action = ?", resource, action).First(&perm).Error; err == nil {
				perms = append(perms, perm)
			}
		}
		if err := db.Model(&profile).Association("Permissions").Replace(perms); err != nil {
			return err
		}
	}
	return nil
}
