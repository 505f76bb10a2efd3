// Package db handles database migrations and seed data.
package db

import (
	"github.com/clinicdesk/crm/internal/models"
	"gorm.io/gorm"
)

// Migrate applies GORM auto-migrations for all application models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Permission{},
		&models.Patient{},
		&models.Deal{},
		&models.Task{},
		&models.Note{},
		&models.Message{},
		&models.Service{},
		&models.ServiceGroup{},
		&models.ServiceGroupLink{},
		&models.Consultation{},
		&models.ConsultationItem{},
		&models.ConsultationInstallment{},
	)
}
