package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/clinicsync/clinicsync/internal/domain"
	"github.com/clinicsync/clinicsync/internal/domain/doctor"
	"github.com/clinicsync/clinicsync/internal/domain/patient"
	"github.com/clinicsync/clinicsync/internal/domain/schedule"
)

// Seed populates a development database with specialties, a demo doctor and
// patient, and a Monday-Friday 09:00-17:00 weekly schedule. It is a no-op
// when specialties already exist.
func Seed(db *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := db.Model(&doctor.Specialty{}).Count(&count).Error; err != nil {
		return fmt.Errorf("checking seed state: %w", err)
	}
	if count > 0 {
		return nil
	}

	log.Info("seeding development data")

	return db.Transaction(func(tx *gorm.DB) error {
		specialties := []*doctor.Specialty{
			{ID: uuid.New(), Name: "Cardiology", Description: "Heart and cardiovascular system", IsActive: true},
			{ID: uuid.New(), Name: "Dermatology", Description: "Skin, hair, and nails", IsActive: true},
			{ID: uuid.New(), Name: "Pediatrics", Description: "Children's health", IsActive: true},
			{ID: uuid.New(), Name: "Orthopedics", Description: "Bones and muscles", IsActive: true},
			{ID: uuid.New(), Name: "Neurology", Description: "Nervous system disorders", IsActive: true},
		}
		if err := tx.Create(&specialties).Error; err != nil {
			return fmt.Errorf("seeding specialties: %w", err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("ChangeMe123!"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing seed password: %w", err)
		}

		adminUser := &domain.User{
			ID:           uuid.New(),
			Email:        "admin@clinicsync.local",
			PasswordHash: string(hash),
			FullName:     "Clinic Administrator",
			Role:         domain.RoleAdmin,
			IsActive:     true,
		}

		docID := uuid.New()
		docUser := &domain.User{
			ID:           uuid.New(),
			Email:        "dr.house@clinicsync.local",
			PasswordHash: string(hash),
			FullName:     "Dr. Gregory House",
			Role:         domain.RoleDoctor,
			DoctorID:     &docID,
			IsActive:     true,
		}

		patID := uuid.New()
		patUser := &domain.User{
			ID:           uuid.New(),
			Email:        "jane.doe@clinicsync.local",
			PasswordHash: string(hash),
			FullName:     "Jane Doe",
			Role:         domain.RolePatient,
			PatientID:    &patID,
			IsActive:     true,
		}

		if err := tx.Create([]*domain.User{adminUser, docUser, patUser}).Error; err != nil {
			return fmt.Errorf("seeding users: %w", err)
		}

		doc := &doctor.Doctor{
			ID:                docID,
			UserID:            docUser.ID,
			SpecialtyID:       specialties[0].ID,
			LicenseNumber:     "MD-104372",
			YearsOfExperience: 15,
			ConsultationFee:   120,
			IsApproved:        true,
		}
		if err := tx.Create(doc).Error; err != nil {
			return fmt.Errorf("seeding doctor: %w", err)
		}

		pat := &patient.Patient{
			ID:          patID,
			UserID:      patUser.ID,
			PhoneNumber: "+1-555-0117",
		}
		if err := tx.Create(pat).Error; err != nil {
			return fmt.Errorf("seeding patient: %w", err)
		}

		for day := time.Monday; day <= time.Friday; day++ {
			row := &schedule.DoctorSchedule{
				DoctorID:  docID,
				DayOfWeek: day,
				StartTime: domain.NewTimeOfDay(9, 0),
				EndTime:   domain.NewTimeOfDay(17, 0),
				IsActive:  true,
			}
			if err := tx.Create(row).Error; err != nil {
				return fmt.Errorf("seeding schedule: %w", err)
			}
		}

		return nil
	})
}
