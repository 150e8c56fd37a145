package repository

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinicsync/clinicsync/internal/domain/doctor"
)

type DoctorRepository struct {
	db *gorm.DB
}

func NewDoctorRepository(db *gorm.DB) *DoctorRepository {
	return &DoctorRepository{db: db}
}

func (r *DoctorRepository) GetByID(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	var d doctor.Doctor
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Specialty").
		Joins("JOIN auth.users u ON u.id = doctors.user_id").
		Where("doctors.id = ? AND doctors.is_approved AND u.is_active", id).
		First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, doctor.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DoctorRepository) Search(ctx context.Context, q *doctor.SearchQuery) (*doctor.Paged, error) {
	base := r.db.WithContext(ctx).Model(&doctor.Doctor{}).
		Joins("JOIN auth.users u ON u.id = doctors.user_id").
		Where("doctors.is_approved AND u.is_active")

	if name := strings.TrimSpace(q.Name); name != "" {
		base = base.Where("u.full_name ILIKE ?", "%"+name+"%")
	}
	if q.SpecialtyID != nil {
		base = base.Where("doctors.specialty_id = ?", *q.SpecialtyID)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	order := "u.full_name"
	switch strings.ToLower(q.SortBy) {
	case "experience":
		order = "doctors.years_of_experience"
	case "fee":
		order = "doctors.consultation_fee"
	}
	if q.SortDesc {
		order += " DESC"
	}

	var items []*doctor.Doctor
	err := base.
		Preload("User").
		Preload("Specialty").
		Order(order).
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &doctor.Paged{
		Doctors:    items,
		TotalCount: total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(q.PageSize))),
	}, nil
}

func (r *DoctorRepository) ListSpecialties(ctx context.Context) ([]*doctor.Specialty, error) {
	var out []*doctor.Specialty
	err := r.db.WithContext(ctx).
		Where("is_active").
		Order("name ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
