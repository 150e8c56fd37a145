package doctor

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicsync/clinicsync/internal/domain"
)

type Specialty struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"column:name;type:varchar(100);uniqueIndex;not null"`
	Description string    `gorm:"column:description;type:varchar(500)"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
}

func (Specialty) TableName() string {
	return "clinical.specialties"
}

type Doctor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	SpecialtyID uuid.UUID `gorm:"column:specialty_id;type:uuid;not null;index"`

	LicenseNumber     string  `gorm:"column:license_number;type:varchar(50);not null"`
	YearsOfExperience int     `gorm:"column:years_of_experience;not null;default:0"`
	ConsultationFee   float64 `gorm:"column:consultation_fee;type:numeric(18,2);not null;default:0"`
	Bio               string  `gorm:"column:bio;type:varchar(1000)"`
	IsApproved        bool    `gorm:"column:is_approved;not null;default:false"`

	User      *domain.User `gorm:"foreignKey:UserID"`
	Specialty *Specialty   `gorm:"foreignKey:SpecialtyID"`
}

func (Doctor) TableName() string {
	return "clinical.doctors"
}

type SearchQuery struct {
	Name        string
	SpecialtyID *uuid.UUID
	SortBy      string // name | experience | fee
	SortDesc    bool
	Page        int
	PageSize    int
}

type Paged struct {
	Doctors    []*Doctor
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}
