package patient

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicsync/clinicsync/internal/domain"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type Patient struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	UserID uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`

	DateOfBirth      *time.Time `gorm:"column:date_of_birth;type:date"`
	Gender           *Gender    `gorm:"column:gender;type:varchar(10)"`
	PhoneNumber      string     `gorm:"column:phone_number;type:varchar(20)"`
	EmergencyContact string     `gorm:"column:emergency_contact;type:varchar(100)"`

	User *domain.User `gorm:"foreignKey:UserID"`
}

func (Patient) TableName() string {
	return "clinical.patients"
}
