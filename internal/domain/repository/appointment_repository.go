package repository

import (
	"time"

	"clinic-appointment-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenBucket is one per-doctor-per-day token counter snapshot, used to
// re-seed the sequencer from the database on startup.
type TokenBucket struct {
	DoctorCode      string
	AppointmentDate time.Time
	MaxTokenNumber  int
}

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindByEmployeeAndPatient(db *gorm.DB, employeeCode, patientName string) ([]entity.Appointment, error)
	FindByDoctorCode(db *gorm.DB, doctorCode string) ([]entity.Appointment, error)
	FindByDoctorAndDay(db *gorm.DB, doctorCode string, dayStart, dayEnd time.Time) ([]entity.Appointment, error)
	MaxTokenNumber(db *gorm.DB, doctorCode string, dayStart, dayEnd time.Time) (int, error)
	FindTokenBuckets(db *gorm.DB, from time.Time) ([]TokenBucket, error)
	UpdateFields(db *gorm.DB, id uuid.UUID, fields map[string]interface{}) (int64, error)
	DeleteByID(db *gorm.DB, id uuid.UUID) (int64, error)
}
