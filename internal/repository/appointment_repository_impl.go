package repository

import (
	"errors"
	"time"

	"clinic-appointment-backend/internal/domain/entity"
	domainRepo "clinic-appointment-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Create(appointment).Error
}

func (r *appointmentRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindByEmployeeAndPatient(db *gorm.DB, employeeCode, patientName string) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.
		Where("employee_code = ?", employeeCode).
		Where("LOWER(patient_name) = LOWER(?)", patientName).
		Order("appointment_date ASC, appointment_time ASC, token_number ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByDoctorCode(db *gorm.DB, doctorCode string) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.
		Where("doctor_code = ?", doctorCode).
		Order("appointment_date ASC, appointment_time ASC, token_number ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByDoctorAndDay(db *gorm.DB, doctorCode string, dayStart, dayEnd time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.
		Where("doctor_code = ?", doctorCode).
		Where("appointment_date >= ? AND appointment_date < ?", dayStart, dayEnd).
		Order("token_number ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// MaxTokenNumber returns the highest token issued for the doctor within the
// [dayStart, dayEnd) window, or 0 when the bucket is empty.
func (r *appointmentRepository) MaxTokenNumber(db *gorm.DB, doctorCode string, dayStart, dayEnd time.Time) (int, error) {
	var max int
	err := db.Model(&entity.Appointment{}).
		Select("COALESCE(MAX(token_number), 0)").
		Where("doctor_code = ?", doctorCode).
		Where("appointment_date >= ? AND appointment_date < ?", dayStart, dayEnd).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max, nil
}

func (r *appointmentRepository) FindTokenBuckets(db *gorm.DB, from time.Time) ([]domainRepo.TokenBucket, error) {
	var buckets []domainRepo.TokenBucket
	err := db.Model(&entity.Appointment{}).
		Select("doctor_code, appointment_date, MAX(token_number) as max_token_number").
		Where("appointment_date >= ?", from).
		Group("doctor_code, appointment_date").
		Order("doctor_code, appointment_date").
		Scan(&buckets).Error
	if err != nil {
		return nil, err
	}
	return buckets, nil
}

// UpdateFields applies a column-restricted update. Callers pass only the
// mutable columns (status, medical_report); everything else is write-once.
func (r *appointmentRepository) UpdateFields(db *gorm.DB, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ?", id).
		Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) DeleteByID(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.Appointment{})
	return result.RowsAffected, result.Error
}
