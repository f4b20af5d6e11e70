package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentStatus represents the lifecycle status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "Pending"
	AppointmentStatusConfirmed AppointmentStatus = "Confirmed"
	AppointmentStatusCancelled AppointmentStatus = "Cancelled"
	AppointmentStatusCompleted AppointmentStatus = "Completed"
)

// IsValid reports whether the status is one of the known lifecycle values
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCancelled, AppointmentStatusCompleted:
		return true
	}
	return false
}

// Appointment represents one booking of a patient with a doctor.
// TokenNumber is the queue position for the doctor on the appointment's
// calendar day: dense 1..N per (doctor_code, day), assigned at creation and
// never renumbered. The composite unique index is the last-line guard against
// duplicate tokens.
type Appointment struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	EmployeeCode    string            `gorm:"type:varchar(50);not null;index" json:"employee_code"`
	PatientName     string            `gorm:"type:varchar(255);not null" json:"patient_name"`
	PatientAge      int               `gorm:"" json:"patient_age,omitempty"`
	PatientGender   string            `gorm:"type:varchar(10)" json:"patient_gender,omitempty"`
	PatientRelation string            `gorm:"type:varchar(50)" json:"patient_relation,omitempty"`
	PatientPhone    string            `gorm:"type:varchar(20)" json:"patient_phone,omitempty"`
	PatientAddress  string            `gorm:"type:text" json:"patient_address,omitempty"`
	DoctorCode      string            `gorm:"type:varchar(50);not null;index;uniqueIndex:idx_doctor_day_token" json:"doctor_code"`
	AppointmentDate time.Time         `gorm:"type:date;not null;uniqueIndex:idx_doctor_day_token" json:"appointment_date"`
	AppointmentTime string            `gorm:"type:varchar(5);not null" json:"appointment_time"`
	TokenNumber     int               `gorm:"not null;uniqueIndex:idx_doctor_day_token" json:"token_number"`
	Status          AppointmentStatus `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	MedicalReport   string            `gorm:"type:text" json:"medical_report,omitempty"`
	Notes           string            `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// BeforeCreate assigns the record ID when the caller did not set one
func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// IsPending checks if the appointment is still pending
func (a *Appointment) IsPending() bool {
	return a.Status == AppointmentStatusPending
}

// IsCancelled checks if the appointment is cancelled.
// Only cancelled appointments may be deleted.
func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}

// IsCompleted checks if the appointment is completed
func (a *Appointment) IsCompleted() bool {
	return a.Status == AppointmentStatusCompleted
}
