package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateAppointmentRequest struct {
	EmployeeCode    string `json:"employee_code" validate:"required"`
	PatientName     string `json:"patient_name" validate:"required"`
	PatientAge      int    `json:"patient_age" validate:"omitempty,gte=0,lte=150"`
	PatientGender   string `json:"patient_gender" validate:"omitempty,oneof=Male Female Other"`
	PatientRelation string `json:"patient_relation"`
	PatientPhone    string `json:"patient_phone"`
	PatientAddress  string `json:"patient_address"`
	DoctorCode      string `json:"doctor_code" validate:"required"`
	AppointmentDate string `json:"appointment_date" validate:"required"`
	AppointmentTime string `json:"appointment_time" validate:"required"`
	Notes           string `json:"notes"`
}

// UpdateAppointmentRequest carries the only two mutable fields. Pointers
// distinguish "absent" from "set to empty"; at least one must be present.
type UpdateAppointmentRequest struct {
	Status        *string `json:"status" validate:"omitempty,oneof=Pending Confirmed Cancelled Completed"`
	MedicalReport *string `json:"medical_report"`
}

// Response DTOs

type AppointmentResponse struct {
	ID              uuid.UUID `json:"id"`
	EmployeeCode    string    `json:"employee_code"`
	PatientName     string    `json:"patient_name"`
	PatientAge      int       `json:"patient_age,omitempty"`
	PatientGender   string    `json:"patient_gender,omitempty"`
	PatientRelation string    `json:"patient_relation,omitempty"`
	PatientPhone    string    `json:"patient_phone,omitempty"`
	PatientAddress  string    `json:"patient_address,omitempty"`
	DoctorCode      string    `json:"doctor_code"`
	AppointmentDate string    `json:"appointment_date"`
	AppointmentTime string    `json:"appointment_time"`
	TokenNumber     int       `json:"token_number"`
	Status          string    `json:"status"`
	MedicalReport   string    `json:"medical_report,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
