package converter

import (
	"clinic-appointment-backend/internal/delivery/dto"
	"clinic-appointment-backend/internal/domain/entity"
	"clinic-appointment-backend/pkg/dateutil"
)

// AppointmentToResponse converts an Appointment entity to its response DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:              appointment.ID,
		EmployeeCode:    appointment.EmployeeCode,
		PatientName:     appointment.PatientName,
		PatientAge:      appointment.PatientAge,
		PatientGender:   appointment.PatientGender,
		PatientRelation: appointment.PatientRelation,
		PatientPhone:    appointment.PatientPhone,
		PatientAddress:  appointment.PatientAddress,
		DoctorCode:      appointment.DoctorCode,
		AppointmentDate: dateutil.DayKey(appointment.AppointmentDate),
		AppointmentTime: appointment.AppointmentTime,
		TokenNumber:     appointment.TokenNumber,
		Status:          string(appointment.Status),
		MedicalReport:   appointment.MedicalReport,
		Notes:           appointment.Notes,
		CreatedAt:       appointment.CreatedAt,
		UpdatedAt:       appointment.UpdatedAt,
	}
}

// AppointmentsToResponses converts a slice of Appointment entities to DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i, appointment := range appointments {
		resp := AppointmentToResponse(&appointment)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
