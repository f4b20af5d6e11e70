package converter

import (
	"clinic-appointment-backend/internal/delivery/dto"
	"clinic-appointment-backend/internal/domain/entity"
)

// DoctorToResponse converts a Doctor entity to its response DTO
func DoctorToResponse(doctor *entity.Doctor) *dto.DoctorResponse {
	if doctor == nil {
		return nil
	}

	return &dto.DoctorResponse{
		ID:             doctor.ID,
		DoctorCode:     doctor.DoctorCode,
		FullName:       doctor.FullName,
		Email:          doctor.Email,
		Specialization: doctor.Specialization,
		Designation:    doctor.Designation,
		IsActive:       doctor.IsActive,
		CreatedAt:      doctor.CreatedAt,
		UpdatedAt:      doctor.UpdatedAt,
	}
}

// DoctorsToResponses converts a slice of Doctor entities to DTOs
func DoctorsToResponses(doctors []entity.Doctor) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(doctors))
	for i, doctor := range doctors {
		resp := DoctorToResponse(&doctor)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}

// DoctorToCurrentUser converts a Doctor entity to the /auth/me payload
func DoctorToCurrentUser(doctor *entity.Doctor) *dto.CurrentUserResponse {
	if doctor == nil {
		return nil
	}

	return &dto.CurrentUserResponse{
		ID:       doctor.ID,
		Role:     entity.RoleDoctor,
		Code:     doctor.DoctorCode,
		FullName: doctor.FullName,
		Email:    doctor.Email,
	}
}
