package converter

import (
	"clinic-appointment-backend/internal/delivery/dto"
	"clinic-appointment-backend/internal/domain/entity"
)

// EmployeeToResponse converts an Employee entity to its response DTO
func EmployeeToResponse(employee *entity.Employee) *dto.EmployeeResponse {
	if employee == nil {
		return nil
	}

	return &dto.EmployeeResponse{
		ID:           employee.ID,
		EmployeeCode: employee.EmployeeCode,
		FullName:     employee.FullName,
		Email:        employee.Email,
		Department:   employee.Department,
		CreatedAt:    employee.CreatedAt,
		UpdatedAt:    employee.UpdatedAt,
	}
}

// EmployeeToCurrentUser converts an Employee entity to the /auth/me payload
func EmployeeToCurrentUser(employee *entity.Employee) *dto.CurrentUserResponse {
	if employee == nil {
		return nil
	}

	return &dto.CurrentUserResponse{
		ID:       employee.ID,
		Role:     entity.RoleEmployee,
		Code:     employee.EmployeeCode,
		FullName: employee.FullName,
		Email:    employee.Email,
	}
}
