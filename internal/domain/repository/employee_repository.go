package repository

import (
	"clinic-appointment-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmployeeRepository interface {
	Create(db *gorm.DB, employee *entity.Employee) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Employee, error)
	FindByEmail(db *gorm.DB, email string) (*entity.Employee, error)
	FindByEmployeeCode(db *gorm.DB, employeeCode string) (*entity.Employee, error)
}
