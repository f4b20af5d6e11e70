package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type RegisterEmployeeRequest struct {
	EmployeeCode string `json:"employee_code" validate:"required,max=50"`
	FullName     string `json:"full_name" validate:"required,max=255"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	Department   string `json:"department" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Response DTOs

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type EmployeeResponse struct {
	ID           uuid.UUID `json:"id"`
	EmployeeCode string    `json:"employee_code"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Department   string    `json:"department,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CurrentUserResponse is the unified /auth/me payload for both roles
type CurrentUserResponse struct {
	ID       uuid.UUID `json:"id"`
	Role     string    `json:"role"`
	Code     string    `json:"code"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
}
