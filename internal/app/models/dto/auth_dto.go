package dto

import "github.com/studycrew/web/internal/app/models"

// LoginRequest is the body sent to the backend's POST /login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body sent to the backend's POST /register
type RegisterRequest struct {
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Password     string      `json:"password"`
	Role         models.Role `json:"role"`
	AcademicYear int         `json:"academic_year"`
}

// AuthResponse is the backend's reply to /login and /register.
// Exactly one of User or Error is expected to be set.
type AuthResponse struct {
	User  *models.Identity `json:"user,omitempty"`
	Error string           `json:"error,omitempty"`
}

// LoginForm is the sign-in modal's form submission
type LoginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=6"`
	Intent   string `form:"intent"`
	ReturnTo string `form:"return_to"`
}

// RegisterForm is the sign-up modal's form submission
type RegisterForm struct {
	Name         string `form:"name" binding:"required,min=2,max=100"`
	Email        string `form:"email" binding:"required,email"`
	Password     string `form:"password" binding:"required,min=6"`
	Confirm      string `form:"confirm" binding:"required,eqfield=Password"`
	Role         string `form:"role" binding:"required,oneof=user assistant"`
	AcademicYear int    `form:"academic_year" binding:"required,min=1,max=4"`
	Intent       string `form:"intent"`
	ReturnTo     string `form:"return_to"`
}

// ToRequest converts the form into the backend payload
func (f RegisterForm) ToRequest() RegisterRequest {
	return RegisterRequest{
		Name:         f.Name,
		Email:        f.Email,
		Password:     f.Password,
		Role:         models.Role(f.Role),
		AcademicYear: f.AcademicYear,
	}
}
