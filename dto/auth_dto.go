package dto

import "github.com/terragrow/storefront/models"

type SignupDTO struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginDTO struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordDTO: the email format is checked by the service so the
// error body matches the other validation failures of this endpoint.
type ForgotPasswordDTO struct {
	Email string `json:"email"`
}

type ResetPasswordDTO struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmpassword"`
}

type VerifyEmailDTO struct {
	Token string `json:"token"`
}

type ChangeMyPasswordDTO struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

type UpdateProfileDTO struct {
	Name  *string       `json:"name" binding:"omitempty,max=100"`
	Farms []models.Farm `json:"farms"`
}

type CreateUserDTO struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,role"`
}

type UpdateRoleDTO struct {
	Role string `json:"role" binding:"required,role"`
}

type SetActiveDTO struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

type AchievementDTO struct {
	Title       string `json:"title" binding:"required,max=120"`
	Description string `json:"description" binding:"max=1000"`
}
