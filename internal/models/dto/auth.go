package dto

import "github.com/hongminglow/faithpath-be/internal/models"

type SignupRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Username        string `json:"username"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User models.AuthenticatedUser `json:"user"`
}

type CurrentUserResponse struct {
	User *models.AuthenticatedUser `json:"user"`
}
