package dto

import "github.com/taskmanager/taskmanager-api/internal/models"

// UserDTO is the public profile of a user
type UserDTO struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	SessionToken string `json:"session_token"`
}

// MessageResponse carries a human-readable outcome
type MessageResponse struct {
	Message string `json:"message"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

// ToLoginResponse pairs a user with its session credential
func ToLoginResponse(user models.User, sessionToken string) LoginResponse {
	return LoginResponse{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		SessionToken: sessionToken,
	}
}
