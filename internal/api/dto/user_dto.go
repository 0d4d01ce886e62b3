package dto

import (
	"time"

	"github.com/spec-kit/vacation-manager/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AssignRolesRequest payload for role assignment.
type AssignRolesRequest struct {
	Roles []domain.Role `json:"roles"`
}

// AssignTeamRequest payload for team membership assignment.
type AssignTeamRequest struct {
	TeamID *int64 `json:"team_id"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the wire shape of a user account.
type UserResponse struct {
	ID        string         `json:"id"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Email     string         `json:"email"`
	Roles     domain.RoleSet `json:"roles"`
	TeamID    *int64         `json:"team_id,omitempty"`
}

// FromUser maps a user record to its response shape.
func FromUser(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Roles:     user.Roles,
		TeamID:    user.TeamID,
	}
}
