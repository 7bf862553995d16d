package dto

import (
	"time"

	"github.com/spec-kit/nikah-service/internal/domain"
)

// LoginRequest carries credentials for any account type.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse returns the bearer token and the authenticated profile.
type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      UserView        `json:"user"`
	Role      domain.UserRole `json:"role"`
}

// UserView is the public shape of an account.
type UserView struct {
	ID       int64           `json:"id"`
	FullName string          `json:"full_name"`
	Email    string          `json:"email"`
	Role     domain.UserRole `json:"role"`
}

// NewUserView maps a user row, dropping the credential hash.
func NewUserView(user *domain.User) UserView {
	return UserView{
		ID:       user.ID,
		FullName: user.FullName,
		Email:    user.Email,
		Role:     user.Role,
	}
}

// PasswordResetRequest starts the reset flow.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirm completes the reset flow.
type PasswordResetConfirm struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ChangePasswordRequest rotates a logged-in account's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
