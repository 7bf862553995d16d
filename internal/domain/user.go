package domain

import "time"

// UserRole separates registry staff from applicants. Roles are fixed at
// creation; there is no escalation path.
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleApplicant UserRole = "applicant"
)

// User is an account holder: either a pre-provisioned admin or an applicant
// created during form submission together with portal credentials.
type User struct {
	ID           int64
	FullName     string
	Email        string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
