package user

import (
	"context"
	"strings"
	"time"

	"accelerator/internal/common"
)

type Role string

const (
	RoleStandard          Role = "standard"
	RoleStaffAcceleration Role = "staff-acceleration"
	RoleStaffDirection    Role = "staff-direction"
	RoleAdmin             Role = "admin"
)

func NormalizeRole(value string) Role {
	return Role(strings.ToLower(strings.TrimSpace(value)))
}

func (r Role) Valid() bool {
	switch r {
	case RoleStandard, RoleStaffAcceleration, RoleStaffDirection, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsStaff reports whether the role may see other users' records.
func (r Role) IsStaff() bool {
	return r == RoleStaffAcceleration || r == RoleStaffDirection || r == RoleAdmin
}

type User struct {
	ID           common.UUID `json:"id"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	FirstName    string      `json:"first_name,omitempty"`
	LastName     string      `json:"last_name,omitempty"`
	Role         Role        `json:"role"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

type Repository interface {
	Create(ctx context.Context, u User) (*User, error)
	GetByID(ctx context.Context, id common.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	SetRole(ctx context.Context, id common.UUID, role Role) (*User, error)
}
