package user

import (
	"errors"
	"time"
)

// Role is the stored authorization level of a user. Students carry RoleNone;
// only an admin action can promote a user.
type Role string

const (
	RoleNone       Role = "none"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleNone, RoleInstructor, RoleAdmin:
		return true
	default:
		return false
	}
}

type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Image          string    `json:"image,omitempty"`
	Role           Role      `json:"role"`
	CredentialHash string    `json:"-"` // only set for the seeded admin
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("user not found")

// users are created on first sign-in and never duplicated per email
var ErrAlreadyExists = errors.New("user already exists")

type CreateUserRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required,min=1,max=120"`
	Image string `json:"image" binding:"omitempty,max=500"`
}
