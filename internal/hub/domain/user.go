package domain

import "time"

// User roles. Viewers can read; editors and admins can write, subject to the
// per-user can_create_notes flag.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

type User struct {
	ID             string
	Email          string
	Name           string
	PasswordHash   string
	Role           string
	CanCreateNotes bool
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CanMutateNotes reports whether the user may create, update, or delete
// notes. Admins always can.
func (u *User) CanMutateNotes() bool {
	return u.Role == RoleAdmin || u.CanCreateNotes
}
