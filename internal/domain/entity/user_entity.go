package entity

import "time"

// Role is the single role a user holds.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleGuard    Role = "guard"
	RoleResident Role = "resident"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleGuard, RoleResident:
		return true
	}
	return false
}

// SelfRegisterRole maps a requested role to one a user may pick at sign-up.
// Anything other than guard or resident becomes resident.
func SelfRegisterRole(requested string) Role {
	switch Role(requested) {
	case RoleGuard:
		return RoleGuard
	default:
		return RoleResident
	}
}

// User is the aggregate root for identity.
// PasswordHash holds a bcrypt hash and never leaves the service layer.
type User struct {
	ID           int64
	FullName     string
	Email        string
	Phone        *string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActiveResident reports whether u can own visitor and parcel records.
func (u *User) IsActiveResident() bool {
	return u != nil && u.IsActive && u.Role == RoleResident
}
