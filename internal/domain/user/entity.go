package user

import "time"

type Role string

const (
	RoleSuperAdmin Role = "super_admin" // Full access including admin management
	RoleAdmin      Role = "admin"       // Manages users and their attendances
	RoleUser       Role = "user"        // Checks in and out with face verification
)

// Kind selects which accounts a user-management call operates on.
type Kind string

const (
	KindUser  Kind = "user"
	KindAdmin Kind = "admin"
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}

// Kind maps the role onto the management surface that owns it.
func (r Role) Kind() Kind {
	if r == RoleSuperAdmin || r == RoleAdmin {
		return KindAdmin
	}
	return KindUser
}

// Roles returns the roles managed under k.
func (k Kind) Roles() []Role {
	if k == KindAdmin {
		return []Role{RoleSuperAdmin, RoleAdmin}
	}
	return []Role{RoleUser}
}

// IsAdmin checks if user manages other accounts
func (u *User) IsAdmin() bool {
	return u.Role.Kind() == KindAdmin
}

// Actor is the authenticated caller of a request.
type Actor struct {
	UserID string
	Email  string
	Role   Role
}
