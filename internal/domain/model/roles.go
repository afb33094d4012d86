package model

import "fmt"

// Role имя роли, которое принимает HTTP API обновления роли
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// ParseRole проверяет имя роли
func ParseRole(name string) (Role, error) {
	switch r := Role(name); r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, name)
}

// Flags раскладывает роль на флаги is_admin / is_superadmin
func (r Role) Flags() (isAdmin, isSuperAdmin bool) {
	switch r {
	case RoleSuperAdmin:
		return true, true
	case RoleAdmin:
		return true, false
	}
	return false, false
}
