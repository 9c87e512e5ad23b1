package models

import "strings"

type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RoleEditor UserRole = "EDITOR"
	RoleViewer UserRole = "VIEWER"
)

var userRoles = []UserRole{RoleAdmin, RoleEditor, RoleViewer}

func (r UserRole) IsValid() bool {
	for _, role := range userRoles {
		if r == role {
			return true
		}
	}
	return false
}

func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

func ParseUserRole(s string) (UserRole, bool) {
	role := UserRole(strings.ToUpper(strings.TrimSpace(s)))
	return role, role.IsValid()
}
