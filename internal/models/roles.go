package models

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles.
type Role string

const (
	Student Role = "student"
	Teacher Role = "teacher"
	Admin   Role = "admin"
)

// DefaultRole is assigned when registration omits a role.
const DefaultRole = Student

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case Student, Teacher, Admin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole maps free-form input to a Role. Empty input yields DefaultRole.
func ParseRole(raw string) (Role, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return DefaultRole, nil
	}
	role := Role(trimmed)
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", raw)
	}
	return role, nil
}
