// Package domain contains core types for the identity service.
package domain

import (
	"errors"
	"strings"
	"time"
)

// Role is the closed set of account roles. Handlers branch on the parsed
// type, never on raw request strings.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleStaff  Role = "staff"
	RoleParent Role = "parent"
)

// ParseRole validates a raw role string against the closed set.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleStaff:
		return RoleStaff, nil
	case RoleParent:
		return RoleParent, nil
	default:
		return "", ErrInvalidRole
	}
}

// IsStaff reports whether the role carries school-side privileges.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleStaff
}

func (r Role) String() string { return string(r) }

// User mirrors the identity provider's account record in the record store
// under user:<id>.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Principal is the authenticated caller attached to each request.
type Principal struct {
	UserID string
	Name   string
	Email  string
	Role   Role
}

var (
	ErrInvalidRole        = errors.New("invalid_role")
	ErrMissingFields      = errors.New("missing_fields")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrProfileNotFound    = errors.New("user profile not found")
)
