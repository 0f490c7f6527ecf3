package models

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleAuthorized Role = "authorized"
	RoleViewer     Role = "viewer"
)

// ParseRole accepts the role names offered at registration.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAuthorized:
		return RoleAuthorized, nil
	case RoleViewer, "":
		return RoleViewer, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type User struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Role         Role      `json:"role" bson:"role"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
}

// CanAddHoardings reports whether the user may create listings.
func (u User) CanAddHoardings() bool {
	return u.Role == RoleAuthorized
}
