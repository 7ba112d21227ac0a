// internal/domain/session/entity.go
package session

import (
	"encoding/json"
	"strings"
)

// Role is the user's role as last reported by the backend
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps anything that is not "admin" to RoleUser
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

// UserSnapshot is the cached copy of the logged-in user. It is a display
// hint only and never an authorization decision.
type UserSnapshot struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsAdmin reports the cached role
func (u UserSnapshot) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UnmarshalJSON accepts both "id" and the backend's "_id"
func (u *UserSnapshot) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       string `json:"id"`
		MongoID  string `json:"_id"`
		Name     string `json:"name"`
		Email    string `json:"email"`
		RoleName string `json:"role"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	u.ID = raw.ID
	if u.ID == "" {
		u.ID = raw.MongoID
	}
	u.Name = raw.Name
	u.Email = raw.Email
	u.Role = ParseRole(raw.RoleName)
	return nil
}
