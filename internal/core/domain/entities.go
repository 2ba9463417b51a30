package domain

import (
	"strings"
	"time"
)

// Role represents account role in the system
type Role string

const (
	RoleUser  Role = "User"
	RoleAgent Role = "Agent"
	RoleAdmin Role = "Admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// Registrable reports whether r can be chosen at self-registration
func (r Role) Registrable() bool {
	return r == RoleUser || r == RoleAgent
}

// Status represents the approval state of an account
type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusBlocked Status = "blocked"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusBlocked:
		return true
	}
	return false
}

// User represents an MFS account in the domain layer
type User struct {
	ID           string
	Name         string
	MobileNumber string
	Email        string
	Pin          string // bcrypt hash
	Status       Status
	Role         Role
	Balance      float64
	Bonus        bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserPatch is a shallow merge patch applied by activation.
// Nil fields are left untouched.
type UserPatch struct {
	Name   *string
	Status *Status
	Role   *Role
}

// Validate checks the patch values
func (p *UserPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrInvalidInput
	}
	if p.Status != nil && !p.Status.Valid() {
		return ErrInvalidStatus
	}
	if p.Role != nil && !p.Role.Valid() {
		return ErrInvalidRole
	}
	return nil
}

// Apply merges the patch into u
func (p *UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.Status != nil {
		u.Status = *p.Status
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
}

// UserFilter narrows user listings.
// Search matches mobile number or email as a case-insensitive substring.
type UserFilter struct {
	Search string
	Status Status
	Role   Role
}

// ActivationResult is the store acknowledgement of an activation
type ActivationResult struct {
	MatchedCount  int64   `json:"matchedCount"`
	ModifiedCount int64   `json:"modifiedCount"`
	BonusCredited float64 `json:"bonusCredited"`
}

// UserStats holds account counts for the admin dashboard
type UserStats struct {
	Total   int64 `json:"total"`
	Pending int64 `json:"pending"`
	Active  int64 `json:"active"`
	Blocked int64 `json:"blocked"`
	Users   int64 `json:"users"`
	Agents  int64 `json:"agents"`
	Admins  int64 `json:"admins"`
}
