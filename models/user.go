package models

import (
	"time"

	"foodcourt-api/apperr"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleOutlet   UserRole = "outlet"
)

// ValidRole reports whether the role belongs to the closed set.
func ValidRole(r UserRole) bool {
	return r == RoleCustomer || r == RoleOutlet
}

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         UserRole  `json:"role" gorm:"not null;default:'customer'"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity is the resolved caller identity, constructed once at the auth
// boundary and passed by value through the core. All ownership checks trust
// this value.
type Identity struct {
	ID   uint     `json:"id"`
	Role UserRole `json:"role"`
}

// Require checks that the identity carries the given role.
func (i Identity) Require(role UserRole) error {
	if i.Role != role {
		return apperr.Forbidden("requires role '" + string(role) + "'")
	}
	return nil
}
