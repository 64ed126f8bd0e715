package entity

import (
	"time"

	"github.com/google/uuid"
)

// UserRole is a time-bounded assignment of a role to a user. An assignment
// with a past ExpiresAt is logically expired even while IsActive is true;
// readers must check both.
type UserRole struct {
	ID     uuid.UUID
	UserID uuid.UUID
	RoleID uuid.UUID

	AssignedBy *uuid.UUID
	AssignedAt time.Time
	ExpiresAt  *time.Time

	IsActive bool
}

// NewUserRole assigns a role to a user; expiresInDays <= 0 means no expiry.
func NewUserRole(userID, roleID uuid.UUID, assignedBy *uuid.UUID, expiresInDays int) *UserRole {
	ur := &UserRole{
		ID:         uuid.New(),
		UserID:     userID,
		RoleID:     roleID,
		AssignedBy: assignedBy,
		AssignedAt: time.Now().UTC(),
		IsActive:   true,
	}
	if expiresInDays > 0 {
		exp := time.Now().UTC().AddDate(0, 0, expiresInDays)
		ur.ExpiresAt = &exp
	}
	return ur
}

func (ur *UserRole) IsExpired() bool {
	return ur.ExpiresAt != nil && time.Now().UTC().After(*ur.ExpiresAt)
}

func (ur *UserRole) Revoke() {
	ur.IsActive = false
}

// Extend pushes the expiry forward by days, starting from now when the
// assignment had no expiry yet.
func (ur *UserRole) Extend(days int) {
	if ur.ExpiresAt == nil {
		exp := time.Now().UTC().AddDate(0, 0, days)
		ur.ExpiresAt = &exp
		return
	}
	exp := ur.ExpiresAt.AddDate(0, 0, days)
	ur.ExpiresAt = &exp
}
