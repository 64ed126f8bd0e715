package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erpsuite/identity/internal/domain/valueobject"
)

// Lockout defaults; overridable per call for policy-driven deployments.
const (
	DefaultMaxLoginAttempts   = 5
	DefaultLockoutMinutes     = 30
	DefaultPasswordMaxAgeDays = 90
)

// User is the aggregate root for identity. Roles and direct permissions are
// references; effective permissions are resolved by the domain user service
// before being attached with SetPermissions, so HasPermission stays a flat
// set lookup.
//
// None of the mutating methods return errors: invalid transitions (double
// deactivate, unlocking an unlocked account) are idempotent no-ops.
type User struct {
	ID           uuid.UUID
	Email        valueobject.Email
	PasswordHash string

	FirstName string
	LastName  string
	Phone     string
	AvatarURL string

	IsActive    bool
	IsVerified  bool
	IsSuperuser bool

	FailedLoginAttempts int
	LockedUntil         *time.Time
	PasswordChangedAt   *time.Time
	LastLoginAt         *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy *uuid.UUID

	roles       []uuid.UUID
	permissions []string
}

// NewUser creates an active, unverified user from an already-hashed password.
func NewUser(email valueobject.Email, passwordHash, firstName, lastName string, createdBy *uuid.UUID) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		IsActive:     true,
		IsVerified:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
		CreatedBy:    createdBy,
	}
}

// NewSuperuser creates a verified superuser.
func NewSuperuser(email valueobject.Email, passwordHash, firstName, lastName string) *User {
	u := NewUser(email, passwordHash, firstName, lastName, nil)
	u.IsSuperuser = true
	u.IsVerified = true
	return u
}

func (u *User) touch() { u.UpdatedAt = time.Now().UTC() }

func (u *User) Activate() {
	u.IsActive = true
	u.touch()
}

func (u *User) Deactivate() {
	u.IsActive = false
	u.touch()
}

func (u *User) Verify() {
	u.IsVerified = true
	u.touch()
}

// Lock suspends login for the given number of minutes and resets the failed
// attempt counter so the next window starts clean.
func (u *User) Lock(durationMinutes int) {
	until := time.Now().UTC().Add(time.Duration(durationMinutes) * time.Minute)
	u.LockedUntil = &until
	u.FailedLoginAttempts = 0
	u.touch()
}

func (u *User) Unlock() {
	u.LockedUntil = nil
	u.FailedLoginAttempts = 0
	u.touch()
}

// RecordFailedLogin increments the failure counter and locks the account once
// maxAttempts is reached. Returns true when this call triggered the lock.
func (u *User) RecordFailedLogin(maxAttempts int) bool {
	u.FailedLoginAttempts++
	u.touch()
	if u.FailedLoginAttempts >= maxAttempts {
		u.Lock(DefaultLockoutMinutes)
		return true
	}
	return false
}

func (u *User) RecordSuccessfulLogin() {
	now := time.Now().UTC()
	u.LastLoginAt = &now
	u.FailedLoginAttempts = 0
	u.touch()
}

func (u *User) UpdatePassword(newHash string) {
	now := time.Now().UTC()
	u.PasswordHash = newHash
	u.PasswordChangedAt = &now
	u.touch()
}

// UpdateProfile applies the non-empty fields only.
func (u *User) UpdateProfile(firstName, lastName, phone string) {
	if firstName != "" {
		u.FirstName = firstName
	}
	if lastName != "" {
		u.LastName = lastName
	}
	if phone != "" {
		u.Phone = phone
	}
	u.touch()
}

func (u *User) AddRole(roleID uuid.UUID) {
	if u.HasRole(roleID) {
		return
	}
	u.roles = append(u.roles, roleID)
	u.touch()
}

func (u *User) RemoveRole(roleID uuid.UUID) {
	for i, id := range u.roles {
		if id == roleID {
			u.roles = append(u.roles[:i], u.roles[i+1:]...)
			u.touch()
			return
		}
	}
}

func (u *User) HasRole(roleID uuid.UUID) bool {
	for _, id := range u.roles {
		if id == roleID {
			return true
		}
	}
	return false
}

// SetPermissions replaces the resolved permission set.
func (u *User) SetPermissions(permissions []string) {
	u.permissions = append([]string(nil), permissions...)
	u.touch()
}

// HasPermission is a flat lookup; superusers pass unconditionally.
// Wildcard resolution happens upstream in service.PermissionService.
func (u *User) HasPermission(permission string) bool {
	if u.IsSuperuser {
		return true
	}
	for _, p := range u.permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// Roles returns a copy of the assigned role ids.
func (u *User) Roles() []uuid.UUID {
	return append([]uuid.UUID(nil), u.roles...)
}

// Permissions returns a copy of the resolved permission strings.
func (u *User) Permissions() []string {
	return append([]string(nil), u.permissions...)
}

// IsLocked derives the lock state from LockedUntil; it is never stored as a
// separate flag that could drift.
func (u *User) IsLocked() bool {
	return u.LockedUntil != nil && time.Now().UTC().Before(*u.LockedUntil)
}

// CanLogin reports whether a login attempt may proceed to credential checks.
func (u *User) CanLogin() bool {
	return u.IsActive && !u.IsLocked()
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) Initials() string {
	var b strings.Builder
	if u.FirstName != "" {
		b.WriteString(strings.ToUpper(u.FirstName[:1]))
	}
	if u.LastName != "" {
		b.WriteString(strings.ToUpper(u.LastName[:1]))
	}
	return b.String()
}
