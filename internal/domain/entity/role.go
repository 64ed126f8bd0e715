package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SuperuserLevel is the role level treated as the superuser tier; only roles
// at or above it may touch system roles.
const SuperuserLevel = 100

// Role is a named, leveled bundle of permissions. Higher Level means more
// authority. Wildcard expansion is handled by service.PermissionService, not
// here; HasPermission is exact membership.
type Role struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Description string

	IsSystem  bool
	IsDefault bool

	Level    int
	ParentID *uuid.UUID

	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy *uuid.UUID

	permissions []string
}

// NewRole creates an active role. The slug is derived from the name when empty.
func NewRole(name, description string, level int, permissions []string, createdBy *uuid.UUID) *Role {
	now := time.Now().UTC()
	return &Role{
		ID:          uuid.New(),
		Name:        name,
		Slug:        Slugify(name),
		Description: description,
		Level:       level,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   createdBy,
		permissions: append([]string(nil), permissions...),
	}
}

// Slugify lowercases a name and replaces spaces with underscores.
func Slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

func (r *Role) touch() { r.UpdatedAt = time.Now().UTC() }

func (r *Role) AddPermission(permission string) {
	if r.HasPermission(permission) {
		return
	}
	r.permissions = append(r.permissions, permission)
	r.touch()
}

func (r *Role) RemovePermission(permission string) {
	for i, p := range r.permissions {
		if p == permission {
			r.permissions = append(r.permissions[:i], r.permissions[i+1:]...)
			r.touch()
			return
		}
	}
}

func (r *Role) SetPermissions(permissions []string) {
	r.permissions = append([]string(nil), permissions...)
	r.touch()
}

// HasPermission is exact membership; no wildcard logic here.
func (r *Role) HasPermission(permission string) bool {
	for _, p := range r.permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// Permissions returns a copy of the role's permission strings.
func (r *Role) Permissions() []string {
	return append([]string(nil), r.permissions...)
}

func (r *Role) PermissionCount() int { return len(r.permissions) }

func (r *Role) Activate() {
	r.IsActive = true
	r.touch()
}

func (r *Role) Deactivate() {
	r.IsActive = false
	r.touch()
}

// CanGrantTo reports whether this role outranks the other strictly; equals
// cannot grant to equals.
func (r *Role) CanGrantTo(other *Role) bool {
	return r.Level > other.Level
}
