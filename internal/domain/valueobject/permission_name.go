package valueobject

import (
	"fmt"
	"regexp"
	"strings"
)

// Wildcard is the permission string matching every permission.
const Wildcard = "*"

// permissionPattern accepts resource.action, resource.* and the bare wildcard.
var permissionPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*\.([a-z][a-z0-9_]*|\*)$|^\*$`)

// PermissionName is a validated, lowercase permission string of the form
// "resource.action", "resource.*" or "*".
type PermissionName struct {
	value string
}

// NewPermissionName validates and normalizes a raw permission string.
func NewPermissionName(raw string) (PermissionName, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return PermissionName{}, &ValidationError{Field: "permission", Message: "permission name cannot be empty"}
	}
	if !permissionPattern.MatchString(normalized) {
		return PermissionName{}, &ValidationError{
			Field:   "permission",
			Message: fmt.Sprintf("invalid permission format: %s, expected resource.action (e.g. users.read)", raw),
		}
	}
	return PermissionName{value: normalized}, nil
}

// IsValidPermissionName reports whether a raw string would pass NewPermissionName.
func IsValidPermissionName(raw string) bool {
	_, err := NewPermissionName(raw)
	return err == nil
}

func (p PermissionName) String() string { return p.value }

// Resource returns the part before the dot, or "*" for the bare wildcard.
func (p PermissionName) Resource() string {
	if p.value == Wildcard {
		return Wildcard
	}
	return strings.SplitN(p.value, ".", 2)[0]
}

// Action returns the part after the dot, or "*" for the bare wildcard.
func (p PermissionName) Action() string {
	if p.value == Wildcard {
		return Wildcard
	}
	parts := strings.SplitN(p.value, ".", 2)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// IsWildcard is true only for the bare "*".
func (p PermissionName) IsWildcard() bool { return p.value == Wildcard }

// IsResourceWildcard is true for "resource.*" forms.
func (p PermissionName) IsResourceWildcard() bool { return strings.HasSuffix(p.value, ".*") }
