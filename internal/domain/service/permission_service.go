package service

import (
	"strings"

	"github.com/erpsuite/identity/internal/domain/entity"
	"github.com/erpsuite/identity/internal/domain/valueobject"
)

// PermissionService concentrates all wildcard-aware permission matching.
// It is stateless and safe for concurrent use; every decision is returned
// as data so callers choose the user-visible outcome.
type PermissionService struct{}

func NewPermissionService() *PermissionService { return &PermissionService{} }

// CheckPermission reports whether the held permissions satisfy the required
// one: global wildcard, exact match, then resource wildcard, in that order.
func (s *PermissionService) CheckPermission(userPermissions []string, required string) bool {
	for _, p := range userPermissions {
		if p == valueobject.Wildcard || p == required {
			return true
		}
	}
	parts := strings.SplitN(required, ".", 2)
	if len(parts) == 2 {
		resourceWildcard := parts[0] + ".*"
		for _, p := range userPermissions {
			if p == resourceWildcard {
				return true
			}
		}
	}
	return false
}

// CheckPermissions combines single checks: all must pass when requireAll,
// any one suffices otherwise. An empty required list passes under requireAll
// and fails under any-of.
func (s *PermissionService) CheckPermissions(userPermissions, required []string, requireAll bool) bool {
	if requireAll {
		for _, perm := range required {
			if !s.CheckPermission(userPermissions, perm) {
				return false
			}
		}
		return true
	}
	for _, perm := range required {
		if s.CheckPermission(userPermissions, perm) {
			return true
		}
	}
	return false
}

// MissingPermissions returns the required permissions the user does not hold.
func (s *PermissionService) MissingPermissions(userPermissions, required []string) []string {
	missing := make([]string, 0)
	for _, perm := range required {
		if !s.CheckPermission(userPermissions, perm) {
			missing = append(missing, perm)
		}
	}
	return missing
}

// ExpandWildcards resolves wildcard entries against the available catalogue:
// "*" yields the whole catalogue, "resource.*" every catalogue entry under
// that resource, concrete strings pass through.
func (s *PermissionService) ExpandWildcards(permissions, available []string) map[string]struct{} {
	expanded := make(map[string]struct{})
	for _, perm := range permissions {
		switch {
		case perm == valueobject.Wildcard:
			for _, avail := range available {
				expanded[avail] = struct{}{}
			}
			return expanded
		case strings.HasSuffix(perm, ".*"):
			prefix := strings.TrimSuffix(perm, "*")
			for _, avail := range available {
				if strings.HasPrefix(avail, prefix) {
					expanded[avail] = struct{}{}
				}
			}
		default:
			expanded[perm] = struct{}{}
		}
	}
	return expanded
}

// ValidFormat reports whether a string is "*" or exactly two non-empty
// dot-separated segments. Looser than valueobject.NewPermissionName on
// purpose: stored legacy permissions are judged on shape only.
func (s *PermissionService) ValidFormat(permission string) bool {
	if permission == "" {
		return false
	}
	if permission == valueobject.Wildcard {
		return true
	}
	parts := strings.Split(permission, ".")
	return len(parts) == 2 && parts[0] != "" && parts[1] != ""
}

// RoleHierarchy classifies one level against another.
func (s *PermissionService) RoleHierarchy(level, targetLevel int) string {
	switch {
	case level > targetLevel:
		return "higher"
	case level == targetLevel:
		return "same"
	default:
		return "lower"
	}
}

// CanModifyRole gates role mutation: system roles need the superuser tier,
// everything else needs at least the target's level.
func (s *PermissionService) CanModifyRole(modifierLevel, targetLevel int, targetIsSystem bool) bool {
	if targetIsSystem && modifierLevel < entity.SuperuserLevel {
		return false
	}
	return modifierLevel >= targetLevel
}
