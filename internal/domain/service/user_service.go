package service

import (
	"sort"
	"time"

	"github.com/erpsuite/identity/internal/domain/valueobject"
)

// Login rejection reasons, in check order. The first failing check wins so
// error messages stay deterministic.
const (
	ReasonAccountDeactivated = "Account is deactivated"
	ReasonAccountLocked      = "Account is locked"
	ReasonEmailNotVerified   = "Email not verified"
)

// UserService holds user-related rules spanning multiple entities. Stateless;
// safe for concurrent use.
type UserService struct{}

func NewUserService() *UserService { return &UserService{} }

// CanAssignRole requires the assigner to strictly outrank the target role.
func (s *UserService) CanAssignRole(assignerLevel, targetRoleLevel int) bool {
	return assignerLevel > targetRoleLevel
}

// EffectivePermissions unions direct and role-derived permissions. A wildcard
// anywhere collapses the result to just "*"; otherwise the union is sorted
// for determinism.
func (s *UserService) EffectivePermissions(userPermissions, rolePermissions []string) []string {
	combined := make(map[string]struct{}, len(userPermissions)+len(rolePermissions))
	for _, p := range rolePermissions {
		combined[p] = struct{}{}
	}
	for _, p := range userPermissions {
		combined[p] = struct{}{}
	}
	if _, ok := combined[valueobject.Wildcard]; ok {
		return []string{valueobject.Wildcard}
	}
	out := make([]string, 0, len(combined))
	for p := range combined {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ShouldForcePasswordChange is true when the password was never changed or
// its age in days reached maxDays.
func (s *UserService) ShouldForcePasswordChange(lastChange *time.Time, maxDays int) bool {
	if lastChange == nil {
		return true
	}
	age := int(time.Since(*lastChange).Hours() / 24)
	return age >= maxDays
}

// ValidateLoginStatus gates a login attempt on account state. Checks run in
// a fixed order: deactivated, locked, unverified.
func (s *UserService) ValidateLoginStatus(isActive, isLocked, isVerified bool) (bool, string) {
	if !isActive {
		return false, ReasonAccountDeactivated
	}
	if isLocked {
		return false, ReasonAccountLocked
	}
	if !isVerified {
		return false, ReasonEmailNotVerified
	}
	return true, ""
}

// RecoveryInfo describes the lockout state for user-facing recovery UX.
type RecoveryInfo struct {
	FailedAttempts    int        `json:"failed_attempts"`
	IsLocked          bool       `json:"is_locked"`
	LockSecondsLeft   int        `json:"lock_seconds_left,omitempty"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
	WaitForLockExpiry bool       `json:"wait_for_lock_expiry"`
}

// AccountRecoveryInfo reports whether the account is currently locked and how
// long the lock has left.
func (s *UserService) AccountRecoveryInfo(failedAttempts int, lockedUntil, lastLogin *time.Time) RecoveryInfo {
	info := RecoveryInfo{
		FailedAttempts: failedAttempts,
		LastLoginAt:    lastLogin,
	}
	if lockedUntil != nil {
		if remaining := time.Until(*lockedUntil); remaining > 0 {
			info.IsLocked = true
			info.LockSecondsLeft = int(remaining.Seconds())
		}
	}
	info.WaitForLockExpiry = failedAttempts > 0 || info.IsLocked
	return info
}
