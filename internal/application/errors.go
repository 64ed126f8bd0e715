package application

import (
	"errors"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("Account is deactivated")
	ErrAccountLocked      = errors.New("Account is locked")
	ErrEmailNotVerified   = errors.New("Email not verified")

	ErrUserNotFound     = errors.New("user not found")
	ErrRoleNotFound     = errors.New("role not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrPermissionDenied = errors.New("permission denied")
)

// WeakPasswordError carries the individual policy violations so handlers can
// show all of them at once.
type WeakPasswordError struct {
	Problems []string
}

func (e *WeakPasswordError) Error() string {
	return "password too weak: " + strings.Join(e.Problems, "; ")
}

// loginStatusError maps a domain login-status reason to a sentinel error.
func loginStatusError(reason string) error {
	switch reason {
	case ErrAccountDeactivated.Error():
		return ErrAccountDeactivated
	case ErrAccountLocked.Error():
		return ErrAccountLocked
	case ErrEmailNotVerified.Error():
		return ErrEmailNotVerified
	default:
		return ErrInvalidCredentials
	}
}
