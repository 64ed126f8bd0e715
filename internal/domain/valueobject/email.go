package valueobject

import (
	"fmt"
	"regexp"
	"strings"
)

// emailPattern is a simplified RFC 5322 check; anything stricter belongs to
// an upstream verification flow, not the value object.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Email is an immutable, normalized (lowercased, trimmed) email address.
// The zero value is invalid; construct via NewEmail.
type Email struct {
	value string
}

// NewEmail validates and normalizes a raw address.
func NewEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return Email{}, &ValidationError{Field: "email", Message: "email cannot be empty"}
	}
	if !emailPattern.MatchString(normalized) {
		return Email{}, &ValidationError{Field: "email", Message: fmt.Sprintf("invalid email format: %s", raw)}
	}
	return Email{value: normalized}, nil
}

// IsValidEmail reports whether a raw string would pass NewEmail.
func IsValidEmail(raw string) bool {
	_, err := NewEmail(raw)
	return err == nil
}

func (e Email) String() string { return e.value }

// IsZero reports whether the email was never constructed.
func (e Email) IsZero() bool { return e.value == "" }

// Domain returns the part after the '@'.
func (e Email) Domain() string {
	if i := strings.LastIndex(e.value, "@"); i >= 0 {
		return e.value[i+1:]
	}
	return ""
}

// LocalPart returns the part before the '@'.
func (e Email) LocalPart() string {
	if i := strings.LastIndex(e.value, "@"); i >= 0 {
		return e.value[:i]
	}
	return ""
}
