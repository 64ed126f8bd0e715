package valueobject

import (
	"fmt"
	"strings"
	"unicode"
)

// Password strength policy. Special characters are recommended but not
// mandatory; flip RequireSpecial in PasswordPolicy to enforce them.
const (
	PasswordMinLength = 8
)

// PasswordPolicy captures which character classes a plaintext password must
// contain. DefaultPasswordPolicy mirrors the platform default.
type PasswordPolicy struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireDigit     bool
	RequireSpecial   bool
}

func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:        PasswordMinLength,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireDigit:     true,
		RequireSpecial:   false,
	}
}

// Password holds a credential hash. It never stores plaintext; plaintext only
// passes through the strength helpers and the infrastructure hasher.
type Password struct {
	hash string
}

// PasswordFromHash wraps an existing hash produced by the password hasher.
func PasswordFromHash(hash string) (Password, error) {
	if hash == "" {
		return Password{}, &ValidationError{Field: "password", Message: "password hash cannot be empty"}
	}
	return Password{hash: hash}, nil
}

// Hash returns the stored hash for persistence and verification.
func (p Password) Hash() string { return p.hash }

// String redacts; the hash must never leak through logs or serialization.
func (p Password) String() string { return "***REDACTED***" }

func (p Password) Equals(other Password) bool { return p.hash == other.hash }

const specialChars = `!@#$%^&*(),.?":{}|<>`

func classify(plain string) (upper, lower, digit, special bool) {
	for _, r := range plain {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}
	return
}

// ValidateStrength checks a plaintext password against the default policy and
// returns every violated rule. An empty slice means the password is acceptable.
func ValidateStrength(plain string) []string {
	return DefaultPasswordPolicy().Validate(plain)
}

// Validate returns the rule violations for a plaintext password under this policy.
func (pp PasswordPolicy) Validate(plain string) []string {
	var errs []string
	if plain == "" {
		return []string{"password cannot be empty"}
	}
	if len(plain) < pp.MinLength {
		errs = append(errs, fmt.Sprintf("password must be at least %d characters", pp.MinLength))
	}
	upper, lower, digit, special := classify(plain)
	if pp.RequireUppercase && !upper {
		errs = append(errs, "password must contain at least one uppercase letter")
	}
	if pp.RequireLowercase && !lower {
		errs = append(errs, "password must contain at least one lowercase letter")
	}
	if pp.RequireDigit && !digit {
		errs = append(errs, "password must contain at least one digit")
	}
	if pp.RequireSpecial && !special {
		errs = append(errs, "password must contain at least one special character")
	}
	return errs
}

// IsStrong reports whether the plaintext satisfies the default policy.
func IsStrong(plain string) bool { return len(ValidateStrength(plain)) == 0 }

// Strength scores a plaintext password 0-100: up to 30 points for length
// (2 per character), 10 per satisfied character class, and 15 each for
// reaching 12 and 16 characters. Deterministic by construction.
func Strength(plain string) int {
	if plain == "" {
		return 0
	}
	score := len(plain) * 2
	if score > 30 {
		score = 30
	}
	upper, lower, digit, special := classify(plain)
	for _, ok := range []bool{upper, lower, digit, special} {
		if ok {
			score += 10
		}
	}
	if len(plain) >= 12 {
		score += 15
	}
	if len(plain) >= 16 {
		score += 15
	}
	if score > 100 {
		score = 100
	}
	return score
}
