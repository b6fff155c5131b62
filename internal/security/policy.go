package security

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinPasswordLength = 8
	specialCharacters = `!@#$%^&*(),.?":{}|<>`
)

// PasswordCheck is the result of ValidatePassword. Errors may be non-empty
// on a valid password: missing digits or uppercase letters are advisory.
type PasswordCheck struct {
	IsValid bool
	Errors  []string
}

func ValidatePassword(password string) PasswordCheck {
	check := PasswordCheck{IsValid: true}

	if utf8.RuneCountInString(password) < MinPasswordLength {
		check.IsValid = false
		check.Errors = append(check.Errors, "Password must be at least 8 characters long")
	}
	if !strings.ContainsAny(password, specialCharacters) {
		check.IsValid = false
		check.Errors = append(check.Errors, "Password must contain at least one special character")
	}
	if !strings.ContainsFunc(password, unicode.IsDigit) {
		check.Errors = append(check.Errors, "Password should contain at least one number")
	}
	if !strings.ContainsFunc(password, unicode.IsUpper) {
		check.Errors = append(check.Errors, "Password should contain at least one uppercase letter")
	}

	return check
}
