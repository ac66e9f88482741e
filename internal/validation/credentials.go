// Package validation provides input validation for user-supplied fields.
package validation

import (
	"regexp"

	"fluss/internal/models"
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// ValidateUsername checks length and the allowed character set.
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return models.NewValidationError("username", "Username must be at least 3 characters long")
	}
	if len(username) > 30 {
		return models.NewValidationError("username", "Username must not exceed 30 characters")
	}
	if !usernameRe.MatchString(username) {
		return models.NewValidationError("username", "Username can only contain letters, numbers, underscores, and hyphens")
	}
	return nil
}

// ValidatePassword checks the password length policy.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return models.NewValidationError("password", "Password must be at least 8 characters long")
	}
	if len(password) > 128 {
		return models.NewValidationError("password", "Password must not exceed 128 characters")
	}
	return nil
}

// ValidateEmail checks basic email shape and length.
func ValidateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return models.NewValidationError("email", "Invalid email format")
	}
	if len(email) > 254 {
		return models.NewValidationError("email", "Email must not exceed 254 characters")
	}
	return nil
}
