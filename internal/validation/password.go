package validation

import (
	"strings"
)

// ValidatePassword enforces NIST recommendations: minimum 12 characters,
// blocks common patterns. Upper bound is the bcrypt 72 byte limit (bcrypt
// silently truncates longer passwords).
func ValidatePassword(password string) error {
	if len(password) < 12 {
		return Fieldf("password", "password must be at least 12 characters")
	}
	if len(password) > 72 {
		return Fieldf("password", "password must not exceed 72 characters")
	}

	lower := strings.ToLower(password)
	commonPatterns := []string{
		"password", "123456", "qwerty", "admin", "letmein",
		"welcome", "monkey", "dragon", "master", "sunshine",
	}
	for _, pattern := range commonPatterns {
		if strings.Contains(lower, pattern) {
			return Fieldf("password", "password is too common, please choose a stronger one")
		}
	}

	return nil
}
