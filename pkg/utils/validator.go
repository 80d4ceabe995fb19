package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRegex       = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	projectCodeRegex = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,9}$`)
	controlChars     = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
)

// MaxClaimHours caps a single claim
const MaxClaimHours = 744

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// ValidateHours requires a positive number of hours within MaxClaimHours
func ValidateHours(hours float64) error {
	if hours <= 0 {
		return fmt.Errorf("hours must be positive: %.2f", hours)
	}
	if hours > MaxClaimHours {
		return fmt.Errorf("hours exceed maximum of %d: %.2f", MaxClaimHours, hours)
	}
	return nil
}

// ValidateProjectCode accepts 2-10 upper-case letters and digits, starting with a letter
func ValidateProjectCode(code string) error {
	if !projectCodeRegex.MatchString(code) {
		return fmt.Errorf("invalid project code: %q", code)
	}
	return nil
}

// SanitizeString strips control characters (newlines and tabs are kept) and surrounding space
func SanitizeString(s string) string {
	return strings.TrimSpace(controlChars.ReplaceAllString(s, ""))
}
