package validators

import "strings"

// NormalizeEmail lowercases and trims an address before uniqueness checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
