// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email trims surrounding whitespace. Case is preserved: member emails are
// unique exactly as stored.
func Email(s string) string {
	return strings.TrimSpace(s)
}

// Name trims surrounding whitespace and collapses inner runs of spaces.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Role lowercases and trims a role name.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// FormID lowercases and trims a public form token taken from a URL.
func FormID(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
