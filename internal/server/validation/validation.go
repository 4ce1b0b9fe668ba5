// Package validation holds the pure input checks applied to registration and
// sign-in requests before any store is touched.
//
// Input is validated, never rewritten: usernames and passwords containing
// punctuation are accepted as-is rather than silently stripped.
package validation

import "github.com/dmitrijs2005/authdir/internal/common"

const (
	minUsernameLength = 4
	minPasswordLength = 4
	// bcrypt input limit
	MaxPasswordLength = 72
)

var roles = map[string]struct{}{
	common.RoleTeamManager: {},
	common.RoleInsurance:   {},
}

// ValidRole reports whether role is one of the registrable roles.
func ValidRole(role string) bool {
	_, ok := roles[role]
	return ok
}

// ValidUsername reports whether name is longer than three bytes.
func ValidUsername(name string) bool {
	return len(name) >= minUsernameLength
}

// ValidPassword reports whether password is between 4 and MaxPasswordLength
// bytes long.
func ValidPassword(password string) bool {
	return len(password) >= minPasswordLength && len(password) <= MaxPasswordLength
}
