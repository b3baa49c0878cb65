// Package auth provides the telecaller's login session against the CRM API.
// This file defines the public API of the auth bounded context.
// Only types defined here should be imported by other domains.
package auth

import "strings"

// RoleTelecaller is the role the console is built for.
const RoleTelecaller = "telecaller"

// User is the signed-in account as reported by the server.
type User struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// DisplayName returns the name, falling back to the email.
func (u User) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return u.Email
}

// IsTelecaller reports whether the account has the telecaller role.
func (u User) IsTelecaller() bool {
	return strings.EqualFold(u.Role, RoleTelecaller)
}
