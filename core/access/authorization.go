// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

/*Package access provides utilities for access control

The functions in this repository never verify identity tokens themselves. The API
gateway's authorizer does that before a request reaches a handler. What is left
here is reading the already verified claims and deriving an access level from them.

Claims are added to a request context with

  ctx = access.ContextWithClaims(ctx, claims)

and retrieved with

  claims := access.ClaimsFromContext(ctx)

*/
package access

import (
	"context"
)

// contextKey is the type for context keys. Go linter does not like plain strings
type contextKey string

// the predefined context key
const (
	contextKeyClaims contextKey = "_claims_"
)

// AdminGroup is the group marker granting full access. The comparison is case sensitive.
const AdminGroup = "Admin"

// Claims are the attributes of an already authenticated caller, as produced by the
// external authorizer. They are never constructed from untrusted input in production.
type Claims struct {
	Subject string   `json:"sub,omitempty"`
	Email   string   `json:"email"`
	Groups  []string `json:"groups"`
}

// HasGroup returns true if the claims contain the requested group;
// otherwise it returns false.
func (c *Claims) HasGroup(group string) bool {
	if c == nil {
		return false
	}
	for _, g := range c.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// Level is the authorization tier derived from the claims. It controls the size
// and content of responses.
type Level int

const (
	// Standard is the least privileged level. It is the default.
	Standard Level = iota
	// Admin grants the full data set
	Admin
)

// String returns the role name of the level
func (l Level) String() string {
	if l == Admin {
		return "admin"
	}
	return "standard"
}

// AccessLevel returns "full" for admins and "limited" otherwise
func (l Level) AccessLevel() string {
	if l == Admin {
		return "full"
	}
	return "limited"
}

// IsAdmin returns true for the Admin level
func (l Level) IsAdmin() bool {
	return l == Admin
}

// ResolveLevel derives the access level from the claims. Absent groups resolve to
// Standard.
func ResolveLevel(c Claims) Level {
	if c.HasGroup(AdminGroup) {
		return Admin
	}
	return Standard
}

// ContextWithClaims returns a new context with the claims added to it
func ContextWithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, contextKeyClaims, c)
}

// ClaimsFromContext retrieves the claims from the context. Missing claims yield
// empty claims.
func ClaimsFromContext(ctx context.Context) Claims {
	c, ok := ctx.Value(contextKeyClaims).(Claims)
	if ok {
		return c
	}
	return Claims{}
}
