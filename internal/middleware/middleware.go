// Package middleware holds HTTP middleware shared across route groups.
package middleware

// contextKey is a private type for context values set by middleware, so
// other packages cannot collide with them.
type contextKey string
