// Package auth implements session-based authentication: password hashing,
// opaque session token issuance and validation, the request middleware that
// resolves the current user, and the /api/auth HTTP endpoints.
//
// Sessions are a single token/expiry pair stored on the users row: each
// login overwrites the previous pair, so a user holds at most one active
// session at a time.
package auth
