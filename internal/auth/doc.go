// Package auth implements account registration, credential verification,
// bearer-token issuance, and the per-route authorization guards.
//
// Identity resolution is explicit: RequireAuth resolves the bearer token to
// a user id stored in the request context, and handlers read it through
// GetUserID. Role checks (RequireAdmin) layer on top; ownership checks
// against a stored owner id stay in the handlers because they are
// per-resource, not per-role.
package auth
