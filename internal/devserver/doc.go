// Package devserver implements a development backend for the auth API.
//
// It serves POST /api/v1/auth/register, /login, /logout and GET /api/v1/auth/me
// from an in-memory user registry, issuing HS256 JWT access tokens and opaque
// refresh tokens. Errors are rendered as {"message", "details", "code"} so the
// client normalizer can surface them.
package devserver
