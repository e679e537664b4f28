// Package session holds the authentication state of the running application.
//
// The Manager owns the session and the persisted token pair. Login and Register
// never fail with an error: every failure becomes a domain.Result with
// Success=false, and the persisted tokens are cleared defensively. A failed
// profile fetch while authenticated is treated as an invalid session and forces
// a logout. Logout emits a reset event in place of a full application reload;
// hosts subscribe with OnReset and drop their derived state.
package session
