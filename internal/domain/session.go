package domain

// SessionState is the authentication state of the running application.
type SessionState int

const (
	// StateAnonymous holds no tokens and no user. Initial state and reset target.
	StateAnonymous SessionState = iota
	// StateAuthenticating is transient while login or registration is in flight.
	StateAuthenticating
	// StateAuthenticatedNoProfile holds tokens but the profile has not been fetched yet.
	StateAuthenticatedNoProfile
	// StateAuthenticated holds tokens and a fetched profile.
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateAnonymous:
		return "ANONYMOUS"
	case StateAuthenticating:
		return "AUTHENTICATING"
	case StateAuthenticatedNoProfile:
		return "AUTHENTICATED_NO_PROFILE"
	case StateAuthenticated:
		return "AUTHENTICATED"
	default:
		return "UNKNOWN"
	}
}

// Session is a point-in-time view of the authentication state.
type Session struct {
	IsAuthenticated bool
	User            *User
}

// Result is returned by login and registration. Callers branch on Success;
// failures are never surfaced as errors.
type Result struct {
	Success bool
	Message string
}
