package entity

// SessionState describes where the session manager is in its lifecycle.
type SessionState int

const (
	// SessionHydrating is the initial state while stored credentials are
	// being read back at process start.
	SessionHydrating SessionState = iota
	SessionAuthenticated
	SessionUnauthenticated
)

func (s SessionState) String() string {
	switch s {
	case SessionHydrating:
		return "hydrating"
	case SessionAuthenticated:
		return "authenticated"
	case SessionUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Session is a point-in-time snapshot of the in-memory auth state.
// User and AccessToken are set and cleared together: after hydration
// completes, neither is ever present without the other.
type Session struct {
	State       SessionState
	User        *User
	AccessToken string
}

// Authenticated reports whether the snapshot carries a usable identity.
func (s Session) Authenticated() bool {
	return s.State == SessionAuthenticated && s.User != nil && s.AccessToken != ""
}
