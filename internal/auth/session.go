package auth

import (
	"strconv"
	"time"
)

// Persisted session keys.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyLoggedIn     = "isAdminLoggedIn"
	KeyUserRole     = "userRole"
)

// Store is the key/value storage behind a Session. *shared.Session satisfies it.
type Store interface {
	Get(key string) string
	Set(key, value string)
	Delete(key string)
}

// State is the bootstrap state of a Session.
type State int

// Session states. Redirecting is terminal for the request.
const (
	StateUnchecked State = iota
	StateAuthenticated
	StateRedirecting
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateRedirecting:
		return "redirecting"
	}
	return "unchecked"
}

// Session is the explicit auth context for one request.
type Session struct {
	store     Store
	now       func() time.Time
	state     State
	principal Principal
	err       error
}

// NewSession wraps store.
func NewSession(store Store) *Session {
	return &Session{store: store, now: time.Now}
}

// WithClock overrides the clock used for expiry checks.
func (s *Session) WithClock(now func() time.Time) *Session {
	s.now = now
	return s
}

// Init persists freshly issued tokens. Tokens whose role cannot be read are
// refused and leave the session cleared.
func (s *Session) Init(tokens Tokens) (Principal, error) {
	role, claims, err := RoleFromToken(tokens.Access, s.now())
	if err != nil {
		s.Clear()
		s.state, s.err = StateRedirecting, err
		return Principal{}, err
	}
	s.store.Set(KeyAccessToken, tokens.Access)
	s.store.Set(KeyRefreshToken, tokens.Refresh)
	s.store.Set(KeyLoggedIn, strconv.FormatBool(true))
	s.store.Set(KeyUserRole, string(role))

	s.principal = Principal{Role: role, Username: claims.Username, AccessToken: tokens.Access}
	s.state, s.err = StateAuthenticated, nil
	return s.principal, nil
}

// Clear removes every persisted auth key.
func (s *Session) Clear() {
	for _, key := range []string{KeyAccessToken, KeyRefreshToken, KeyLoggedIn, KeyUserRole} {
		s.store.Delete(key)
	}
	s.principal = Principal{}
	s.state = StateRedirecting
	if s.err == nil {
		s.err = ErrNoSession
	}
}

// Resolve runs the bootstrap once and returns the principal or the reason
// the request must be redirected to login.
func (s *Session) Resolve() (Principal, error) {
	if s.state != StateUnchecked {
		return s.principal, s.err
	}

	token := s.store.Get(KeyAccessToken)
	loggedIn, _ := strconv.ParseBool(s.store.Get(KeyLoggedIn))
	if !loggedIn || token == "" {
		s.state, s.err = StateRedirecting, ErrNoSession
		return Principal{}, s.err
	}

	role, claims, err := RoleFromToken(token, s.now())
	if err != nil {
		s.err = err
		s.Clear()
		return Principal{}, err
	}
	if stored := s.store.Get(KeyUserRole); stored != string(role) {
		s.store.Set(KeyUserRole, string(role))
	}

	s.principal = Principal{Role: role, Username: claims.Username, AccessToken: token}
	s.state, s.err = StateAuthenticated, nil
	return s.principal, nil
}

// State reports the bootstrap state.
func (s *Session) State() State {
	return s.state
}

// RefreshToken returns the stored refresh token.
func (s *Session) RefreshToken() string {
	return s.store.Get(KeyRefreshToken)
}
