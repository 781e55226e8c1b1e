package auth

import (
	"net/http"
	"time"
)

// MockAuth is the development provider. Login creates a commissioner
// session without any identity provider.
type MockAuth struct {
	sessions *sessionStore
}

func NewMockAuth() *MockAuth {
	return &MockAuth{sessions: newSessionStore()}
}

// DevUser is the identity every mock session carries.
var DevUser = User{
	ID:       "dev-commissioner",
	Email:    "commissioner@auction.local",
	Name:     "Dev Commissioner",
	Username: "commish",
	Groups:   []string{CommissionerGroup},
}

// NewSession creates a session directly. Tests use it to skip the login
// redirect.
func (m *MockAuth) NewSession(u User) *Session {
	sess := &Session{
		ID:        randomToken(),
		User:      &u,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	m.sessions.put(sess)
	return sess
}

func (m *MockAuth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	sess := m.NewSession(DevUser)
	setSessionCookie(w, sess, false)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (m *MockAuth) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (m *MockAuth) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		m.sessions.drop(c.Value)
	}
	clearCookie(w, sessionCookie)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (m *MockAuth) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return guard(m.sessions, next)
}

// SessionCookie is the cookie a client presents for sess.
func SessionCookie(sess *Session) *http.Cookie {
	return &http.Cookie{Name: sessionCookie, Value: sess.ID}
}
