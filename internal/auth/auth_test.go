package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protected() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := UserFrom(r.Context())
		if u == nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(u.Username))
	}
}

func TestMockMiddlewareRequiresSession(t *testing.T) {
	m := NewMockAuth()
	h := m.Middleware(protected())

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/draft/pick", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "/auth/login")
}

func TestMockLoginGrantsCommissioner(t *testing.T) {
	m := NewMockAuth()
	rec := httptest.NewRecorder()
	m.LoginHandler(rec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodPost, "/api/draft/pick", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	m.Middleware(protected())(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "commish", rec.Body.String())
}

func TestNonCommissionerIsForbidden(t *testing.T) {
	m := NewMockAuth()
	sess := m.NewSession(User{Username: "owner7", Groups: []string{"owners"}})

	req := httptest.NewRequest(http.MethodDelete, "/api/draft/pick/x", nil)
	req.AddCookie(SessionCookie(sess))
	rec := httptest.NewRecorder()
	m.Middleware(protected())(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestExpiredSessionIsDropped(t *testing.T) {
	m := NewMockAuth()
	sess := m.NewSession(DevUser)
	sess.ExpiresAt = time.Now().Add(-time.Minute)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(SessionCookie(sess))
	rec := httptest.NewRecorder()
	m.Middleware(protected())(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, m.sessions.fromRequest(req))
}

func TestLogoutDropsSession(t *testing.T) {
	m := NewMockAuth()
	sess := m.NewSession(DevUser)
	req := httptest.NewRequest(http.MethodGet, "/auth/logout", nil)
	req.AddCookie(SessionCookie(sess))
	m.LogoutHandler(httptest.NewRecorder(), req)
	assert.Nil(t, m.sessions.fromRequest(req))
}

func TestAuthentikLoginRedirect(t *testing.T) {
	a := NewAuthentikAuth(&AuthentikConfig{
		BaseURL:     "https://id.example.com",
		ClientID:    "auction",
		RedirectURL: "https://draft.example.com/auth/callback",
	})
	rec := httptest.NewRecorder()
	a.LoginHandler(rec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(loc.String(), "https://id.example.com/application/o/authorize/"))
	assert.Equal(t, "auction", loc.Query().Get("client_id"))
	assert.NotEmpty(t, loc.Query().Get("state"))
	assert.Equal(t, []string{"openid profile email"}, loc.Query()["scope"])
}

func TestAuthentikCallbackRejectsBadState(t *testing.T) {
	a := NewAuthentikAuth(&AuthentikConfig{BaseURL: "https://id.example.com"})
	req := httptest.NewRequest(http.MethodGet, "/auth/callback?state=forged&code=abc", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "real"})
	rec := httptest.NewRecorder()
	a.CallbackHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthentikCallbackCreatesSession(t *testing.T) {
	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/application/o/token/":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
		case "/application/o/userinfo/":
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"sub":"42","preferred_username":"commish","groups":["commissioners"]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer idp.Close()

	a := NewAuthentikAuth(&AuthentikConfig{BaseURL: idp.URL, ClientID: "c", ClientSecret: "s"})
	req := httptest.NewRequest(http.MethodGet, "/auth/callback?state=st&code=abc", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "st"})
	rec := httptest.NewRecorder()
	a.CallbackHandler(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			session = c
		}
	}
	require.NotNil(t, session)

	next := httptest.NewRequest(http.MethodPost, "/api/draft/start", nil)
	next.AddCookie(session)
	rec = httptest.NewRecorder()
	a.Middleware(protected())(rec, next)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "commish", rec.Body.String())
}
