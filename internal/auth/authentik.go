package auth

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/Billy-Davies-2/auction-draft/internal/logger"
)

type AuthentikConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AppSlug      string
	Scopes       []string
}

// AuthentikAuth signs users in with the authorization code flow.
type AuthentikAuth struct {
	config       *AuthentikConfig
	oauth2Config *oauth2.Config
	sessions     *sessionStore
	httpClient   *http.Client
}

func NewAuthentikAuth(config *AuthentikConfig) *AuthentikAuth {
	if len(config.Scopes) == 0 {
		config.Scopes = []string{"openid", "profile", "email"}
	}
	if config.AppSlug == "" {
		config.AppSlug = "auction-draft"
	}
	return &AuthentikAuth{
		config: config,
		oauth2Config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       config.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  config.BaseURL + "/application/o/authorize/",
				TokenURL: config.BaseURL + "/application/o/token/",
			},
		},
		sessions:   newSessionStore(),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *AuthentikAuth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	state := randomToken()
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300,
	})
	http.Redirect(w, r, a.oauth2Config.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func (a *AuthentikAuth) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || r.URL.Query().Get("state") != stateCookie.Value {
		deny(w, http.StatusBadRequest, "invalid OAuth state")
		return
	}

	token, err := a.oauth2Config.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		logger.Warn("OAuth code exchange failed", "error", err)
		deny(w, http.StatusBadGateway, "token exchange failed")
		return
	}
	user, err := a.userInfo(r, token)
	if err != nil {
		logger.Warn("Failed to fetch user info", "error", err)
		deny(w, http.StatusBadGateway, "user info lookup failed")
		return
	}

	sess := &Session{
		ID:        randomToken(),
		User:      user,
		Token:     token,
		CreatedAt: time.Now(),
		ExpiresAt: token.Expiry,
	}
	if sess.ExpiresAt.IsZero() {
		sess.ExpiresAt = time.Now().Add(12 * time.Hour)
	}
	a.sessions.put(sess)
	setSessionCookie(w, sess, true)
	clearCookie(w, "oauth_state")

	logger.Info("User signed in", "user", user.Username, "commissioner", user.IsCommissioner())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *AuthentikAuth) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		a.sessions.drop(c.Value)
	}
	clearCookie(w, sessionCookie)
	http.Redirect(w, r, fmt.Sprintf("%s/application/o/%s/end-session/", a.config.BaseURL, a.config.AppSlug), http.StatusSeeOther)
}

func (a *AuthentikAuth) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return guard(a.sessions, next)
}

func (a *AuthentikAuth) userInfo(r *http.Request, token *oauth2.Token) (*User, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, a.config.BaseURL+"/application/o/userinfo/", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("userinfo: %s - %s", resp.Status, string(body))
	}

	var info struct {
		Sub               string   `json:"sub"`
		Email             string   `json:"email"`
		Name              string   `json:"name"`
		PreferredUsername string   `json:"preferred_username"`
		Groups            []string `json:"groups"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &User{
		ID:       info.Sub,
		Email:    info.Email,
		Name:     info.Name,
		Username: info.PreferredUsername,
		Groups:   info.Groups,
	}, nil
}
