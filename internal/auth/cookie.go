package auth

import (
	"net/http"

	"github.com/freshxpress/dashboard/internal/session"
	"github.com/freshxpress/dashboard/internal/utils"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const tokenKey = "token"

// NewCookieStore returns an encrypted, authenticated cookie store. The cookie
// is HttpOnly so page scripts never see the bearer token.
func NewCookieStore(hashKey, blockKey []byte, cfg utils.SessionConfig) *sessions.CookieStore {
	store := sessions.NewCookieStore(hashKey, blockKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(cfg.MaxAge)
	return store
}

// Manager hands out request-scoped sessions backed by a gorilla session store.
type Manager struct {
	store  sessions.Store
	name   string
	logger *zap.Logger
}

// NewManager keeps the token under the session called name.
func NewManager(store sessions.Store, name string, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: store, name: name, logger: logger}
}

// Tokens returns the token store of the request.
func (m *Manager) Tokens(w http.ResponseWriter, r *http.Request) *CookieTokens {
	return &CookieTokens{m: m, w: w, r: r}
}

// Session builds the session of the request. onLogout runs after Logout.
func (m *Manager) Session(w http.ResponseWriter, r *http.Request, onLogout func()) *session.Session {
	return session.New(m.Tokens(w, r), onLogout)
}

// CookieTokens implements session.TokenStore for one HTTP exchange. Writes
// emit Set-Cookie, so they must happen before the response is written.
type CookieTokens struct {
	m *Manager
	w http.ResponseWriter
	r *http.Request
}

func (c *CookieTokens) load() *sessions.Session {
	sess, err := c.m.store.Get(c.r, c.m.name)
	if err != nil {
		// Undecodable cookies (rotated key, tampering) count as logged out.
		c.m.logger.Debug("discarding unreadable session cookie", zap.Error(err))
	}
	return sess
}

func (c *CookieTokens) Token() (string, error) {
	tok, _ := c.load().Values[tokenKey].(string)
	return tok, nil
}

func (c *CookieTokens) SetToken(token string) error {
	sess := c.load()
	sess.Values[tokenKey] = token
	sess.Options.MaxAge = c.m.maxAge()
	return sess.Save(c.r, c.w)
}

func (c *CookieTokens) Clear() error {
	sess := c.load()
	delete(sess.Values, tokenKey)
	sess.Options.MaxAge = -1
	return sess.Save(c.r, c.w)
}

func (m *Manager) maxAge() int {
	if cs, ok := m.store.(*sessions.CookieStore); ok && cs.Options != nil {
		return cs.Options.MaxAge
	}
	return 0
}
