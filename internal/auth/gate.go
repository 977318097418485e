package auth

import (
	"context"
	"net/http"

	"github.com/freshxpress/dashboard/internal/session"
)

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/"

type sessionKey struct{}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session placed by Gate.
func FromContext(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*session.Session)
	return s, ok
}

// Gate guards protected handlers. The session is read again on every request,
// so a logout in another tab takes effect on the next navigation. Nothing of
// the protected handler runs before the decision is made.
func (m *Manager) Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.Session(w, r, func() {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		})
		if !sess.IsAuthenticated() {
			http.Redirect(w, r, LoginPath, http.StatusFound)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}
