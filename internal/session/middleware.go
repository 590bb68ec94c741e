package session

import "net/http"

// Require redirects (307) to redirectTo unless the request carries a session.
func (m *Manager) Require(redirectTo string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := m.Read(r)
			if err != nil {
				http.Redirect(w, r, redirectTo, http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}
