package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/shekharshaurya-coder/finalWork/domain"
)

type contextKey struct{ name string }

var identityKey = contextKey{name: "identity"}

// authenticated verifies the bearer token and stores the resolved identity in
// the request context. Missing or invalid credentials short-circuit with 401.
func (s *Server) authenticated(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			s.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		identity, err := s.auth.Verify(token)
		if err != nil {
			s.writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, identity)))
	})
}

func identityFrom(ctx context.Context) domain.User {
	identity, _ := ctx.Value(identityKey).(domain.User)
	return identity
}
