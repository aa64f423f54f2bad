package session

import (
	"context"
	"net/http"
)

type userIDKeyType struct{}

var userIDKey = userIDKeyType{}

// WithUser reads the member id set by the external identity provider from the
// "user_id" cookie and attaches it to the request context. Member ids are
// opaque strings owned by the identity backend.
func WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("user_id")
		if err != nil || c.Value == "" {
			http.Error(w, "missing user_id", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, c.Value)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the member id placed by WithUser, or "" if absent.
func UserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}
