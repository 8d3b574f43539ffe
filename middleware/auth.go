package middleware

import (
	"net/http"

	"fetcharr/services"
)

// RequireAuth gates the API behind the shared-password session.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := services.GetSession(r)
		if err != nil {
			unauthorized(w)
			return
		}
		if authed, ok := session.Values["authenticated"].(bool); !ok || !authed {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"authentication required"}`))
}
