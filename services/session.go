package services

import (
	"net/http"

	"github.com/gorilla/sessions"

	"fetcharr/config"
)

var store *sessions.CookieStore

const sessionName = "fetcharr-session"

func InitSessionStore(cfg *config.Config) {
	store = sessions.NewCookieStore([]byte(cfg.SessionSecret))

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.Environment == "production",
		SameSite: http.SameSiteLaxMode,
	}
}

func GetSession(r *http.Request) (*sessions.Session, error) {
	return store.Get(r, sessionName)
}

func SaveSession(w http.ResponseWriter, r *http.Request, session *sessions.Session) error {
	return session.Save(r, w)
}
