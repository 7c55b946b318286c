package auth

import (
	"net/http"
	"time"
)

const (
	SessionCookieName = "session"
	StateCookieName   = "oauth_state"

	stateCookieTTL = 10 * time.Minute
)

func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	setCookie(w, SessionCookieName, token, ttl, secure)
}

func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	setCookie(w, SessionCookieName, "", -1, secure)
}

// SetStateCookie stores the OAuth state for the duration of one sign-in round trip.
func SetStateCookie(w http.ResponseWriter, state string, secure bool) {
	setCookie(w, StateCookieName, state, stateCookieTTL, secure)
}

func ClearStateCookie(w http.ResponseWriter, secure bool) {
	setCookie(w, StateCookieName, "", -1, secure)
}

func setCookie(w http.ResponseWriter, name, value string, ttl time.Duration, secure bool) {
	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}
