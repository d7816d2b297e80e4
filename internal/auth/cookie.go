package auth

import (
	"net/http"
	"time"
)

// SessionCookieName matches the cookie used by the original SISC-SESAU
// frontend.
const SessionCookieName = "sisc-session"

// CookieWriter is the single place that writes the session credential
// carrier. Only the gate and the auth handlers touch the cookie; everything
// else reads the session from the request context.
type CookieWriter struct {
	Secure bool
	TTL    time.Duration
}

func (c CookieWriter) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.TTL.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// Clear instructs the client to discard the token. There is no server-side
// revocation list; see the package doc.
func (c CookieWriter) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func sessionTokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
