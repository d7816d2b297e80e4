package auth

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	LoginPath          = "/login"
	LandingPath        = "/dashboard"
	PasswordChangePath = "/force-password-change"

	loginEndpoint          = "/api/auth/login"
	logoutEndpoint         = "/api/auth/logout"
	passwordChangeEndpoint = "/api/auth/change-password"
)

// Paths reachable without a session.
var publicPaths = map[string]bool{
	LoginPath:      true,
	loginEndpoint:  true,
	logoutEndpoint: true,
	"/health":      true,
	"/favicon.ico": true,
}

var publicPrefixes = []string{
	"/static/",
	"/internal/maintenance/", // guarded by its own cron secret
}

// Route families that require a specific role. Non-matching sessions are
// silently sent to the landing page so restricted routes are not enumerable.
var roleByPrefix = map[string]string{
	"/admin":     RoleAdmin,
	"/api/admin": RoleAdmin,
}

// Gate intercepts every inbound request before any page or API logic runs
// and decides allow, redirect-to-login, redirect-to-password-change or
// redirect-to-landing. It performs no credential-store writes and no audit
// logging; those belong to the handlers that actually authenticate.
type Gate struct {
	tokens  *TokenService
	cookies CookieWriter
}

func NewGate(tokens *TokenService, cookies CookieWriter) *Gate {
	return &Gate{tokens: tokens, cookies: cookies}
}

func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		session, err := g.tokens.Verify(sessionTokenFromRequest(r))
		if err != nil {
			if isPublicPath(path) {
				next.ServeHTTP(w, r)
				return
			}
			redirectToLogin(w, r, path)
			return
		}

		if path == LoginPath {
			http.Redirect(w, r, LandingPath, http.StatusFound)
			return
		}

		// Forced password change wins over everything else, including role
		// routing. Logout stays reachable so a user can still bail out.
		if session.ForcePasswordChange && !passwordChangeExempt(path) {
			http.Redirect(w, r, PasswordChangePath, http.StatusFound)
			return
		}

		if role, restricted := requiredRole(path); restricted && session.Role != role {
			http.Redirect(w, r, LandingPath, http.StatusFound)
			return
		}

		g.maybeRefresh(w, session)
		next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), session)))
	})
}

// maybeRefresh slides the session window: when a valid session has used up
// more than half its lifetime, a fresh token is set alongside the response.
func (g *Gate) maybeRefresh(w http.ResponseWriter, session Session) {
	remaining := time.Until(session.ExpiresAt)
	if remaining <= 0 || remaining >= g.tokens.TTL()/2 {
		return
	}
	if token, _, err := g.tokens.Refresh(session); err == nil {
		g.cookies.Set(w, token)
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request, originalPath string) {
	target := LoginPath
	if originalPath != "" && originalPath != "/" && originalPath != LoginPath {
		target += "?next=" + url.QueryEscape(originalPath)
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func isPublicPath(path string) bool {
	if publicPaths[path] {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func passwordChangeExempt(path string) bool {
	return path == PasswordChangePath || path == passwordChangeEndpoint || path == logoutEndpoint
}

func requiredRole(path string) (string, bool) {
	for prefix, role := range roleByPrefix {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return role, true
		}
	}
	return "", false
}
