package auth

import "context"

type sessionContextKey struct{}

// ContextWithSession attaches a verified session to the context. The gate is
// the only production caller; tests use it to simulate authenticated
// requests.
func ContextWithSession(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// SessionFromContext returns the session placed on the request by the gate.
func SessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(Session)
	return session, ok
}
