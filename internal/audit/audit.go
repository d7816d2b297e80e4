// Package audit records security-relevant events. Entries are append-only
// and a failed write never fails the operation that produced it.
package audit

import (
	"context"
	"net/http"
	"strings"
	"time"
)

type Action string

// Closed action vocabulary; extend only by adding members.
const (
	ActionLoginSuccess         Action = "LOGIN_SUCCESS"
	ActionLoginUserNotFound    Action = "LOGIN_FAILED_USER_NOT_FOUND"
	ActionLoginInvalidPassword Action = "LOGIN_FAILED_INVALID_PASSWORD"
	ActionLoginBlockedAccount  Action = "LOGIN_BLOCKED_ACCOUNT"
	ActionPasswordChanged      Action = "PASSWORD_CHANGED"
)

// UnknownUserID is the actor sentinel for events without a resolved account.
const UnknownUserID = "unknown"

type Entry struct {
	UserID    string
	UserEmail string
	Action    Action
	Details   map[string]any
	IP        string
	UserAgent string
	CreatedAt time.Time
}

type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Meta carries request attribution into audit entries.
type Meta struct {
	IP        string
	UserAgent string
}

func MetaFromRequest(r *http.Request) Meta {
	return Meta{
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	}
}

func clientIP(r *http.Request) string {
	forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if forwarded != "" {
		if ip := strings.TrimSpace(strings.Split(forwarded, ",")[0]); ip != "" {
			return ip
		}
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
