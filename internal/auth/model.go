package auth

import "time"

const (
	RoleAdmin     = "admin"
	RoleMedico    = "medico"
	RoleAtendente = "atendente"
)

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleMedico, RoleAtendente:
		return true
	default:
		return false
	}
}

// Account is the credential record of a provisioned user. Accounts are
// created through the admin provisioning API and are never deleted here.
type Account struct {
	ID                  string
	Email               string
	Name                string
	PasswordHash        string
	Role                string
	FailedLoginAttempts int
	LockedUntil         *time.Time
	ForcePasswordChange bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Session is the verified content of a session token. The token held by the
// client is the only proof of authentication; the server keeps no session
// table.
type Session struct {
	UserID              string
	Email               string
	Name                string
	Role                string
	ForcePasswordChange bool
	IssuedAt            time.Time
	ExpiresAt           time.Time
}

// LoginState is the lockout-relevant slice of an account as returned by an
// atomic store mutation.
type LoginState struct {
	FailedAttempts int
	LockedUntil    *time.Time
}
