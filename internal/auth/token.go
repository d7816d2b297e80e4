// Package auth implements the security core: credential verification with
// per-account lockout, signed stateless session tokens, forced-password-change
// enforcement and role-based route authorization.
//
// Sessions are entirely self-contained: validity is a function of the HMAC
// signature and the embedded expiry, and logout only instructs the client to
// discard the cookie. A stolen token therefore stays usable until its fixed
// expiry; that is an accepted tradeoff of keeping the server session-free.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultSessionTTL = 8 * time.Hour

type sessionClaims struct {
	Email               string `json:"email"`
	Name                string `json:"name"`
	Role                string `json:"role"`
	ForcePasswordChange bool   `json:"fpc"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed session tokens. The signing secret
// is immutable for the process lifetime and required at construction; the
// bootstrap refuses to start without one.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("session signing secret is required")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a fresh token for the account. Expiry is always issue time
// plus the fixed session lifetime.
func (s *TokenService) Issue(account Account) (string, time.Time, error) {
	return s.sign(Session{
		UserID:              account.ID,
		Email:               account.Email,
		Name:                account.Name,
		Role:                account.Role,
		ForcePasswordChange: account.ForcePasswordChange,
	})
}

// Refresh re-issues the identity claims of a verified session with a new
// full lifetime. It never consults the credential store, so it can extend a
// session but never un-lock an account.
func (s *TokenService) Refresh(session Session) (string, time.Time, error) {
	return s.sign(session)
}

func (s *TokenService) sign(session Session) (string, time.Time, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)

	claims := sessionClaims{
		Email:               session.Email,
		Name:                session.Name,
		Role:                session.Role,
		ForcePasswordChange: session.ForcePasswordChange,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	encoded, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}

	return encoded, expiresAt, nil
}

// Verify checks signature and expiry and returns the embedded session. Every
// failure mode collapses to ErrInvalidSession; callers must not learn which
// check failed.
func (s *TokenService) Verify(tokenString string) (Session, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return Session{}, ErrInvalidSession
	}
	if claims.Subject == "" || !ValidRole(claims.Role) {
		return Session{}, ErrInvalidSession
	}

	session := Session{
		UserID:              claims.Subject,
		Email:               claims.Email,
		Name:                claims.Name,
		Role:                claims.Role,
		ForcePasswordChange: claims.ForcePasswordChange,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}

	return session, nil
}
