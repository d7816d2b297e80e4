package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"sisc-sesau/internal/audit"
)

// Service runs the login flow: lockout check, password verification, token
// issuance and audit. All account mutations go through the Store as single
// atomic writes.
type Service struct {
	store  Store
	tokens *TokenService
	audit  audit.Recorder
	policy LockoutPolicy
	now    func() time.Time
}

func NewService(store Store, tokens *TokenService, recorder audit.Recorder) *Service {
	return &Service{
		store:  store,
		tokens: tokens,
		audit:  recorder,
		policy: DefaultLockoutPolicy(),
		now:    time.Now,
	}
}

func (s *Service) WithLockoutPolicy(policy LockoutPolicy) {
	s.policy = policy.normalized()
}

type LoginResult struct {
	Account   Account
	Token     string
	ExpiresAt time.Time
}

// Login verifies credentials for a case-normalized email. Lock state is
// checked before the password is compared; unknown emails burn a dummy hash
// comparison so response timing does not reveal account existence.
func (s *Service) Login(ctx context.Context, email, password string, meta audit.Meta) (LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return LoginResult{}, ErrValidation{Message: "Email e senha são obrigatórios"}
	}

	now := s.now().UTC()

	account, err := s.store.AccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			VerifyDummyPassword(password)
			s.record(ctx, audit.Entry{
				UserID:    audit.UnknownUserID,
				UserEmail: email,
				Action:    audit.ActionLoginUserNotFound,
			}, meta)
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if decision := s.policy.Evaluate(account.FailedLoginAttempts, account.LockedUntil, now); decision.Locked {
		s.record(ctx, audit.Entry{
			UserID:    account.ID,
			UserEmail: account.Email,
			Action:    audit.ActionLoginBlockedAccount,
			Details:   map[string]any{"lockedUntil": decision.Until.Format(time.RFC3339)},
		}, meta)
		return LoginResult{}, ErrAccountLocked{Until: decision.Until}
	}

	if !VerifyPassword(password, account.PasswordHash) {
		state, err := s.store.RegisterFailedLogin(ctx, account.ID, s.policy, now)
		if err != nil {
			return LoginResult{}, err
		}

		details := map[string]any{"failedAttempts": state.FailedAttempts}
		if state.LockedUntil != nil {
			details["lockedUntil"] = state.LockedUntil.Format(time.RFC3339)
		}
		s.record(ctx, audit.Entry{
			UserID:    account.ID,
			UserEmail: account.Email,
			Action:    audit.ActionLoginInvalidPassword,
			Details:   details,
		}, meta)

		if state.LockedUntil != nil && now.Before(*state.LockedUntil) {
			return LoginResult{}, ErrAccountLocked{Until: *state.LockedUntil}
		}
		return LoginResult{}, ErrInvalidCredentials
	}

	if err := s.store.ResetLoginState(ctx, account.ID); err != nil {
		return LoginResult{}, err
	}
	account.FailedLoginAttempts = 0
	account.LockedUntil = nil

	token, expiresAt, err := s.tokens.Issue(account)
	if err != nil {
		return LoginResult{}, err
	}

	s.record(ctx, audit.Entry{
		UserID:    account.ID,
		UserEmail: account.Email,
		Action:    audit.ActionLoginSuccess,
		Details:   map[string]any{"role": account.Role},
	}, meta)

	return LoginResult{Account: account, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *Service) record(ctx context.Context, entry audit.Entry, meta audit.Meta) {
	entry.IP = meta.IP
	entry.UserAgent = meta.UserAgent
	// Recorder implementations swallow their own failures; audit must never
	// break the login path.
	_ = s.audit.Record(ctx, entry)
}
