package auth

import (
	"context"
	"strings"
	"unicode"

	"sisc-sesau/internal/audit"
)

// Special characters accepted by the password policy, matching the set the
// SISC-SESAU frontend advertises to users.
const passwordSpecialChars = "@$!%*?&"

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt input limit
)

// ValidateNewPassword enforces the server-side strength rule: length within
// bounds, at least one lower-case letter, one upper-case letter, one digit
// and one special character.
func ValidateNewPassword(password string) error {
	if len(password) < minPasswordLength {
		return ErrValidation{Message: "A senha deve ter pelo menos 8 caracteres"}
	}
	if len(password) > maxPasswordLength {
		return ErrValidation{Message: "A senha deve ter no máximo 72 caracteres"}
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSpecialChars, r):
			hasSpecial = true
		}
	}
	if !hasLower || !hasUpper || !hasDigit || !hasSpecial {
		return ErrValidation{
			Message: "A senha deve conter letra maiúscula, minúscula, número e caractere especial (" + passwordSpecialChars + ")",
		}
	}

	return nil
}

// ChangePassword verifies the current password against the stored hash (a
// fresh verification, independent of the session token) and commits the new
// one. The commit clears force_password_change and resets the lockout state
// in the same write, then records a PASSWORD_CHANGED audit entry.
//
// A retried submission of the same change fails the current-password check,
// so replays cannot corrupt state.
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string, meta audit.Meta) (Account, error) {
	if currentPassword == "" || newPassword == "" {
		return Account{}, ErrValidation{Message: "Todos os campos são obrigatórios"}
	}
	if err := ValidateNewPassword(newPassword); err != nil {
		return Account{}, err
	}
	if newPassword == currentPassword {
		return Account{}, ErrValidation{Message: "A nova senha deve ser diferente da atual"}
	}

	account, err := s.store.AccountByID(ctx, userID)
	if err != nil {
		return Account{}, err
	}

	if !VerifyPassword(currentPassword, account.PasswordHash) {
		return Account{}, ErrInvalidCredentials
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return Account{}, err
	}

	now := s.now().UTC()
	if err := s.store.UpdatePassword(ctx, account.ID, hash, now); err != nil {
		return Account{}, err
	}

	s.record(ctx, audit.Entry{
		UserID:    account.ID,
		UserEmail: account.Email,
		Action:    audit.ActionPasswordChanged,
		Details:   map[string]any{"forcedChange": account.ForcePasswordChange},
	}, meta)

	account.PasswordHash = hash
	account.ForcePasswordChange = false
	account.FailedLoginAttempts = 0
	account.LockedUntil = nil
	account.UpdatedAt = now

	return account, nil
}
