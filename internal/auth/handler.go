package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"

	"sisc-sesau/internal/audit"
)

const maxJSONBodyBytes = 1 << 20

type Handler struct {
	service *Service
	tokens  *TokenService
	cookies CookieWriter
}

func NewHandler(service *Service, tokens *TokenService, cookies CookieWriter) *Handler {
	return &Handler{service: service, tokens: tokens, cookies: cookies}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type loginResponse struct {
	Success                bool        `json:"success"`
	User                   userPayload `json:"user"`
	RequiresPasswordChange bool        `json:"requiresPasswordChange"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	var body loginRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	result, err := h.service.Login(r.Context(), body.Email, body.Password, audit.MetaFromRequest(r))
	if err != nil {
		var validationErr ErrValidation
		if errors.As(err, &validationErr) {
			writeError(w, http.StatusBadRequest, validationErr.Message)
			return
		}
		if errors.Is(err, ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Credenciais inválidas")
			return
		}
		var lockedErr ErrAccountLocked
		if errors.As(err, &lockedErr) {
			writeLocked(w, lockedErr.Until)
			return
		}

		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	h.cookies.Set(w, result.Token)
	writeJSON(w, http.StatusOK, loginResponse{
		Success: true,
		User: userPayload{
			ID:    result.Account.ID,
			Name:  result.Account.Name,
			Email: result.Account.Email,
			Role:  result.Account.Role,
		},
		RequiresPasswordChange: result.Account.ForcePasswordChange,
	})
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Não autorizado")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	var body changePasswordRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	account, err := h.service.ChangePassword(r.Context(), session.UserID, body.CurrentPassword, body.NewPassword, audit.MetaFromRequest(r))
	if err != nil {
		var validationErr ErrValidation
		if errors.As(err, &validationErr) {
			writeError(w, http.StatusBadRequest, validationErr.Message)
			return
		}
		if errors.Is(err, ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Senha atual incorreta")
			return
		}
		if errors.Is(err, ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "Usuário não encontrado")
			return
		}

		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	// The old token still carries force_password_change; replace it so the
	// gate stops redirecting without requiring a new login.
	if token, _, err := h.tokens.Issue(account); err == nil {
		h.cookies.Set(w, token)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Senha alterada com sucesso!",
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func writeLocked(w http.ResponseWriter, until time.Time) {
	retryAfter := int(time.Until(until).Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	writeJSON(w, http.StatusLocked, map[string]any{
		"error":       "Conta temporariamente bloqueada. Tente novamente mais tarde.",
		"lockedUntil": until.UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
