package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/getsentry/sentry-go"

	"sisc-sesau/internal/auth"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const maxJSONBodyBytes = 1 << 20

// Handler exposes the admin provisioning API. The gate already restricts the
// /api/admin family to the admin role; the handler re-checks the session as
// defense in depth.
type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

type createRequest struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	TempPassword string `json:"tempPassword"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	users, err := h.repo.List(r.Context())
	if err != nil {
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	var body createRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	body.Email = strings.TrimSpace(strings.ToLower(body.Email))
	body.Name = strings.TrimSpace(body.Name)
	body.Role = strings.TrimSpace(body.Role)

	if !emailRegex.MatchString(body.Email) || len(body.Email) > 254 {
		writeError(w, http.StatusBadRequest, "Email inválido")
		return
	}
	if body.Name == "" || !utf8.ValidString(body.Name) || len(body.Name) > 150 {
		writeError(w, http.StatusBadRequest, "Nome inválido")
		return
	}
	if !auth.ValidRole(body.Role) {
		writeError(w, http.StatusBadRequest, "Perfil inválido")
		return
	}
	if err := auth.ValidateNewPassword(body.TempPassword); err != nil {
		var validationErr auth.ErrValidation
		if errors.As(err, &validationErr) {
			writeError(w, http.StatusBadRequest, validationErr.Message)
			return
		}
		writeError(w, http.StatusBadRequest, "Senha temporária inválida")
		return
	}

	hash, err := auth.HashPassword(body.TempPassword)
	if err != nil {
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	created, err := h.repo.Create(r.Context(), body.Email, body.Name, body.Role, hash)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			writeError(w, http.StatusConflict, "Email já cadastrado")
			return
		}
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Não autorizado")
		return false
	}
	if session.Role != auth.RoleAdmin {
		writeError(w, http.StatusForbidden, "Permissão insuficiente")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
