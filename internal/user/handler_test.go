package user

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"sisc-sesau/internal/auth"
)

// These cases fail before the repository is reached, so a nil repository is
// enough.
func TestCreateRejectedBeforeRepository(t *testing.T) {
	handler := NewHandler(nil)

	tests := []struct {
		name       string
		session    *auth.Session
		body       string
		wantStatus int
	}{
		{name: "no session", body: `{}`, wantStatus: http.StatusUnauthorized},
		{name: "non-admin session", session: &auth.Session{UserID: "u1", Role: auth.RoleMedico}, body: `{}`, wantStatus: http.StatusForbidden},
		{name: "bad json", session: &auth.Session{UserID: "u1", Role: auth.RoleAdmin}, body: `{`, wantStatus: http.StatusBadRequest},
		{name: "invalid email", session: &auth.Session{UserID: "u1", Role: auth.RoleAdmin}, body: `{"email":"not-an-email","name":"Ana","role":"atendente","tempPassword":"SenhaForte1!"}`, wantStatus: http.StatusBadRequest},
		{name: "invalid role", session: &auth.Session{UserID: "u1", Role: auth.RoleAdmin}, body: `{"email":"ana@sesau.araruama.gov.br","name":"Ana","role":"gestor","tempPassword":"SenhaForte1!"}`, wantStatus: http.StatusBadRequest},
		{name: "weak temp password", session: &auth.Session{UserID: "u1", Role: auth.RoleAdmin}, body: `{"email":"ana@sesau.araruama.gov.br","name":"Ana","role":"atendente","tempPassword":"fraca"}`, wantStatus: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/admin/users", strings.NewReader(tc.body))
			if tc.session != nil {
				req = req.WithContext(auth.ContextWithSession(req.Context(), *tc.session))
			}
			recorder := httptest.NewRecorder()
			handler.Create(recorder, req)
			assert.Equal(t, tc.wantStatus, recorder.Code)
		})
	}
}

func TestListRequiresAdmin(t *testing.T) {
	handler := NewHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req = req.WithContext(auth.ContextWithSession(req.Context(), auth.Session{UserID: "u1", Role: auth.RoleAtendente}))
	recorder := httptest.NewRecorder()
	handler.List(recorder, req)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
}
