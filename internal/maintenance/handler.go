package maintenance

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"sisc-sesau/internal/audit"
	"sisc-sesau/internal/auth"
	"sisc-sesau/internal/observability"
)

// CleanupHandler prunes audit rows past retention and clears long-expired
// account locks. It is invoked by an external scheduler and guarded by a
// shared cron secret; without one configured the route pretends not to
// exist.
type CleanupHandler struct {
	authRepo       *auth.Repository
	auditRepo      *audit.Repository
	logger         *observability.Logger
	cronSecret     string
	auditRetention time.Duration
	batchSize      int
}

func NewCleanupHandler(
	authRepo *auth.Repository,
	auditRepo *audit.Repository,
	logger *observability.Logger,
	cronSecret string,
	auditRetention time.Duration,
	batchSize int,
) *CleanupHandler {
	if auditRetention <= 0 {
		auditRetention = 90 * 24 * time.Hour
	}
	return &CleanupHandler{
		authRepo:       authRepo,
		auditRepo:      auditRepo,
		logger:         logger,
		cronSecret:     strings.TrimSpace(cronSecret),
		auditRetention: auditRetention,
		batchSize:      batchSize,
	}
}

func (h *CleanupHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.cronSecret == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) != h.cronSecret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	now := time.Now().UTC()

	deletedAudit, err := h.auditRepo.DeleteOlderThan(r.Context(), now.Add(-h.auditRetention), h.batchSize)
	if err != nil {
		h.logger.Error("audit_cleanup_failed", map[string]any{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cleanup failed"})
		return
	}

	clearedLocks, err := h.authRepo.ClearExpiredLocks(r.Context(), now, h.batchSize)
	if err != nil {
		h.logger.Error("lock_cleanup_failed", map[string]any{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cleanup failed"})
		return
	}

	h.logger.Info("maintenance_cleanup_completed", map[string]any{
		"deleted_audit_entries": deletedAudit,
		"cleared_locks":         clearedLocks,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"result": map[string]int64{
			"deleted_audit_entries": deletedAudit,
			"cleared_locks":         clearedLocks,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
