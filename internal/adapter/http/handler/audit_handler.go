package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/agencyledger/internal/adapter/http/dto"
	"github.com/iho/agencyledger/internal/domain"
	"github.com/iho/agencyledger/internal/usecase"
)

// AuditHandler handles audit trail HTTP requests.
type AuditHandler struct {
	auditRepo usecase.AuditRepository
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditRepo usecase.AuditRepository) *AuditHandler {
	return &AuditHandler{auditRepo: auditRepo}
}

// List lists audit logs with optional filtering.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	logs, err := h.auditRepo.List(r.Context(), domain.AuditFilter{
		UserID:       q.Get("user_id"),
		Action:       q.Get("action"),
		ResourceType: q.Get("resource_type"),
		ResourceID:   q.Get("resource_id"),
		Limit:        parseIntQuery(r, "limit", 50),
		Offset:       parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list audit logs", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditLogsFromDomain(logs))
}

// GetByResource returns the audit trail of one resource.
func (h *AuditHandler) GetByResource(w http.ResponseWriter, r *http.Request) {
	resourceType := chi.URLParam(r, "type")
	resourceID := chi.URLParam(r, "id")
	if resourceType == "" || resourceID == "" {
		writeError(w, http.StatusBadRequest, "missing resource type or ID", "")
		return
	}

	logs, err := h.auditRepo.GetByResourceID(r.Context(), resourceType, resourceID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get audit trail", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditLogsFromDomain(logs))
}
