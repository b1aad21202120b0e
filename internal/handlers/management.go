package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/otcheredev/hospital-visitor-access/internal/middleware"
	"github.com/otcheredev/hospital-visitor-access/internal/models"
	"github.com/otcheredev/hospital-visitor-access/internal/repository"
	"github.com/otcheredev/hospital-visitor-access/internal/response"
	"github.com/rs/zerolog/log"
)

type ManagementHandler struct {
	service AccessService
}

func NewManagementHandler(service AccessService) *ManagementHandler {
	return &ManagementHandler{service: service}
}

// CreateVisitingHours creates a new visiting-hours rule
func (h *ManagementHandler) CreateVisitingHours(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, ok := middleware.GetTenantID(ctx)
	if !ok {
		response.BadRequest(w, "Tenant ID not found")
		return
	}

	var req models.VisitingHoursRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	rule, err := h.service.CreateVisitingHours(ctx, tenantID, &req)
	if err != nil {
		writeServiceError(w, r, err, "Failed to create visiting hours")
		return
	}

	response.JSON(w, http.StatusCreated, rule)
}

// GetVisitingHours retrieves all visiting-hours rules for a tenant
func (h *ManagementHandler) GetVisitingHours(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, ok := middleware.GetTenantID(ctx)
	if !ok {
		response.BadRequest(w, "Tenant ID not found")
		return
	}

	rules, err := h.service.ListVisitingHours(ctx, tenantID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get visiting hours")
		response.WriteError(w, http.StatusInternalServerError, "Failed to get visiting hours", response.CodeStoreFailure)
		return
	}

	response.JSON(w, http.StatusOK, rules)
}

// GetAuditLogs lists verification attempts, filtered by code, action and status
func (h *ManagementHandler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, ok := middleware.GetTenantID(ctx)
	if !ok {
		response.BadRequest(w, "Tenant ID not found")
		return
	}

	limit := queryInt(r, "limit", 100)
	if limit > maxLogLimit {
		limit = maxLogLimit
	}

	q := r.URL.Query()
	filter := repository.AuditFilter{
		Code:   q.Get("code"),
		Action: q.Get("action"),
		Status: q.Get("status"),
	}

	logs, err := h.service.ListAuditLogs(ctx, tenantID, filter, limit, queryInt(r, "offset", 0))
	if err != nil {
		log.Error().Err(err).Msg("Failed to get audit logs")
		response.WriteError(w, http.StatusInternalServerError, "Failed to get audit logs", response.CodeStoreFailure)
		return
	}

	response.JSON(w, http.StatusOK, logs)
}
