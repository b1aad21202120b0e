package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/otcheredev/hospital-visitor-access/internal/access"
	"github.com/otcheredev/hospital-visitor-access/internal/middleware"
	"github.com/otcheredev/hospital-visitor-access/internal/models"
	"github.com/otcheredev/hospital-visitor-access/internal/repository"
	"github.com/otcheredev/hospital-visitor-access/internal/response"
	"github.com/otcheredev/hospital-visitor-access/internal/services"
)

// IdempotencyHeader lets a scanner retry a verification without scanning twice
const IdempotencyHeader = "Idempotency-Key"

const maxLogLimit = 200

// AccessService is the checkpoint behaviour the HTTP layer depends on
type AccessService interface {
	Verify(ctx context.Context, tenantID uuid.UUID, actorID *uuid.UUID, req access.ScanRequest, idempotencyKey string) (*services.VerificationResult, error)
	CompleteGuests(ctx context.Context, tenantID uuid.UUID, actorID *uuid.UUID, req services.CompletionRequest) (*services.CompletionResult, error)
	ListGuestLogs(ctx context.Context, tenantID, guestPassID uuid.UUID, limit int) ([]models.GuestLog, error)
	ListVisitingHours(ctx context.Context, tenantID uuid.UUID) ([]models.VisitingHoursRule, error)
	CreateVisitingHours(ctx context.Context, tenantID uuid.UUID, req *models.VisitingHoursRequest) (*models.VisitingHoursRule, error)
	ListAuditLogs(ctx context.Context, tenantID uuid.UUID, filter repository.AuditFilter, limit, offset int) ([]models.AuditLog, error)
}

type AccessHandler struct {
	service AccessService
}

func NewAccessHandler(service AccessService) *AccessHandler {
	return &AccessHandler{service: service}
}

// Verify handles a checkpoint scan. Granted and denied verdicts are both 200.
func (h *AccessHandler) Verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, ok := middleware.GetTenantID(ctx)
	if !ok {
		response.BadRequest(w, "Tenant ID not found")
		return
	}

	var req access.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteErrorWithDetails(w, http.StatusBadRequest, "Invalid request body", response.CodeMalformedPayload, err.Error())
		return
	}

	result, err := h.service.Verify(ctx, tenantID, middleware.ActorID(ctx), req, r.Header.Get(IdempotencyHeader))
	if err != nil {
		writeServiceError(w, r, err, "Failed to verify guest pass")
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// Complete force-checks-out and expires the passes of one guest or one session
func (h *AccessHandler) Complete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, ok := middleware.GetTenantID(ctx)
	if !ok {
		response.BadRequest(w, "Tenant ID not found")
		return
	}

	var req services.CompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.service.CompleteGuests(ctx, tenantID, middleware.ActorID(ctx), req)
	if err != nil {
		writeServiceError(w, r, err, "Failed to complete guest passes")
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// GetLogs returns the visit history of a guest pass
func (h *AccessHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, ok := middleware.GetTenantID(ctx)
	if !ok {
		response.BadRequest(w, "Tenant ID not found")
		return
	}

	guestPassID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid guest pass ID")
		return
	}

	limit := queryInt(r, "limit", 50)
	if limit > maxLogLimit {
		limit = maxLogLimit
	}

	logs, err := h.service.ListGuestLogs(ctx, tenantID, guestPassID, limit)
	if err != nil {
		writeServiceError(w, r, err, "Failed to get guest logs")
		return
	}

	response.JSON(w, http.StatusOK, logs)
}

func queryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
