package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/otcheredev/hospital-visitor-access/internal/access"
	"github.com/otcheredev/hospital-visitor-access/internal/middleware"
	"github.com/otcheredev/hospital-visitor-access/internal/models"
	"github.com/otcheredev/hospital-visitor-access/internal/repository"
	"github.com/otcheredev/hospital-visitor-access/internal/response"
	"github.com/otcheredev/hospital-visitor-access/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAccessService struct {
	mock.Mock
}

func (m *mockAccessService) Verify(ctx context.Context, tenantID uuid.UUID, actorID *uuid.UUID, req access.ScanRequest, key string) (*services.VerificationResult, error) {
	args := m.Called(ctx, tenantID, actorID, req, key)
	if v := args.Get(0); v != nil {
		return v.(*services.VerificationResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccessService) CompleteGuests(ctx context.Context, tenantID uuid.UUID, actorID *uuid.UUID, req services.CompletionRequest) (*services.CompletionResult, error) {
	args := m.Called(ctx, tenantID, actorID, req)
	if v := args.Get(0); v != nil {
		return v.(*services.CompletionResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccessService) ListGuestLogs(ctx context.Context, tenantID, guestPassID uuid.UUID, limit int) ([]models.GuestLog, error) {
	args := m.Called(ctx, tenantID, guestPassID, limit)
	if v := args.Get(0); v != nil {
		return v.([]models.GuestLog), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccessService) ListVisitingHours(ctx context.Context, tenantID uuid.UUID) ([]models.VisitingHoursRule, error) {
	args := m.Called(ctx, tenantID)
	if v := args.Get(0); v != nil {
		return v.([]models.VisitingHoursRule), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccessService) CreateVisitingHours(ctx context.Context, tenantID uuid.UUID, req *models.VisitingHoursRequest) (*models.VisitingHoursRule, error) {
	args := m.Called(ctx, tenantID, req)
	if v := args.Get(0); v != nil {
		return v.(*models.VisitingHoursRule), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccessService) ListAuditLogs(ctx context.Context, tenantID uuid.UUID, filter repository.AuditFilter, limit, offset int) ([]models.AuditLog, error) {
	args := m.Called(ctx, tenantID, filter, limit, offset)
	if v := args.Get(0); v != nil {
		return v.([]models.AuditLog), args.Error(1)
	}
	return nil, args.Error(1)
}

func newRouter(svc AccessService) http.Handler {
	accessHandler := NewAccessHandler(svc)
	managementHandler := NewManagementHandler(svc)

	r := chi.NewRouter()
	r.Use(middleware.TenantID)
	r.Post("/guest-passes/verify", accessHandler.Verify)
	r.Post("/guest-passes/complete", accessHandler.Complete)
	r.Get("/guest-passes/{id}/logs", accessHandler.GetLogs)
	r.Get("/visiting-hours", managementHandler.GetVisitingHours)
	r.Post("/visiting-hours", managementHandler.CreateVisitingHours)
	r.Get("/audit-logs", managementHandler.GetAuditLogs)
	return r
}

func do(t *testing.T, h http.Handler, tenant uuid.UUID, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.TenantHeader, tenant.String())
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestVerify_Granted(t *testing.T) {
	svc := &mockAccessService{}
	tenant := uuid.New()
	result := &services.VerificationResult{
		Verified:      true,
		AccessGranted: true,
		AccessReason:  access.ReasonEntry,
		Action:        services.ActionCheckIn,
		Guest:         services.GuestSummary{QRCode: "GP-1001", ScansUsed: 1},
		CurrentTime:   "2024-01-01T10:00:00Z",
	}
	svc.On("Verify", mock.Anything, tenant, (*uuid.UUID)(nil), mock.MatchedBy(func(req access.ScanRequest) bool {
		code, err := access.Normalize(req)
		return err == nil && code == "GP-1001"
	}), "scan-7").Return(result, nil)

	rec := do(t, newRouter(svc), tenant, http.MethodPost, "/guest-passes/verify", `{"qrCode":"GP-1001"}`, IdempotencyHeader, "scan-7")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["verified"])
	assert.Equal(t, true, body["accessGranted"])
	assert.Equal(t, access.ReasonEntry, body["accessReason"])
	assert.Contains(t, body, "guest")
	assert.Contains(t, body, "validations")
	assert.Contains(t, body, "isWithinVisitingHours")
	svc.AssertExpectations(t)
}

func TestVerify_DeniedIsOK(t *testing.T) {
	svc := &mockAccessService{}
	tenant := uuid.New()
	svc.On("Verify", mock.Anything, tenant, mock.Anything, mock.Anything, "").Return(&services.VerificationResult{
		AccessReason: "Scan limit exceeded",
		DenialReason: "Scan limit exceeded",
		DenialCode:   string(access.DenialScanLimit),
	}, nil)

	rec := do(t, newRouter(svc), tenant, http.MethodPost, "/guest-passes/verify", `{"qrData":{"code":"GP-1001"}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["verified"])
	assert.Equal(t, "Scan limit exceeded", body["denialReason"])
}

func TestVerify_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"malformed", fmt.Errorf("%w: empty", services.ErrMalformedPayload), http.StatusBadRequest, response.CodeMalformedPayload},
		{"not found", services.ErrNotFound, http.StatusNotFound, response.CodeNotFound},
		{"conflict", services.ErrScanConflict, http.StatusConflict, response.CodeScanConflict},
		{"store failure", errors.New("failed to look up guest pass: connection refused"), http.StatusInternalServerError, response.CodeStoreFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAccessService{}
			svc.On("Verify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := do(t, newRouter(svc), uuid.New(), http.MethodPost, "/guest-passes/verify", `{"qrCode":"GP-404"}`)

			assert.Equal(t, tt.status, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body["code"])
			assert.NotContains(t, body, "guest")
			assert.NotContains(t, rec.Body.String(), "connection refused")
		})
	}
}

func TestVerify_InvalidJSON(t *testing.T) {
	svc := &mockAccessService{}

	rec := do(t, newRouter(svc), uuid.New(), http.MethodPost, "/guest-passes/verify", `{"qrCode":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), response.CodeMalformedPayload)
	svc.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestComplete(t *testing.T) {
	svc := &mockAccessService{}
	tenant := uuid.New()
	sessionID := uuid.New()
	svc.On("CompleteGuests", mock.Anything, tenant, (*uuid.UUID)(nil), services.CompletionRequest{SessionID: &sessionID}).
		Return(&services.CompletionResult{CheckedOut: 2, Completed: 3}, nil)

	rec := do(t, newRouter(svc), tenant, http.MethodPost, "/guest-passes/complete", fmt.Sprintf(`{"sessionId":%q}`, sessionID))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(2), body["checkedOut"])
	assert.Equal(t, float64(3), body["completed"])
}

func TestComplete_InvalidRequest(t *testing.T) {
	svc := &mockAccessService{}
	svc.On("CompleteGuests", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: exactly one of guestId or sessionId is required", services.ErrInvalidRequest))

	rec := do(t, newRouter(svc), uuid.New(), http.MethodPost, "/guest-passes/complete", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), response.CodeInvalidInput)
}

func TestGetLogs(t *testing.T) {
	svc := &mockAccessService{}
	tenant := uuid.New()
	passID := uuid.New()
	svc.On("ListGuestLogs", mock.Anything, tenant, passID, maxLogLimit).Return([]models.GuestLog{{GuestPassID: passID}}, nil)

	rec := do(t, newRouter(svc), tenant, http.MethodGet, "/guest-passes/"+passID.String()+"/logs?limit=5000", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)

	rec = do(t, newRouter(svc), tenant, http.MethodGet, "/guest-passes/not-a-uuid/logs", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVisitingHours(t *testing.T) {
	svc := &mockAccessService{}
	tenant := uuid.New()
	svc.On("CreateVisitingHours", mock.Anything, tenant, &models.VisitingHoursRequest{StartTime: "09:00", EndTime: "11:00"}).
		Return(&models.VisitingHoursRule{ID: uuid.New(), StartTime: "09:00", EndTime: "11:00"}, nil)
	svc.On("ListVisitingHours", mock.Anything, tenant).Return([]models.VisitingHoursRule{}, nil)

	rec := do(t, newRouter(svc), tenant, http.MethodPost, "/visiting-hours", `{"start_time":"09:00","end_time":"11:00"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, newRouter(svc), tenant, http.MethodGet, "/visiting-hours", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetAuditLogs(t *testing.T) {
	svc := &mockAccessService{}
	tenant := uuid.New()
	filter := repository.AuditFilter{Code: "GP-1001", Status: "denied"}
	svc.On("ListAuditLogs", mock.Anything, tenant, filter, 10, 20).Return([]models.AuditLog{}, nil)

	rec := do(t, newRouter(svc), tenant, http.MethodGet, "/audit-logs?code=GP-1001&status=denied&limit=10&offset=20", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestHealth(t *testing.T) {
	healthy := NewHealthHandler(map[string]Checker{
		"database": func(ctx context.Context) error { return nil },
		"cache":    func(ctx context.Context) error { return nil },
	})
	rec := httptest.NewRecorder()
	healthy.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)

	degraded := NewHealthHandler(map[string]Checker{
		"database": func(ctx context.Context) error { return errors.New("down") },
	})
	rec = httptest.NewRecorder()
	degraded.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"degraded"`)

	rec = httptest.NewRecorder()
	degraded.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
