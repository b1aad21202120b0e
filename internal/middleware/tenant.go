package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/otcheredev/hospital-visitor-access/internal/models"
	"github.com/otcheredev/hospital-visitor-access/internal/response"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	TenantIDKey contextKey = "tenant_id"
	UserKey     contextKey = "user"
)

// TenantHeader carries the hospital id for unauthenticated deployments
const TenantHeader = "X-Tenant-ID"

// TenantID middleware resolves the hospital a request acts on. An
// authenticated user's tenant wins; the header must agree with it when both
// are present.
func TenantID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantIDStr := r.Header.Get(TenantHeader)

		if user, ok := GetUser(r.Context()); ok {
			if tenantIDStr != "" && tenantIDStr != user.TenantID.String() {
				log.Warn().
					Str("tenant_id", tenantIDStr).
					Str("user_id", user.UserID.String()).
					Msg("Tenant header does not match token")
				response.Forbidden(w, "X-Tenant-ID does not match the authenticated hospital")
				return
			}
			ctx := context.WithValue(r.Context(), TenantIDKey, user.TenantID)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		if tenantIDStr == "" {
			log.Warn().Msg("Missing X-Tenant-ID header")
			response.BadRequest(w, "X-Tenant-ID header is required")
			return
		}

		tenantID, err := uuid.Parse(tenantIDStr)
		if err != nil {
			log.Warn().Err(err).Str("tenant_id", tenantIDStr).Msg("Invalid tenant ID")
			response.BadRequest(w, "Invalid X-Tenant-ID format")
			return
		}

		ctx := context.WithValue(r.Context(), TenantIDKey, tenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetTenantID extracts tenant ID from context
func GetTenantID(ctx context.Context) (uuid.UUID, bool) {
	tenantID, ok := ctx.Value(TenantIDKey).(uuid.UUID)
	return tenantID, ok
}

// GetUser extracts the authenticated staff member from context
func GetUser(ctx context.Context) (*models.UserContext, bool) {
	user, ok := ctx.Value(UserKey).(*models.UserContext)
	return user, ok
}

// ActorID returns the authenticated user's id, or nil for anonymous requests
func ActorID(ctx context.Context) *uuid.UUID {
	user, ok := GetUser(ctx)
	if !ok || user.UserID == uuid.Nil {
		return nil
	}
	id := user.UserID
	return &id
}
