package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/otcheredev/hospital-visitor-access/internal/models"
	"github.com/otcheredev/hospital-visitor-access/internal/response"
	"github.com/rs/zerolog/log"
)

// Authenticate validates HS256 bearer tokens issued to checkpoint staff and
// stores the caller in the request context. An empty secret disables it.
func Authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				response.Unauthorized(w, "Bearer token is required")
				return
			}

			claims, err := ParseToken(token, secret)
			if err != nil {
				log.Warn().Err(err).Str("path", r.URL.Path).Msg("Rejected token")
				if errors.Is(err, jwt.ErrTokenExpired) {
					response.WriteError(w, http.StatusUnauthorized, "Token expired", "EXPIRED_TOKEN")
					return
				}
				response.WriteError(w, http.StatusUnauthorized, "Invalid token", "INVALID_TOKEN")
				return
			}

			user := &models.UserContext{
				UserID:   claims.UserID,
				TenantID: claims.TenantID,
				Role:     claims.Role,
			}
			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ParseToken verifies a signed token and returns its claims
func ParseToken(tokenString, secret string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}
