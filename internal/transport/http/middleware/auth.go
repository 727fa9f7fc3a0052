package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/baechuer/report-service/internal/domain"
	"github.com/baechuer/report-service/internal/logger"
	appCtx "github.com/baechuer/report-service/internal/pkg/context"
	"github.com/baechuer/report-service/internal/security"
	"github.com/baechuer/report-service/internal/transport/http/response"
)

// RequireBearer rejects requests without a valid access token and stores
// the token uid as the request subject.
func RequireBearer(v security.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(h, "Bearer ") {
				response.Err(w, r, domain.ErrUnauthorized("missing bearer token"))
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))

			claims, err := v.VerifyAccessToken(raw)
			if err != nil {
				logger.WithCtx(r.Context()).Debug().Err(err).Msg("auth rejected")
				msg := "invalid token"
				if errors.Is(err, security.ErrTokenExpired) {
					msg = "token expired"
				}
				response.Err(w, r, domain.ErrUnauthorized(msg))
				return
			}

			ctx := appCtx.WithSubject(r.Context(), claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
