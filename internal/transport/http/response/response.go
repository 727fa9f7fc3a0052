package response

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/baechuer/report-service/internal/domain"
	"github.com/baechuer/report-service/internal/logger"
	appCtx "github.com/baechuer/report-service/internal/pkg/context"
)

// ErrorBody is the only non-array body a report route returns.
type ErrorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func Fail(w http.ResponseWriter, r *http.Request, status int, code domain.ErrCode, message string) {
	JSON(w, r, status, ErrorBody{
		Error:     message,
		Code:      string(code),
		RequestID: RequestIDFromRequest(r),
	})
}

// Err writes the public form of err. The full error goes to the log only.
func Err(w http.ResponseWriter, r *http.Request, err error) {
	code, message := domain.Public(err)
	status := statusFromCode(code)

	if status >= http.StatusInternalServerError {
		logger.WithCtx(r.Context()).Error().Err(err).Str("code", string(code)).Msg("request failed")
	}
	Fail(w, r, status, code, message)
}

func statusFromCode(code domain.ErrCode) int {
	switch code {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// RequestIDFromRequest prefers the id set by the RequestID middleware.
func RequestIDFromRequest(r *http.Request) string {
	if id := appCtx.GetRequestID(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-Request-Id")
}
