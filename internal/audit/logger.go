package audit

import (
	"context"

	"github.com/baechuer/report-service/internal/domain"
	pkgctx "github.com/baechuer/report-service/internal/pkg/context"
	"github.com/rs/zerolog"
)

// Logger provides structured audit logging for report access
type Logger struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// ReportViewed logs a successfully served report
func (l *Logger) ReportViewed(ctx context.Context, id domain.ReportID, rows int, cached bool) {
	l.log.Info().
		Str("action", "report_viewed").
		Str("report", id.String()).
		Int("rows", rows).
		Bool("cached", cached).
		Str("subject", pkgctx.GetSubject(ctx)).
		Str("request_id", pkgctx.GetRequestID(ctx)).
		Msg("report viewed")
}

// ReportFailed logs a report that could not be produced. err carries the
// store detail and stays in the log.
func (l *Logger) ReportFailed(ctx context.Context, id domain.ReportID, err error) {
	l.log.Warn().
		Str("action", "report_failed").
		Str("report", id.String()).
		Err(err).
		Str("subject", pkgctx.GetSubject(ctx)).
		Str("request_id", pkgctx.GetRequestID(ctx)).
		Msg("report failed")
}

// EventDropped logs an access event that could not be published
func (l *Logger) EventDropped(ctx context.Context, routingKey string, err error) {
	l.log.Error().
		Str("action", "event_dropped").
		Str("routing_key", routingKey).
		Err(err).
		Str("request_id", pkgctx.GetRequestID(ctx)).
		Msg("access event not published")
}
