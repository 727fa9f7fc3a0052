package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/baechuer/report-service/internal/config"
	"github.com/baechuer/report-service/internal/domain"
	"github.com/baechuer/report-service/internal/metrics"
	"github.com/baechuer/report-service/internal/security"
	"github.com/baechuer/report-service/internal/transport/http/handlers"
	mw "github.com/baechuer/report-service/internal/transport/http/middleware"
)

const ReportsPath = "/api/reports"

type Deps struct {
	Reports *handlers.ReportsHandler
	Health  *handlers.HealthHandler
	// Verifier guards the report routes when set.
	Verifier security.TokenVerifier
	Config   *config.Config
}

func New(d Deps) http.Handler {
	cfg := d.Config
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(middleware.RealIP)
	r.Use(mw.AccessLog)
	r.Use(mw.Metrics)
	// inside the access log so a recovered panic is still logged as a 500
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", mw.HeaderXRequestID},
		ExposedHeaders: []string{mw.HeaderXRequestID},
		MaxAge:         300,
	}))

	r.Get("/healthz", d.Health.Healthz)
	r.Get("/readyz", d.Health.Readyz)
	r.Handle("/metrics", metrics.Handler())
	r.Get("/api/health", d.Health.Health)

	r.Route(ReportsPath, func(r chi.Router) {
		if cfg.RLEnabled {
			r.Use(httprate.LimitByIP(cfg.RLLimit, cfg.RLWindow))
		}
		if d.Verifier != nil {
			r.Use(mw.RequireBearer(d.Verifier))
		}

		r.Get("/", d.Reports.Catalogue)
		for _, info := range domain.Reports() {
			r.Get("/"+info.ID.String(), d.Reports.Handler(info.ID))
		}
		r.NotFound(d.Reports.UnknownReport)
	})

	return r
}
