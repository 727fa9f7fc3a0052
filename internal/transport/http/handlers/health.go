package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/baechuer/report-service/internal/metrics"
	"github.com/baechuer/report-service/internal/transport/http/response"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a plain ping method, such as the Redis client's, to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	db    Pinger
	cache Pinger
	now   func() time.Time
}

func NewHealthHandler(db Pinger, now func() time.Time) *HealthHandler {
	if now == nil {
		now = time.Now
	}
	return &HealthHandler{db: db, now: now}
}

// WithCache makes readiness depend on the report cache as well.
func (h *HealthHandler) WithCache(p Pinger) *HealthHandler {
	h.cache = p
	return h
}

func (h *HealthHandler) ping(ctx context.Context) bool {
	if h.db == nil {
		return false
	}
	return check(ctx, "db", h.db)
}

func check(ctx context.Context, name string, p Pinger) bool {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	ok := p.PingContext(ctx) == nil
	metrics.SetDependencyHealth(name, ok)
	return ok
}

// Health always answers 200 and reports the database state in the body.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	db := "unavailable"
	if h.ping(r.Context()) {
		db = "connected"
	}
	response.JSON(w, r, http.StatusOK, map[string]string{
		"status": "ok",
		"db":     db,
		"time":   h.now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz answers 503 when the database, or the cache if one is configured,
// does not answer a ping.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	if !h.ping(r.Context()) {
		response.JSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "failed": "db"})
		return
	}
	if h.cache != nil && !check(r.Context(), "cache", h.cache) {
		response.JSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "failed": "cache"})
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}
