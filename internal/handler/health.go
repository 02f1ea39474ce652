package handler

import (
	"context"
	"net/http"
	"time"

	customError "github.com/segyhp/loan-ledger/pkg/errors"
	"github.com/segyhp/loan-ledger/pkg/response"

	"github.com/redis/go-redis/v9"
)

const checkOK = "ok"

// Pinger is satisfied by *sqlx.DB and *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db      Pinger
	redis   *redis.Client
	timeout time.Duration
}

// NewHealthHandler builds the liveness and readiness checks. A nil redis
// client is reported as disabled rather than failing readiness, since the
// cache is optional.
func NewHealthHandler(db Pinger, redis *redis.Client, timeout time.Duration) *HealthHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthHandler{
		db:      db,
		redis:   redis,
		timeout: timeout,
	}
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health performs a basic health check
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, HealthStatus{
		Status:    checkOK,
		Timestamp: time.Now().UTC(),
		Checks:    map[string]string{},
	})
}

// Ready checks database and redis connectivity
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    checkOK,
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]string),
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		status.Status = "error"
		status.Checks["database"] = "failed: " + err.Error()
	} else {
		status.Checks["database"] = checkOK
	}

	switch {
	case h.redis == nil:
		status.Checks["redis"] = "disabled"
	case h.redis.Ping(ctx).Err() != nil:
		status.Status = "error"
		status.Checks["redis"] = "unreachable"
	default:
		status.Checks["redis"] = checkOK
	}

	if status.Status != checkOK {
		response.ErrorWithDetails(w, http.StatusServiceUnavailable, customError.ErrCodeServiceUnavailable, "service not ready", status.Checks)
		return
	}

	response.Success(w, status)
}
