package handler

import (
	"log/slog"
	"net/http"

	"github.com/segyhp/loan-ledger/internal/config"
	"github.com/segyhp/loan-ledger/internal/middleware"
	"github.com/segyhp/loan-ledger/pkg/response"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
)

type Handlers struct {
	Loans    *LoanHandler
	Payments *PaymentHandler
	Webhooks *WebhookHandler
	Health   *HealthHandler
}

// NewRouter mounts every route. rdb may be nil, in which case idempotency
// keys are ignored. CORS wraps the whole router so preflight requests are
// answered before route matching.
func NewRouter(h Handlers, cfg *config.Config, rdb *redis.Client, logger *slog.Logger) http.Handler {
	logger = discardIfNil(logger)
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware(logger))
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "route not found")
	})

	// Health check
	router.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", h.Health.Ready).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()

	// The payment network authenticates with the optional HMAC only.
	api.HandleFunc("/webhooks/pix", h.Webhooks.PixConfirmation).Methods(http.MethodPost)

	secured := api.NewRoute().Subrouter()
	secured.Use(middleware.AuthRequired(cfg.Auth))
	secured.Use(middleware.Idempotency(rdb, cfg.Idempotency.TTL, logger))

	secured.HandleFunc("/loans", h.Loans.CreateLoan).Methods(http.MethodPost)
	secured.HandleFunc("/loans", h.Loans.ListLoans).Methods(http.MethodGet)
	secured.HandleFunc("/loans/{loanId}", h.Loans.GetLoan).Methods(http.MethodGet)
	secured.HandleFunc("/loans/{loanId}/details", h.Loans.GetLoanDetails).Methods(http.MethodGet)
	secured.HandleFunc("/loans/{loanId}/daily-payment", h.Payments.GenerateDailyPayment).Methods(http.MethodPost)
	secured.HandleFunc("/loans/{loanId}/daily-payment", h.Payments.GetDailyPaymentStatus).Methods(http.MethodGet)
	secured.HandleFunc("/loans/{loanId}/payments", h.Payments.ListPayments).Methods(http.MethodGet)

	return response.CORSMiddleware(router)
}
