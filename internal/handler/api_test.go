package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/segyhp/loan-ledger/internal/auth"
	"github.com/segyhp/loan-ledger/internal/cache"
	"github.com/segyhp/loan-ledger/internal/config"
	"github.com/segyhp/loan-ledger/internal/domain"
	"github.com/segyhp/loan-ledger/internal/handler"
	"github.com/segyhp/loan-ledger/internal/qrcode"
	"github.com/segyhp/loan-ledger/internal/repository"
	"github.com/segyhp/loan-ledger/internal/service"
	"github.com/segyhp/loan-ledger/internal/testutil/sqlitedb"
	customError "github.com/segyhp/loan-ledger/pkg/errors"
	"github.com/segyhp/loan-ledger/pkg/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newAPIServer wires the real services behind the router, backed by SQLite
// and an in-process Redis.
func newAPIServer(t *testing.T, webhookSecret string) (*httptest.Server, *config.Config) {
	t.Helper()

	db := sqlitedb.Open(t)
	mr := miniredis.RunT(t)
	rdb, err := cache.OpenRedis(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		Auth:        config.AuthConfig{JWTSecret: "api-secret", Issuer: "loan-ledger", TokenTTL: time.Hour},
		Idempotency: config.IdempotencyConfig{TTL: time.Hour},
		Webhook:     config.WebhookConfig{Secret: webhookSecret},
	}

	clock := utils.FixedClock{At: time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)}
	settings := service.DefaultSettings()
	statusCache := cache.NewStatusCache(rdb, 5*time.Second)
	repos := repository.NewRepos(db)

	loans := service.NewLoanService(repos.Loans, settings, clock, quietLog)
	payments := service.NewPaymentService(repos, qrcode.NewPNGRenderer(64), statusCache, settings, clock, quietLog)
	reconciler := service.NewReconciliationService(repos.DailyPayments, repository.NewUnitOfWork(db), statusCache, settings, clock, quietLog)

	router := handler.NewRouter(handler.Handlers{
		Loans:    handler.NewLoanHandler(loans, quietLog),
		Payments: handler.NewPaymentHandler(payments, quietLog),
		Webhooks: handler.NewWebhookHandler(reconciler, webhookSecret, quietLog),
		Health:   handler.NewHealthHandler(db, rdb, time.Second),
	}, cfg, rdb, quietLog)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, cfg
}

type apiClient struct {
	t      *testing.T
	base   string
	bearer string
}

func (c apiClient) call(method, path string, body interface{}, out interface{}) (int, envelope) {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.bearer != "" {
		req.Header.Set("Authorization", c.bearer)
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer res.Body.Close()

	var env envelope
	require.NoError(c.t, json.NewDecoder(res.Body).Decode(&env))
	if out != nil && len(env.Data) > 0 {
		require.NoError(c.t, json.Unmarshal(env.Data, out))
	}
	return res.StatusCode, env
}

func clientFor(t *testing.T, server *httptest.Server, cfg *config.Config, p domain.Principal) apiClient {
	t.Helper()
	token, err := auth.GenerateAccessToken(cfg.Auth, p)
	require.NoError(t, err)
	return apiClient{t: t, base: server.URL + "/api/v1", bearer: "Bearer " + token}
}

func postWebhook(t *testing.T, server *httptest.Server, payload domain.PixConfirmation) (int, bool) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	res, err := http.Post(server.URL+"/api/v1/webhooks/pix", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer res.Body.Close()

	var ack domain.PixConfirmationResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&ack))
	return res.StatusCode, ack.Success
}

func TestAPI_LoanLifecycle(t *testing.T) {
	server, cfg := newAPIServer(t, "")
	adminClient := clientFor(t, server, cfg, admin)
	ownerClient := clientFor(t, server, cfg, owner)
	strangerClient := clientFor(t, server, cfg, domain.Principal{UserID: 99, Role: "user"})

	// An ordinary user cannot issue loans.
	status, env := ownerClient.call(http.MethodPost, "/loans", domain.CreateLoanRequest{OwnerID: owner.UserID, TotalAmount: "100.00", DailyAmount: "50.00"}, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, customError.ErrCodeForbidden, env.Error)

	var loan domain.Loan
	status, _ = adminClient.call(http.MethodPost, "/loans", domain.CreateLoanRequest{OwnerID: owner.UserID, TotalAmount: "100.00", DailyAmount: "50.00"}, &loan)
	require.Equal(t, http.StatusCreated, status)
	require.NotZero(t, loan.ID)
	loanPath := "/loans/" + decimal.NewFromInt(loan.ID).String()

	var before *domain.DailyPaymentRequest
	status, _ = ownerClient.call(http.MethodGet, loanPath+"/daily-payment", nil, &before)
	assert.Equal(t, http.StatusOK, status)
	assert.Nil(t, before)

	status, _ = strangerClient.call(http.MethodPost, loanPath+"/daily-payment", nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	var request domain.DailyPaymentRequest
	status, _ = ownerClient.call(http.MethodPost, loanPath+"/daily-payment", nil, &request)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, domain.DailyStatusPending, request.Status)
	assert.Contains(t, request.RenderableCode, "data:image/png;base64,")

	code, ok := postWebhook(t, server, domain.PixConfirmation{CorrelationID: request.CorrelationID, Amount: "50.00", Status: "confirmed"})
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, ok)

	// Redelivery is acknowledged without moving money twice.
	_, ok = postWebhook(t, server, domain.PixConfirmation{CorrelationID: request.CorrelationID, Amount: "50.00", Status: "confirmed"})
	assert.True(t, ok)

	var details domain.LoanDetails
	status, _ = ownerClient.call(http.MethodGet, loanPath+"/details", nil, &details)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, details.PaidAmount.Equal(decimal.NewFromInt(50)))
	assert.True(t, details.RemainingAmount.Equal(decimal.NewFromInt(50)))
	assert.True(t, details.ProgressPercentage.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, int64(1), details.DaysRemaining)

	var history []domain.PaymentTransaction
	status, _ = ownerClient.call(http.MethodGet, loanPath+"/payments", nil, &history)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, history, 1)
	assert.Equal(t, request.CorrelationID, history[0].CorrelationID)

	var after domain.DailyPaymentRequest
	_, _ = ownerClient.call(http.MethodGet, loanPath+"/daily-payment", nil, &after)
	assert.Equal(t, domain.DailyStatusConfirmed, after.Status)

	status, env = ownerClient.call(http.MethodPost, loanPath+"/daily-payment", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, customError.ErrCodeAlreadyConfirmed, env.Error)

	var mine []domain.Loan
	status, _ = ownerClient.call(http.MethodGet, "/loans", nil, &mine)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, mine, 1)

	var theirs []domain.Loan
	_, _ = strangerClient.call(http.MethodGet, "/loans", nil, &theirs)
	assert.Empty(t, theirs)
}

func TestAPI_WebhookEdgeCases(t *testing.T) {
	server, cfg := newAPIServer(t, "")
	adminClient := clientFor(t, server, cfg, admin)
	ownerClient := clientFor(t, server, cfg, owner)

	var loan domain.Loan
	status, _ := adminClient.call(http.MethodPost, "/loans", domain.CreateLoanRequest{OwnerID: owner.UserID, TotalAmount: "100.00", DailyAmount: "60.00"}, &loan)
	require.Equal(t, http.StatusCreated, status)
	loanPath := "/loans/" + decimal.NewFromInt(loan.ID).String()

	var request domain.DailyPaymentRequest
	status, _ = ownerClient.call(http.MethodPost, loanPath+"/daily-payment", nil, &request)
	require.Equal(t, http.StatusCreated, status)

	_, ok := postWebhook(t, server, domain.PixConfirmation{CorrelationID: "TXN-unknown", Amount: "60.00", Status: "confirmed"})
	assert.True(t, ok, "unknown correlation ids are acknowledged")

	_, ok = postWebhook(t, server, domain.PixConfirmation{CorrelationID: request.CorrelationID, Amount: "60.00", Status: "failed"})
	assert.True(t, ok, "non confirmed outcomes are acknowledged and ignored")

	_, ok = postWebhook(t, server, domain.PixConfirmation{CorrelationID: request.CorrelationID, Amount: "0", Status: "confirmed"})
	assert.False(t, ok)

	// Overpayment credits the full amount and clamps the remaining balance.
	_, ok = postWebhook(t, server, domain.PixConfirmation{CorrelationID: request.CorrelationID, Amount: "150.00", Status: "confirmed"})
	assert.True(t, ok)

	var got domain.Loan
	_, _ = ownerClient.call(http.MethodGet, loanPath, nil, &got)
	assert.Equal(t, domain.LoanStatusPaidOff, got.Status)
	assert.True(t, got.PaidAmount.Equal(decimal.NewFromInt(150)))
	assert.True(t, got.RemainingAmount.IsZero())
}
