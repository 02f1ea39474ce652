package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/segyhp/loan-ledger/internal/domain"

	"github.com/go-playground/validator/v10"
)

const (
	SignatureHeader = "X-Webhook-Signature"

	maxWebhookBody = 64 << 10
)

type pixWebhookRequest struct {
	CorrelationID string `json:"correlation_id" validate:"required"`
	Amount        string `json:"amount" validate:"required"`
	Status        string `json:"status" validate:"required"`
	Timestamp     string `json:"timestamp"`
}

type WebhookHandler struct {
	reconciler Reconciler
	secret     string
	validator  *validator.Validate
	logger     *slog.Logger
}

// NewWebhookHandler builds the payment network callback. An empty secret
// disables signature checks.
func NewWebhookHandler(reconciler Reconciler, secret string, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		reconciler: reconciler,
		secret:     secret,
		validator:  NewValidator(),
		logger:     discardIfNil(logger),
	}
}

// PixConfirmation handles POST /webhooks/pix. The body is always
// {"success": bool} and carries no diagnostics.
func (h *WebhookHandler) PixConfirmation(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeAck(w, http.StatusBadRequest, false)
		return
	}
	if h.secret != "" && !h.verifySignature(body, r.Header.Get(SignatureHeader)) {
		h.logger.Warn("rejecting webhook with invalid signature", "remote_addr", r.RemoteAddr)
		writeAck(w, http.StatusUnauthorized, false)
		return
	}

	var payload pixWebhookRequest
	if err := json.Unmarshal(body, &payload); err != nil {
		writeAck(w, http.StatusBadRequest, false)
		return
	}
	if err := h.validator.Struct(&payload); err != nil {
		h.logger.Warn("rejecting malformed webhook", "error", err)
		writeAck(w, http.StatusBadRequest, false)
		return
	}

	ok := h.reconciler.ConfirmPix(r.Context(), domain.PixConfirmation{
		CorrelationID: payload.CorrelationID,
		Amount:        payload.Amount,
		Status:        payload.Status,
		Timestamp:     payload.Timestamp,
	})
	writeAck(w, http.StatusOK, ok)
}

func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

func writeAck(w http.ResponseWriter, status int, success bool) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.PixConfirmationResponse{Success: success})
}
