package handler

import (
	"log/slog"
	"net/http"

	customError "github.com/segyhp/loan-ledger/pkg/errors"
	"github.com/segyhp/loan-ledger/pkg/response"
)

type PaymentHandler struct {
	service PaymentService
	logger  *slog.Logger
}

func NewPaymentHandler(service PaymentService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{service: service, logger: discardIfNil(logger)}
}

// GenerateDailyPayment handles POST /loans/{loanId}/daily-payment
func (h *PaymentHandler) GenerateDailyPayment(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrReject(w, r)
	if !ok {
		return
	}
	loanID, ok := loanIDFromPath(r)
	if !ok {
		response.BadRequest(w, customError.ErrCodeValidation, "loanId must be a positive integer")
		return
	}

	request, err := h.service.GenerateDaily(r.Context(), p, loanID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Created(w, request)
}

// GetDailyPaymentStatus handles GET /loans/{loanId}/daily-payment. data is
// null until today's request has been generated.
func (h *PaymentHandler) GetDailyPaymentStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrReject(w, r)
	if !ok {
		return
	}
	loanID, ok := loanIDFromPath(r)
	if !ok {
		response.BadRequest(w, customError.ErrCodeValidation, "loanId must be a positive integer")
		return
	}

	request, err := h.service.GetDailyStatus(r.Context(), p, loanID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, request)
}

// ListPayments handles GET /loans/{loanId}/payments
func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrReject(w, r)
	if !ok {
		return
	}
	loanID, ok := loanIDFromPath(r)
	if !ok {
		response.BadRequest(w, customError.ErrCodeValidation, "loanId must be a positive integer")
		return
	}

	payments, err := h.service.History(r.Context(), p, loanID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, payments)
}
