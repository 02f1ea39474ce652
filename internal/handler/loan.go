package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/segyhp/loan-ledger/internal/domain"
	customError "github.com/segyhp/loan-ledger/pkg/errors"
	"github.com/segyhp/loan-ledger/pkg/response"

	"github.com/go-playground/validator/v10"
)

type LoanHandler struct {
	service   LoanService
	validator *validator.Validate
	logger    *slog.Logger
}

func NewLoanHandler(service LoanService, logger *slog.Logger) *LoanHandler {
	return &LoanHandler{
		service:   service,
		validator: NewValidator(),
		logger:    discardIfNil(logger),
	}
}

// CreateLoan handles POST /loans
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrReject(w, r)
	if !ok {
		return
	}

	var request domain.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, customError.ErrCodeValidation, "invalid JSON body")
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.ErrorWithDetails(w, http.StatusBadRequest, customError.ErrCodeValidation, "request validation failed", ToFieldErrors(err))
		return
	}

	loan, err := h.service.Create(r.Context(), p, &request)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Created(w, loan)
}

// ListLoans handles GET /loans
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrReject(w, r)
	if !ok {
		return
	}

	loans, err := h.service.List(r.Context(), p)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, loans)
}

// GetLoan handles GET /loans/{loanId}
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrReject(w, r)
	if !ok {
		return
	}
	loanID, ok := loanIDFromPath(r)
	if !ok {
		response.BadRequest(w, customError.ErrCodeValidation, "loanId must be a positive integer")
		return
	}

	loan, err := h.service.Get(r.Context(), p, loanID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, loan)
}

// GetLoanDetails handles GET /loans/{loanId}/details
func (h *LoanHandler) GetLoanDetails(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrReject(w, r)
	if !ok {
		return
	}
	loanID, ok := loanIDFromPath(r)
	if !ok {
		response.BadRequest(w, customError.ErrCodeValidation, "loanId must be a positive integer")
		return
	}

	details, err := h.service.GetDetails(r.Context(), p, loanID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, details)
}
