package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/segyhp/loan-ledger/internal/auth"
	"github.com/segyhp/loan-ledger/internal/domain"
	customError "github.com/segyhp/loan-ledger/pkg/errors"
	"github.com/segyhp/loan-ledger/pkg/response"

	"github.com/gorilla/mux"
)

// LoanService is the part of service.LoanService the HTTP layer uses.
type LoanService interface {
	Create(ctx context.Context, p domain.Principal, request *domain.CreateLoanRequest) (*domain.Loan, error)
	List(ctx context.Context, p domain.Principal) ([]*domain.Loan, error)
	Get(ctx context.Context, p domain.Principal, loanID int64) (*domain.Loan, error)
	GetDetails(ctx context.Context, p domain.Principal, loanID int64) (*domain.LoanDetails, error)
}

type PaymentService interface {
	GenerateDaily(ctx context.Context, p domain.Principal, loanID int64) (*domain.DailyPaymentRequest, error)
	GetDailyStatus(ctx context.Context, p domain.Principal, loanID int64) (*domain.DailyPaymentRequest, error)
	History(ctx context.Context, p domain.Principal, loanID int64) ([]*domain.PaymentTransaction, error)
}

type Reconciler interface {
	ConfirmPix(ctx context.Context, n domain.PixConfirmation) bool
}

// loanIDFromPath reads the {loanId} route variable.
func loanIDFromPath(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["loanId"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func principalOrReject(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
	}
	return p, ok
}

func discardIfNil(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

// writeError renders a service error, logging it first when it is internal.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if customError.KindOf(err) == customError.KindInternal {
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	response.FromError(w, err)
}
