package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/segyhp/loan-ledger/internal/cache"
	"github.com/segyhp/loan-ledger/internal/domain"
	"github.com/segyhp/loan-ledger/internal/repository"
	customError "github.com/segyhp/loan-ledger/pkg/errors"
	"github.com/segyhp/loan-ledger/pkg/utils"

	"github.com/shopspring/decimal"
)

var errLoanMissing = errors.New("loan referenced by payment request does not exist")

type ReconciliationService struct {
	DailyPaymentRepo repository.DailyPaymentRepository
	uow              repository.UnitOfWork
	statusCache      cache.StatusCache
	settings         Settings
	clock            utils.Clock
	logger           *slog.Logger
}

// NewReconciliationService wires the confirmation callback. statusCache may be nil.
func NewReconciliationService(
	dailyPaymentRepo repository.DailyPaymentRepository,
	uow repository.UnitOfWork,
	statusCache cache.StatusCache,
	settings Settings,
	clock utils.Clock,
	logger *slog.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		DailyPaymentRepo: dailyPaymentRepo,
		uow:              uow,
		statusCache:      statusCache,
		settings:         settings,
		clock:            clock,
		logger:           orDiscard(logger),
	}
}

// ConfirmPix applies a payment network notification to the ledger at most
// once per correlation id. The result is the acknowledgement sent back to
// the network; failures are logged here and never described to the caller.
func (s *ReconciliationService) ConfirmPix(ctx context.Context, n domain.PixConfirmation) bool {
	log := s.logger.With("correlation_id", n.CorrelationID)

	if n.Status != domain.PixStatusConfirmed {
		log.Info("ignoring notification with non-confirmed status", "status", n.Status)
		return true
	}

	request, err := s.DailyPaymentRepo.GetByCorrelationID(ctx, n.CorrelationID)
	if err != nil {
		log.Error("failed to load payment request", "error", err)
		return false
	}
	if request == nil {
		log.Warn("payment request not found for correlation id")
		return true
	}
	if request.IsConfirmed() {
		log.Info("payment already confirmed")
		return true
	}

	amount, err := parsePaymentAmount(n.Amount)
	if err != nil {
		log.Warn("rejecting notification", "loan_id", request.LoanID, "error", err)
		return false
	}
	if request.Status == domain.DailyStatusExpired {
		log.Warn("accepting late confirmation of expired request", "loan_id", request.LoanID, "expires_at", request.ExpiresAt)
	}

	attempts := s.settings.ReconcileAttempts
	if attempts <= 0 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		applied, loan, err := s.apply(ctx, request, amount)
		switch {
		case errors.Is(err, repository.ErrConcurrentUpdate):
			log.Warn("loan changed during reconciliation, retrying", "loan_id", request.LoanID, "attempt", attempt)
			continue
		case errors.Is(err, errLoanMissing):
			log.Error("payment request points at a missing loan", "loan_id", request.LoanID)
			return false
		case err != nil:
			log.Error("failed to reconcile payment", "loan_id", request.LoanID, "error", err)
			return false
		}

		if !applied {
			log.Info("payment already confirmed by a concurrent delivery")
			return true
		}

		invalidateStatus(ctx, s.statusCache, s.logger, request.LoanID, request.PaymentDate)
		log.Info("payment confirmed",
			"loan_id", loan.ID,
			"amount", amount.StringFixed(2),
			"paid_amount", loan.PaidAmount.StringFixed(2),
			"remaining_amount", loan.RemainingAmount.StringFixed(2),
			"loan_status", loan.Status,
		)
		return true
	}

	log.Error("giving up on reconciliation after concurrent updates", "loan_id", request.LoanID, "attempts", attempts)
	return false
}

// parsePaymentAmount reads a network amount as money. Values that round to
// zero or below are rejected.
func parsePaymentAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, customError.WrapInvalidPaymentAmount(raw)
	}
	amount = utils.RoundMoney(amount)
	if !amount.IsPositive() {
		return decimal.Zero, customError.WrapInvalidPaymentAmount(raw)
	}
	return amount, nil
}

// apply claims the request and moves the money inside one transaction.
// applied is false when another delivery claimed the request first.
func (s *ReconciliationService) apply(
	ctx context.Context,
	request *domain.DailyPaymentRequest,
	amount decimal.Decimal,
) (applied bool, loan *domain.Loan, err error) {
	now := s.clock.Now().UTC()

	err = s.uow.WithinTx(ctx, func(r repository.Repos) error {
		claimed, err := r.DailyPayments.MarkConfirmed(ctx, request.ID, request.CorrelationID, now)
		if err != nil {
			return err
		}
		if !claimed {
			return nil
		}

		loan, err = r.Loans.GetByID(ctx, request.LoanID)
		if err != nil {
			return err
		}
		if loan == nil {
			return errLoanMissing
		}

		loan.ApplyPayment(amount)
		loan.UpdatedAt = now
		if err := r.Loans.UpdateBalance(ctx, loan); err != nil {
			return err
		}

		if err := r.Payments.Create(ctx, &domain.PaymentTransaction{
			LoanID:        loan.ID,
			OwnerID:       loan.OwnerID,
			Amount:        amount,
			CorrelationID: request.CorrelationID,
			ExternalToken: request.ExternalToken,
			Status:        domain.PaymentStatusConfirmed,
			ConfirmedAt:   now,
			CreatedAt:     now,
		}); err != nil {
			return err
		}

		applied = true
		return nil
	})
	if err != nil {
		return false, nil, err
	}
	return applied, loan, nil
}
