package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segyhp/loan-ledger/internal/cache"
	"github.com/segyhp/loan-ledger/internal/domain"
	"github.com/segyhp/loan-ledger/internal/qrcode"
	"github.com/segyhp/loan-ledger/internal/repository"
	customError "github.com/segyhp/loan-ledger/pkg/errors"
	"github.com/segyhp/loan-ledger/pkg/utils"

	"github.com/google/uuid"
)

type PaymentService struct {
	LoanRepo         repository.LoanRepository
	DailyPaymentRepo repository.DailyPaymentRepository
	PaymentRepo      repository.PaymentRepository
	renderer         qrcode.Renderer
	statusCache      cache.StatusCache
	settings         Settings
	clock            utils.Clock
	logger           *slog.Logger
}

// NewPaymentService wires the daily payment flow. statusCache may be nil.
func NewPaymentService(
	repos repository.Repos,
	renderer qrcode.Renderer,
	statusCache cache.StatusCache,
	settings Settings,
	clock utils.Clock,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		LoanRepo:         repos.Loans,
		DailyPaymentRepo: repos.DailyPayments,
		PaymentRepo:      repos.Payments,
		renderer:         renderer,
		statusCache:      statusCache,
		settings:         settings,
		clock:            clock,
		logger:           orDiscard(logger),
	}
}

// GenerateDaily issues (or re-issues) today's payment request for a loan.
// A day that is already confirmed cannot be re-issued.
func (s *PaymentService) GenerateDaily(ctx context.Context, p domain.Principal, loanID int64) (*domain.DailyPaymentRequest, error) {
	loan, err := authorizeLoan(ctx, s.LoanRepo, p, loanID, s.settings.ElevatedRole)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanStatusActive {
		return nil, customError.WrapLoanNotActive(loanID)
	}
	if !loan.RemainingAmount.IsPositive() {
		return nil, customError.WrapLoanPaidOff(loanID)
	}

	now := s.clock.Now().UTC()
	today := utils.CalendarDay(now, s.settings.Location)

	existing, err := s.DailyPaymentRepo.GetByLoanAndDate(ctx, loanID, today)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if existing != nil && existing.IsConfirmed() {
		return nil, customError.WrapAlreadyConfirmed(loanID, utils.DayKey(today))
	}

	token := newExternalToken(loanID, today)
	code, err := s.renderer.Render(token)
	if err != nil {
		return nil, customError.WrapCodeRenderError(err)
	}

	request := &domain.DailyPaymentRequest{
		LoanID:         loanID,
		PaymentDate:    today,
		ExternalToken:  token,
		RenderableCode: code,
		CorrelationID:  newCorrelationID(loanID),
		Status:         domain.DailyStatusPending,
		ExpiresAt:      now.Add(s.settings.RequestTTL),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// The upsert refuses to overwrite a row confirmed since the lookup above.
	if err := s.DailyPaymentRepo.Upsert(ctx, request); err != nil {
		if errors.Is(err, repository.ErrRequestConfirmed) {
			return nil, customError.WrapAlreadyConfirmed(loanID, utils.DayKey(today))
		}
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateStatus(ctx, loanID, today)

	s.logger.Info("daily payment request issued",
		"loan_id", loanID,
		"payment_date", utils.DayKey(today),
		"correlation_id", request.CorrelationID,
		"regenerated", existing != nil,
	)
	return request, nil
}

// GetDailyStatus returns today's request for the loan, or nil when none has
// been generated. It never writes to the ledger.
func (s *PaymentService) GetDailyStatus(ctx context.Context, p domain.Principal, loanID int64) (*domain.DailyPaymentRequest, error) {
	if _, err := authorizeLoan(ctx, s.LoanRepo, p, loanID, s.settings.ElevatedRole); err != nil {
		return nil, err
	}

	today := utils.CalendarDay(s.clock.Now(), s.settings.Location)

	// fill stays false when the cache is absent or failing.
	var (
		generation int64
		fill       bool
	)
	if s.statusCache != nil {
		cached, found, err := s.statusCache.Get(ctx, loanID, today)
		switch {
		case err != nil:
			s.logger.Warn("status cache read failed", "loan_id", loanID, "error", err)
		case found:
			return cached, nil
		default:
			generation, err = s.statusCache.Generation(ctx, loanID, today)
			if err != nil {
				s.logger.Warn("status cache generation read failed", "loan_id", loanID, "error", err)
			}
			fill = err == nil
		}
	}

	request, err := s.DailyPaymentRepo.GetByLoanAndDate(ctx, loanID, today)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if fill {
		if err := s.statusCache.Set(ctx, loanID, today, generation, request); err != nil {
			s.logger.Warn("status cache write failed", "loan_id", loanID, "error", err)
		}
	}
	return request, nil
}

// History lists the confirmed payments of a loan, newest first.
func (s *PaymentService) History(ctx context.Context, p domain.Principal, loanID int64) ([]*domain.PaymentTransaction, error) {
	if _, err := authorizeLoan(ctx, s.LoanRepo, p, loanID, s.settings.ElevatedRole); err != nil {
		return nil, err
	}

	payments, err := s.PaymentRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return payments, nil
}

// ExpireStale marks pending requests past their expiry as expired.
func (s *PaymentService) ExpireStale(ctx context.Context) (int64, error) {
	n, err := s.DailyPaymentRepo.ExpireStale(ctx, s.clock.Now().UTC())
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}
	if n > 0 {
		s.logger.Info("expired stale daily payment requests", "count", n)
	}
	return n, nil
}

func (s *PaymentService) invalidateStatus(ctx context.Context, loanID int64, day time.Time) {
	invalidateStatus(ctx, s.statusCache, s.logger, loanID, day)
}

func invalidateStatus(ctx context.Context, c cache.StatusCache, logger *slog.Logger, loanID int64, day time.Time) {
	if c == nil {
		return
	}
	if err := c.Invalidate(ctx, loanID, day); err != nil {
		logger.Warn("status cache invalidation failed", "loan_id", loanID, "error", err)
	}
}

// newExternalToken builds daily-loan-<loanId>-<yyyymmdd>-<nonce>. The nonce
// makes every generation distinct.
func newExternalToken(loanID int64, day time.Time) string {
	nonce := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("daily-loan-%d-%s-%s", loanID, utils.CompactDay(day), nonce)
}

func newCorrelationID(loanID int64) string {
	return fmt.Sprintf("TXN-%d-%s", loanID, uuid.NewString())
}
