package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/segyhp/loan-ledger/internal/domain"
	"github.com/segyhp/loan-ledger/internal/repository"
	customError "github.com/segyhp/loan-ledger/pkg/errors"
	"github.com/segyhp/loan-ledger/pkg/utils"

	"github.com/shopspring/decimal"
)

type LoanService struct {
	LoanRepo repository.LoanRepository
	settings Settings
	clock    utils.Clock
	logger   *slog.Logger
}

func NewLoanService(
	loanRepo repository.LoanRepository,
	settings Settings,
	clock utils.Clock,
	logger *slog.Logger,
) *LoanService {
	return &LoanService{
		LoanRepo: loanRepo,
		settings: settings,
		clock:    clock,
		logger:   orDiscard(logger),
	}
}

// Create opens a new active loan. Only the elevated role may do this and
// nothing is written when the amounts are rejected.
func (s *LoanService) Create(ctx context.Context, p domain.Principal, request *domain.CreateLoanRequest) (*domain.Loan, error) {
	if !p.HasRole(s.settings.ElevatedRole) {
		return nil, customError.WrapElevatedRoleRequired("create loans")
	}
	if request.OwnerID <= 0 {
		return nil, customError.WrapValidation(fmt.Errorf("owner_id must be greater than zero"))
	}

	total, err := parsePositiveMoney(request.TotalAmount)
	if err != nil {
		return nil, customError.WrapInvalidLoanAmount("total_amount", request.TotalAmount)
	}
	daily, err := parsePositiveMoney(request.DailyAmount)
	if err != nil {
		return nil, customError.WrapInvalidLoanAmount("daily_amount", request.DailyAmount)
	}
	if daily.GreaterThan(total) {
		return nil, customError.WrapDailyExceedsTotal(daily.StringFixed(2), total.StringFixed(2))
	}

	now := s.clock.Now().UTC()
	loan := &domain.Loan{
		OwnerID:         request.OwnerID,
		TotalAmount:     total,
		DailyAmount:     daily,
		PaidAmount:      decimal.Zero,
		RemainingAmount: total,
		Status:          domain.LoanStatusActive,
		StartDate:       now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.LoanRepo.Create(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.Info("loan created",
		"loan_id", loan.ID,
		"owner_id", loan.OwnerID,
		"total_amount", loan.TotalAmount.StringFixed(2),
		"daily_amount", loan.DailyAmount.StringFixed(2),
		"created_by", p.UserID,
	)
	return loan, nil
}

// List returns the caller's own loans, newest first.
func (s *LoanService) List(ctx context.Context, p domain.Principal) ([]*domain.Loan, error) {
	loans, err := s.LoanRepo.ListByOwner(ctx, p.UserID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return loans, nil
}

func (s *LoanService) Get(ctx context.Context, p domain.Principal, loanID int64) (*domain.Loan, error) {
	return authorizeLoan(ctx, s.LoanRepo, p, loanID, s.settings.ElevatedRole)
}

func (s *LoanService) GetDetails(ctx context.Context, p domain.Principal, loanID int64) (*domain.LoanDetails, error) {
	loan, err := authorizeLoan(ctx, s.LoanRepo, p, loanID, s.settings.ElevatedRole)
	if err != nil {
		return nil, err
	}
	return BuildLoanDetails(loan)
}

func parsePositiveMoney(raw string) (decimal.Decimal, error) {
	amount, err := utils.ParseMoney(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if !amount.IsPositive() {
		return decimal.Zero, customError.ErrInvalidLoanAmount
	}
	return amount, nil
}
