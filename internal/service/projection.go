package service

import (
	"github.com/segyhp/loan-ledger/internal/domain"
	customError "github.com/segyhp/loan-ledger/pkg/errors"
	"github.com/segyhp/loan-ledger/pkg/utils"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// BuildLoanDetails derives the progress figures shown for a loan.
// Non-positive total or daily amounts cannot come out of loan creation, so
// they are reported as an internal failure.
func BuildLoanDetails(loan *domain.Loan) (*domain.LoanDetails, error) {
	if !loan.TotalAmount.IsPositive() {
		return nil, customError.WrapInvalidLoanState(loan.ID, "total amount is not positive")
	}
	if !loan.DailyAmount.IsPositive() {
		return nil, customError.WrapInvalidLoanState(loan.ID, "daily amount is not positive")
	}

	daysElapsed, err := utils.FloorDiv(loan.PaidAmount, loan.DailyAmount)
	if err != nil {
		return nil, customError.WrapInvalidLoanState(loan.ID, err.Error())
	}
	daysRemaining, err := utils.CeilDiv(loan.RemainingAmount, loan.DailyAmount)
	if err != nil {
		return nil, customError.WrapInvalidLoanState(loan.ID, err.Error())
	}

	return &domain.LoanDetails{
		Loan:               loan,
		DaysElapsed:        daysElapsed,
		DaysRemaining:      daysRemaining,
		ProgressPercentage: utils.RoundMoney(loan.PaidAmount.Mul(hundred).Div(loan.TotalAmount)),
	}, nil
}
