package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	LoanStatusActive  = "active"
	LoanStatusPaidOff = "paid_off"
	LoanStatusOverdue = "overdue"
)

// Loan represents a loan entity
type Loan struct {
	ID              int64           `json:"id" db:"id"`
	OwnerID         int64           `json:"owner_id" db:"owner_id"`
	TotalAmount     decimal.Decimal `json:"total_amount" db:"total_amount"`
	DailyAmount     decimal.Decimal `json:"daily_amount" db:"daily_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount" db:"remaining_amount"`
	Status          string          `json:"status" db:"status"`
	StartDate       time.Time       `json:"start_date" db:"start_date"`
	Version         int64           `json:"-" db:"version"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// IsOwnedBy reports whether userID owns the loan.
func (l *Loan) IsOwnedBy(userID int64) bool {
	return l.OwnerID == userID
}

// ApplyPayment credits amount to the running balances. Remaining never goes
// below zero and the status only moves to paid_off, never back.
func (l *Loan) ApplyPayment(amount decimal.Decimal) {
	l.PaidAmount = l.PaidAmount.Add(amount)

	remaining := l.RemainingAmount.Sub(amount)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	l.RemainingAmount = remaining

	if !l.RemainingAmount.IsPositive() {
		l.Status = LoanStatusPaidOff
	}
}

// DTOs for requests and responses

// CreateLoanRequest carries amounts as decimal strings, parsed by the service.
type CreateLoanRequest struct {
	OwnerID     int64  `json:"owner_id" validate:"required,gt=0"`
	TotalAmount string `json:"total_amount" validate:"required,money,decimal_gt0"`
	DailyAmount string `json:"daily_amount" validate:"required,money,decimal_gt0"`
}

// LoanDetails is the read-only projection shown on the loan page.
type LoanDetails struct {
	*Loan
	DaysElapsed        int64           `json:"days_elapsed"`
	DaysRemaining      int64           `json:"days_remaining"`
	ProgressPercentage decimal.Decimal `json:"progress_percentage"`
}
