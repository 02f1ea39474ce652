package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newLoan(total, daily, paid, remaining string, status string) *Loan {
	return &Loan{
		ID:              1,
		OwnerID:         10,
		TotalAmount:     decimal.RequireFromString(total),
		DailyAmount:     decimal.RequireFromString(daily),
		PaidAmount:      decimal.RequireFromString(paid),
		RemainingAmount: decimal.RequireFromString(remaining),
		Status:          status,
	}
}

func TestLoan_ApplyPayment(t *testing.T) {
	tests := []struct {
		name              string
		loan              *Loan
		amount            string
		expectedPaid      string
		expectedRemaining string
		expectedStatus    string
	}{
		{
			name:              "regular installment keeps loan active",
			loan:              newLoan("1000", "50", "0", "1000", LoanStatusActive),
			amount:            "50.00",
			expectedPaid:      "50",
			expectedRemaining: "950",
			expectedStatus:    LoanStatusActive,
		},
		{
			name:              "exact final installment pays off",
			loan:              newLoan("1000", "50", "950", "50", LoanStatusActive),
			amount:            "50",
			expectedPaid:      "1000",
			expectedRemaining: "0",
			expectedStatus:    LoanStatusPaidOff,
		},
		{
			name:              "overpayment clamps remaining at zero",
			loan:              newLoan("100", "50", "80", "20", LoanStatusActive),
			amount:            "50",
			expectedPaid:      "130",
			expectedRemaining: "0",
			expectedStatus:    LoanStatusPaidOff,
		},
		{
			name:              "overdue loan stays overdue while balance remains",
			loan:              newLoan("1000", "50", "100", "900", LoanStatusOverdue),
			amount:            "50",
			expectedPaid:      "150",
			expectedRemaining: "850",
			expectedStatus:    LoanStatusOverdue,
		},
		{
			name:              "paid off loan is never downgraded",
			loan:              newLoan("100", "50", "100", "0", LoanStatusPaidOff),
			amount:            "10",
			expectedPaid:      "110",
			expectedRemaining: "0",
			expectedStatus:    LoanStatusPaidOff,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.loan.ApplyPayment(decimal.RequireFromString(tt.amount))

			assert.True(t, tt.loan.PaidAmount.Equal(decimal.RequireFromString(tt.expectedPaid)),
				"paid: expected %s, got %s", tt.expectedPaid, tt.loan.PaidAmount)
			assert.True(t, tt.loan.RemainingAmount.Equal(decimal.RequireFromString(tt.expectedRemaining)),
				"remaining: expected %s, got %s", tt.expectedRemaining, tt.loan.RemainingAmount)
			assert.Equal(t, tt.expectedStatus, tt.loan.Status)
		})
	}
}

func TestLoan_ApplyPayment_PreservesBalanceInvariant(t *testing.T) {
	loan := newLoan("1000", "50", "0", "1000", LoanStatusActive)

	for i := 0; i < 20; i++ {
		loan.ApplyPayment(decimal.RequireFromString("50.00"))
		assert.True(t, loan.PaidAmount.Add(loan.RemainingAmount).Equal(loan.TotalAmount))
	}
	assert.Equal(t, LoanStatusPaidOff, loan.Status)
}

func TestPrincipal_HasRole(t *testing.T) {
	assert.True(t, Principal{UserID: 1, Role: "admin"}.HasRole("admin"))
	assert.False(t, Principal{UserID: 1, Role: "user"}.HasRole("admin"))
	assert.False(t, Principal{UserID: 1}.HasRole(""))
}
