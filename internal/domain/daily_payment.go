package domain

import (
	"time"
)

// Daily payment request states
const (
	DailyStatusPending   = "pending"
	DailyStatusConfirmed = "confirmed"
	DailyStatusExpired   = "expired"
)

// DailyPaymentRequest is the single invitation to pay a loan's installment
// for one calendar day. (LoanID, PaymentDate) is unique.
type DailyPaymentRequest struct {
	ID             int64     `json:"id" db:"id"`
	LoanID         int64     `json:"loan_id" db:"loan_id"`
	PaymentDate    time.Time `json:"payment_date" db:"payment_date"`
	ExternalToken  string    `json:"external_token" db:"external_token"`
	RenderableCode string    `json:"renderable_code" db:"renderable_code"`
	CorrelationID  string    `json:"correlation_id" db:"correlation_id"`
	Status         string    `json:"status" db:"status"` // pending, confirmed, expired
	ExpiresAt      time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

func (r *DailyPaymentRequest) IsConfirmed() bool {
	return r.Status == DailyStatusConfirmed
}
