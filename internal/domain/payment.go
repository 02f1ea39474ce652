package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentStatusConfirmed = "confirmed"

	// PixStatusConfirmed is the only webhook outcome that moves money.
	PixStatusConfirmed = "confirmed"
)

// PaymentTransaction is the append-only audit row written once per
// reconciled confirmation.
type PaymentTransaction struct {
	ID            int64           `json:"id" db:"id"`
	LoanID        int64           `json:"loan_id" db:"loan_id"`
	OwnerID       int64           `json:"owner_id" db:"owner_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	CorrelationID string          `json:"correlation_id" db:"correlation_id"`
	ExternalToken string          `json:"external_token" db:"external_token"`
	Status        string          `json:"status" db:"status"`
	ConfirmedAt   time.Time       `json:"confirmed_at" db:"confirmed_at"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// PixConfirmation is the payload the payment network posts to the webhook.
type PixConfirmation struct {
	CorrelationID string `json:"correlation_id"`
	Amount        string `json:"amount"`
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp,omitempty"`
}

type PixConfirmationResponse struct {
	Success bool `json:"success"`
}
