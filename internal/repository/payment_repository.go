package repository

import (
	"context"
	"time"

	"github.com/segyhp/loan-ledger/internal/domain"

	"github.com/jmoiron/sqlx"
)

type paymentRepository struct {
	db sqlx.ExtContext
}

func NewPaymentRepository(db sqlx.ExtContext) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.PaymentTransaction) error {
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}

	query := r.db.Rebind(`
		INSERT INTO payment_transactions (loan_id, owner_id, amount, correlation_id, external_token, status, confirmed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	return sqlx.GetContext(ctx, r.db, &payment.ID, query,
		payment.LoanID,
		payment.OwnerID,
		payment.Amount,
		payment.CorrelationID,
		payment.ExternalToken,
		payment.Status,
		payment.ConfirmedAt,
		payment.CreatedAt,
	)
}

func (r *paymentRepository) GetByLoanID(ctx context.Context, loanID int64) ([]*domain.PaymentTransaction, error) {
	query := r.db.Rebind(`
		SELECT id, loan_id, owner_id, amount, correlation_id, external_token, status, confirmed_at, created_at
		FROM payment_transactions
		WHERE loan_id = ?
		ORDER BY confirmed_at DESC, id DESC
	`)

	payments := []*domain.PaymentTransaction{}
	if err := sqlx.SelectContext(ctx, r.db, &payments, query, loanID); err != nil {
		return nil, err
	}

	return payments, nil
}
