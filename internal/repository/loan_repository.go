package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/segyhp/loan-ledger/internal/domain"

	"github.com/jmoiron/sqlx"
)

const loanColumns = `id, owner_id, total_amount, daily_amount, paid_amount, remaining_amount, status, start_date, version, created_at, updated_at`

type loanRepository struct {
	db sqlx.ExtContext
}

// NewLoanRepository accepts either a *sqlx.DB or a *sqlx.Tx.
func NewLoanRepository(db sqlx.ExtContext) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	now := time.Now().UTC()
	if loan.CreatedAt.IsZero() {
		loan.CreatedAt = now
	}
	if loan.UpdatedAt.IsZero() {
		loan.UpdatedAt = loan.CreatedAt
	}
	if loan.StartDate.IsZero() {
		loan.StartDate = loan.CreatedAt
	}

	query := r.db.Rebind(`
		INSERT INTO loans (owner_id, total_amount, daily_amount, paid_amount, remaining_amount, status, start_date, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	return sqlx.GetContext(ctx, r.db, &loan.ID, query,
		loan.OwnerID,
		loan.TotalAmount,
		loan.DailyAmount,
		loan.PaidAmount,
		loan.RemainingAmount,
		loan.Status,
		loan.StartDate,
		loan.Version,
		loan.CreatedAt,
		loan.UpdatedAt,
	)
}

func (r *loanRepository) GetByID(ctx context.Context, id int64) (*domain.Loan, error) {
	query := r.db.Rebind(`SELECT ` + loanColumns + ` FROM loans WHERE id = ?`)

	var loan domain.Loan
	err := sqlx.GetContext(ctx, r.db, &loan, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Loan, error) {
	query := r.db.Rebind(`
		SELECT ` + loanColumns + `
		FROM loans
		WHERE owner_id = ?
		ORDER BY created_at DESC, id DESC
	`)

	loans := []*domain.Loan{}
	if err := sqlx.SelectContext(ctx, r.db, &loans, query, ownerID); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) UpdateBalance(ctx context.Context, loan *domain.Loan) error {
	if loan.UpdatedAt.IsZero() {
		loan.UpdatedAt = time.Now().UTC()
	}

	query := r.db.Rebind(`
		UPDATE loans
		SET paid_amount = ?, remaining_amount = ?, status = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`)

	res, err := r.db.ExecContext(ctx, query,
		loan.PaidAmount,
		loan.RemainingAmount,
		loan.Status,
		loan.UpdatedAt,
		loan.ID,
		loan.Version,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConcurrentUpdate
	}

	loan.Version++
	return nil
}
