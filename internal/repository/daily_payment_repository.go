package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/segyhp/loan-ledger/internal/domain"
	"github.com/segyhp/loan-ledger/pkg/utils"

	"github.com/jmoiron/sqlx"
)

const dailyPaymentColumns = `id, loan_id, payment_date, external_token, renderable_code, correlation_id, status, expires_at, created_at, updated_at`

type dailyPaymentRepository struct {
	db sqlx.ExtContext
}

func NewDailyPaymentRepository(db sqlx.ExtContext) DailyPaymentRepository {
	return &dailyPaymentRepository{db: db}
}

// payment_date is always bound as YYYY-MM-DD so the same value compares
// equal on every driver.
func (r *dailyPaymentRepository) GetByLoanAndDate(ctx context.Context, loanID int64, day time.Time) (*domain.DailyPaymentRequest, error) {
	query := r.db.Rebind(`
		SELECT ` + dailyPaymentColumns + `
		FROM daily_payment_requests
		WHERE loan_id = ? AND payment_date = ?
	`)

	return r.getOne(ctx, query, loanID, utils.DayKey(day))
}

func (r *dailyPaymentRepository) GetByCorrelationID(ctx context.Context, correlationID string) (*domain.DailyPaymentRequest, error) {
	query := r.db.Rebind(`
		SELECT ` + dailyPaymentColumns + `
		FROM daily_payment_requests
		WHERE correlation_id = ?
	`)

	return r.getOne(ctx, query, correlationID)
}

func (r *dailyPaymentRepository) Upsert(ctx context.Context, req *domain.DailyPaymentRequest) error {
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	if req.UpdatedAt.IsZero() {
		req.UpdatedAt = req.CreatedAt
	}

	// The conflict branch refuses to touch a confirmed row; in that case
	// RETURNING yields nothing.
	query := r.db.Rebind(`
		INSERT INTO daily_payment_requests (loan_id, payment_date, external_token, renderable_code, correlation_id, status, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (loan_id, payment_date) DO UPDATE SET
			external_token = excluded.external_token,
			renderable_code = excluded.renderable_code,
			correlation_id = excluded.correlation_id,
			status = excluded.status,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
		WHERE daily_payment_requests.status <> 'confirmed'
		RETURNING id
	`)

	var id int64
	err := sqlx.GetContext(ctx, r.db, &id, query,
		req.LoanID,
		utils.DayKey(req.PaymentDate),
		req.ExternalToken,
		req.RenderableCode,
		req.CorrelationID,
		req.Status,
		req.ExpiresAt,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRequestConfirmed
	}
	if err != nil {
		return err
	}

	// Reload so a regenerated row keeps its original created_at.
	stored, err := r.getOne(ctx, r.db.Rebind(`SELECT `+dailyPaymentColumns+` FROM daily_payment_requests WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if stored != nil {
		*req = *stored
	}

	return nil
}

func (r *dailyPaymentRepository) MarkConfirmed(ctx context.Context, id int64, correlationID string, at time.Time) (bool, error) {
	query := r.db.Rebind(`
		UPDATE daily_payment_requests
		SET status = 'confirmed', updated_at = ?
		WHERE id = ? AND correlation_id = ? AND status <> 'confirmed'
	`)

	res, err := r.db.ExecContext(ctx, query, at, id, correlationID)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n == 1, nil
}

func (r *dailyPaymentRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	query := r.db.Rebind(`
		UPDATE daily_payment_requests
		SET status = 'expired', updated_at = ?
		WHERE status = 'pending' AND expires_at < ?
	`)

	res, err := r.db.ExecContext(ctx, query, now, now)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (r *dailyPaymentRepository) getOne(ctx context.Context, query string, args ...interface{}) (*domain.DailyPaymentRequest, error) {
	var req domain.DailyPaymentRequest
	err := sqlx.GetContext(ctx, r.db, &req, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &req, nil
}
