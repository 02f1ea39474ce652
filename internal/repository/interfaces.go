package repository

import (
	"context"
	"errors"
	"time"

	"github.com/segyhp/loan-ledger/internal/domain"
)

var (
	// ErrConcurrentUpdate means the loan row changed since it was read.
	ErrConcurrentUpdate = errors.New("loan was modified concurrently")

	// ErrRequestConfirmed means an upsert hit a row that is already confirmed.
	ErrRequestConfirmed = errors.New("daily payment request already confirmed")
)

// Read methods return (nil, nil) when the row does not exist.

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create inserts a loan and sets its ID
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan by its surrogate ID
	GetByID(ctx context.Context, id int64) (*domain.Loan, error)

	// ListByOwner retrieves all loans of one owner, newest first
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Loan, error)

	// UpdateBalance writes paid/remaining/status if the row still has
	// loan.Version, then bumps the version. Returns ErrConcurrentUpdate otherwise.
	UpdateBalance(ctx context.Context, loan *domain.Loan) error
}

// DailyPaymentRepository defines the interface for daily payment request operations
type DailyPaymentRepository interface {
	// GetByLoanAndDate retrieves the request of a loan for one calendar day
	GetByLoanAndDate(ctx context.Context, loanID int64, day time.Time) (*domain.DailyPaymentRequest, error)

	// GetByCorrelationID retrieves the request carrying an external correlation ID
	GetByCorrelationID(ctx context.Context, correlationID string) (*domain.DailyPaymentRequest, error)

	// Upsert inserts the request for (LoanID, PaymentDate) or overwrites the
	// existing one unless it is confirmed, in which case ErrRequestConfirmed is returned.
	Upsert(ctx context.Context, req *domain.DailyPaymentRequest) error

	// MarkConfirmed flips the request to confirmed only if it is not confirmed
	// yet and still carries correlationID. Reports whether this call did it.
	MarkConfirmed(ctx context.Context, id int64, correlationID string, at time.Time) (bool, error)

	// ExpireStale moves pending requests whose expiry is before now to expired
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

// PaymentRepository defines the interface for payment transaction operations
type PaymentRepository interface {
	// Create appends a payment transaction
	Create(ctx context.Context, payment *domain.PaymentTransaction) error

	// GetByLoanID retrieves all payments for a loan, newest first
	GetByLoanID(ctx context.Context, loanID int64) ([]*domain.PaymentTransaction, error)
}

// Repos is a set of repositories bound to the same transaction.
type Repos struct {
	Loans         LoanRepository
	DailyPayments DailyPaymentRepository
	Payments      PaymentRepository
}

// UnitOfWork runs fn inside one database transaction. Returning an error
// from fn rolls everything back.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}
