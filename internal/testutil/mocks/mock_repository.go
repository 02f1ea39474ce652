package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/segyhp/loan-ledger/internal/domain"
	"github.com/segyhp/loan-ledger/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id int64) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Loan, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) UpdateBalance(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

type MockDailyPaymentRepository struct {
	mock.Mock
}

func (m *MockDailyPaymentRepository) GetByLoanAndDate(ctx context.Context, loanID int64, day time.Time) (*domain.DailyPaymentRequest, error) {
	args := m.Called(ctx, loanID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyPaymentRequest), args.Error(1)
}

func (m *MockDailyPaymentRepository) GetByCorrelationID(ctx context.Context, correlationID string) (*domain.DailyPaymentRequest, error) {
	args := m.Called(ctx, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyPaymentRequest), args.Error(1)
}

func (m *MockDailyPaymentRepository) Upsert(ctx context.Context, req *domain.DailyPaymentRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockDailyPaymentRepository) MarkConfirmed(ctx context.Context, id int64, correlationID string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, correlationID, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockDailyPaymentRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.PaymentTransaction) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByLoanID(ctx context.Context, loanID int64) ([]*domain.PaymentTransaction, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PaymentTransaction), args.Error(1)
}

// FakeUnitOfWork hands the same mock repositories to fn without a real
// transaction.
type FakeUnitOfWork struct {
	Repos repository.Repos
	Calls int

	mu sync.Mutex
}

func (u *FakeUnitOfWork) WithinTx(ctx context.Context, fn func(r repository.Repos) error) error {
	u.mu.Lock()
	u.Calls++
	u.mu.Unlock()
	return fn(u.Repos)
}
