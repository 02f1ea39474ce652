package mocks

import (
	"context"

	"github.com/segyhp/loan-ledger/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) Create(ctx context.Context, p domain.Principal, request *domain.CreateLoanRequest) (*domain.Loan, error) {
	args := m.Called(ctx, p, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanService) List(ctx context.Context, p domain.Principal) ([]*domain.Loan, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanService) Get(ctx context.Context, p domain.Principal, loanID int64) (*domain.Loan, error) {
	args := m.Called(ctx, p, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanService) GetDetails(ctx context.Context, p domain.Principal, loanID int64) (*domain.LoanDetails, error) {
	args := m.Called(ctx, p, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanDetails), args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) GenerateDaily(ctx context.Context, p domain.Principal, loanID int64) (*domain.DailyPaymentRequest, error) {
	args := m.Called(ctx, p, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyPaymentRequest), args.Error(1)
}

func (m *MockPaymentService) GetDailyStatus(ctx context.Context, p domain.Principal, loanID int64) (*domain.DailyPaymentRequest, error) {
	args := m.Called(ctx, p, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyPaymentRequest), args.Error(1)
}

func (m *MockPaymentService) History(ctx context.Context, p domain.Principal, loanID int64) ([]*domain.PaymentTransaction, error) {
	args := m.Called(ctx, p, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PaymentTransaction), args.Error(1)
}

type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) ConfirmPix(ctx context.Context, n domain.PixConfirmation) bool {
	args := m.Called(ctx, n)
	return args.Bool(0)
}
