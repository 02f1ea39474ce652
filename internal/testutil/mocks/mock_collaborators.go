package mocks

import (
	"context"
	"time"

	"github.com/segyhp/loan-ledger/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockStatusCache struct {
	mock.Mock
}

func (m *MockStatusCache) Get(ctx context.Context, loanID int64, day time.Time) (*domain.DailyPaymentRequest, bool, error) {
	args := m.Called(ctx, loanID, day)
	var req *domain.DailyPaymentRequest
	if v := args.Get(0); v != nil {
		req = v.(*domain.DailyPaymentRequest)
	}
	return req, args.Bool(1), args.Error(2)
}

func (m *MockStatusCache) Generation(ctx context.Context, loanID int64, day time.Time) (int64, error) {
	args := m.Called(ctx, loanID, day)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatusCache) Set(ctx context.Context, loanID int64, day time.Time, generation int64, req *domain.DailyPaymentRequest) error {
	args := m.Called(ctx, loanID, day, generation, req)
	return args.Error(0)
}

func (m *MockStatusCache) Invalidate(ctx context.Context, loanID int64, day time.Time) error {
	args := m.Called(ctx, loanID, day)
	return args.Error(0)
}

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}
