package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/segyhp/loan-ledger/internal/config"
	"github.com/segyhp/loan-ledger/internal/domain"
	"github.com/segyhp/loan-ledger/internal/repository"
	customError "github.com/segyhp/loan-ledger/pkg/errors"
)

// Settings are the business knobs shared by the services.
type Settings struct {
	Location          *time.Location
	RequestTTL        time.Duration
	ElevatedRole      string
	ReconcileAttempts int
}

func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Location:          cfg.Location(),
		RequestTTL:        cfg.Business.RequestTTL,
		ElevatedRole:      cfg.Business.ElevatedRole,
		ReconcileAttempts: cfg.Business.ReconcileAttempts,
	}
}

// DefaultSettings mirrors the config defaults.
func DefaultSettings() Settings {
	return Settings{
		Location:          time.UTC,
		RequestTTL:        24 * time.Hour,
		ElevatedRole:      "admin",
		ReconcileAttempts: 3,
	}
}

// authorizeLoan loads a loan the principal may act on: its owner or
// anyone holding the elevated role.
func authorizeLoan(
	ctx context.Context,
	loans repository.LoanRepository,
	p domain.Principal,
	loanID int64,
	elevatedRole string,
) (*domain.Loan, error) {
	loan, err := loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if loan == nil {
		return nil, customError.WrapLoanNotFound(loanID)
	}
	if !loan.IsOwnedBy(p.UserID) && !p.HasRole(elevatedRole) {
		return nil, customError.WrapForbidden(loanID)
	}
	return loan, nil
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
