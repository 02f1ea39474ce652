package repository

import (
	"context"
	"fmt"

	"github.com/segyhp/loan-ledger/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// OpenPostgres connects with the pool limits from cfg. The caller owns the
// returned handle.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

// NewRepos builds repositories bound directly to db, outside any transaction.
func NewRepos(db sqlx.ExtContext) Repos {
	return Repos{
		Loans:         NewLoanRepository(db),
		DailyPayments: NewDailyPaymentRepository(db),
		Payments:      NewPaymentRepository(db),
	}
}
