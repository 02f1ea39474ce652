package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type sqlUnitOfWork struct {
	db *sqlx.DB
}

func NewUnitOfWork(db *sqlx.DB) UnitOfWork {
	return &sqlUnitOfWork{db: db}
}

func (u *sqlUnitOfWork) WithinTx(ctx context.Context, fn func(r Repos) error) error {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}

	return tx.Commit()
}
