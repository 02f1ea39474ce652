// Package sqlitedb opens an in-memory SQLite database carrying the ledger
// schema, for tests that exercise the real sqlx repositories.
package sqlitedb

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Schema mirrors deployments/init.sql. Amounts are TEXT so decimals
// round-trip exactly.
const Schema = `
CREATE TABLE loans (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_id INTEGER NOT NULL,
	total_amount TEXT NOT NULL,
	daily_amount TEXT NOT NULL,
	paid_amount TEXT NOT NULL DEFAULT '0',
	remaining_amount TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'active',
	start_date DATETIME NOT NULL,
	version INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX idx_loans_owner_id ON loans(owner_id);

CREATE TABLE daily_payment_requests (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	loan_id INTEGER NOT NULL REFERENCES loans(id),
	payment_date DATE NOT NULL,
	external_token TEXT NOT NULL,
	renderable_code TEXT NOT NULL,
	correlation_id TEXT NOT NULL UNIQUE,
	status TEXT NOT NULL DEFAULT 'pending',
	expires_at DATETIME NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE (loan_id, payment_date)
);

CREATE TABLE payment_transactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	loan_id INTEGER NOT NULL REFERENCES loans(id),
	owner_id INTEGER NOT NULL,
	amount TEXT NOT NULL,
	correlation_id TEXT NOT NULL UNIQUE,
	external_token TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'confirmed',
	confirmed_at DATETIME NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX idx_payment_transactions_loan_id ON payment_transactions(loan_id);
`

// Open returns a fresh database closed automatically when the test ends.
// A single connection is kept because every :memory: connection is its own
// database.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		t.Fatalf("apply schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}
