// Package store provides SQLite-backed persistence for transactions and
// estimate templates. Transactions are keyed by their content hash, so a
// second write of an already-imported row is a no-op rather than a
// second row — the at-most-once half of the dedup contract lives here.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/runwaydev/runway/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Store wraps the forecast database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertTransactions writes a batch keyed by hash. Rows whose hash
// already exists are left untouched (INSERT OR IGNORE). Returns the
// number of rows actually inserted.
func (s *Store) UpsertTransactions(batch []model.Transaction) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	inserted := 0
	for _, t := range batch {
		res, err := tx.Exec(`INSERT OR IGNORE INTO transactions
			(hash, date, amount, direction, description, category, subcategory,
			 bank_balance, reference, imported_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.Hash, t.Date.UTC().Format(time.RFC3339), t.Amount.String(), string(t.Direction),
			t.Description, t.Category, t.Subcategory, t.BankBalance.String(), t.Reference, now,
		)
		if err != nil {
			return 0, err
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	return inserted, tx.Commit()
}

// LoadTransactions reads all stored transactions, oldest first.
func (s *Store) LoadTransactions() ([]model.Transaction, error) {
	rows, err := s.db.Query(`SELECT
		hash, date, amount, direction, description, category, subcategory,
		bank_balance, reference
		FROM transactions ORDER BY date, hash`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var dateStr, amountStr, dirStr, balanceStr string
		err := rows.Scan(&t.Hash, &dateStr, &amountStr, &dirStr, &t.Description,
			&t.Category, &t.Subcategory, &balanceStr, &t.Reference)
		if err != nil {
			return nil, err
		}
		if t.Date, err = time.Parse(time.RFC3339, dateStr); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.Hash, err)
		}
		if t.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.Hash, err)
		}
		if t.BankBalance, err = decimal.NewFromString(balanceStr); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.Hash, err)
		}
		t.Direction = model.Direction(dirStr)
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// KnownHashes returns the set of stored transaction hashes, the snapshot
// the exact-duplicate partition runs against before any write.
func (s *Store) KnownHashes() (map[string]struct{}, error) {
	rows, err := s.db.Query("SELECT hash FROM transactions")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	known := make(map[string]struct{})
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		known[h] = struct{}{}
	}
	return known, rows.Err()
}

// UpdateCategory corrects the category of one transaction. The only
// post-import mutation transactions support.
func (s *Store) UpdateCategory(hash, category, subcategory string) error {
	_, err := s.db.Exec(
		"UPDATE transactions SET category = ?, subcategory = ? WHERE hash = ?",
		category, subcategory, hash)
	return err
}

// DeleteTransaction removes one transaction by hash.
func (s *Store) DeleteTransaction(hash string) error {
	_, err := s.db.Exec("DELETE FROM transactions WHERE hash = ?", hash)
	return err
}

// LatestReportedBalance returns the bank-reported balance on the most
// recent transaction, or zero and false when no transaction carries one.
func (s *Store) LatestReportedBalance() (decimal.Decimal, bool, error) {
	var balanceStr string
	err := s.db.QueryRow(`SELECT bank_balance FROM transactions
		WHERE bank_balance != '0' ORDER BY date DESC, hash LIMIT 1`).Scan(&balanceStr)
	if err == sql.ErrNoRows {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return decimal.Zero, false, err
	}
	return balance, true, nil
}

// SaveEstimate inserts or replaces an estimate template.
func (s *Store) SaveEstimate(e model.Estimate) error {
	now := time.Now().UTC().Format(time.RFC3339)
	recurring := 0
	if e.Recurring {
		recurring = 1
	}
	_, err := s.db.Exec(`INSERT INTO estimates
		(id, direction, amount, category, description, notes, week_index,
		 recurring, recurrence, day_of_month, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		 direction = excluded.direction,
		 amount = excluded.amount,
		 category = excluded.category,
		 description = excluded.description,
		 notes = excluded.notes,
		 week_index = excluded.week_index,
		 recurring = excluded.recurring,
		 recurrence = excluded.recurrence,
		 day_of_month = excluded.day_of_month,
		 updated_at = excluded.updated_at`,
		e.ID.String(), string(e.Direction), e.Amount.String(), e.Category,
		e.Description, e.Notes, e.WeekIndex, recurring, string(e.Recurrence),
		e.DayOfMonth, now, now,
	)
	return err
}

// LoadEstimates reads all estimate templates.
func (s *Store) LoadEstimates() ([]model.Estimate, error) {
	rows, err := s.db.Query(`SELECT
		id, direction, amount, category, description, notes, week_index,
		recurring, recurrence, day_of_month
		FROM estimates ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var estimates []model.Estimate
	for rows.Next() {
		var e model.Estimate
		var idStr, dirStr, amountStr, recurStr string
		var recurring int
		err := rows.Scan(&idStr, &dirStr, &amountStr, &e.Category, &e.Description,
			&e.Notes, &e.WeekIndex, &recurring, &recurStr, &e.DayOfMonth)
		if err != nil {
			return nil, err
		}
		if e.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("estimate %s: %w", idStr, err)
		}
		if e.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("estimate %s: %w", idStr, err)
		}
		e.Direction = model.Direction(dirStr)
		e.Recurring = recurring != 0
		e.Recurrence = model.Recurrence(recurStr)
		estimates = append(estimates, e)
	}
	return estimates, rows.Err()
}

// DeleteEstimate removes one estimate template by id.
func (s *Store) DeleteEstimate(id uuid.UUID) error {
	_, err := s.db.Exec("DELETE FROM estimates WHERE id = ?", id.String())
	return err
}

// TransactionCount returns the number of stored transactions.
func (s *Store) TransactionCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM transactions").Scan(&count)
	return count, err
}
