package store

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/choreme/choreme/internal/model"
)

type LedgerStore struct {
	db *sql.DB
}

func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

func scanLedgerEntry(scanner interface{ Scan(...any) error }) (*model.LedgerEntry, error) {
	var e model.LedgerEntry
	var amount string
	var taskID, redemptionID sql.NullInt64

	err := scanner.Scan(&e.ID, &e.UserID, &e.Type, &amount, &e.Description, &taskID, &redemptionID, &e.CreatedAt)
	if err != nil {
		return nil, err
	}

	e.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	if taskID.Valid {
		e.TaskID = &taskID.Int64
	}
	if redemptionID.Valid {
		e.RedemptionID = &redemptionID.Int64
	}
	return &e, nil
}

const ledgerCols = `id, user_id, type, amount, description, task_id, redemption_id, created_at`

// Append records a ledger entry. Earn amounts are positive, spend amounts
// negative, adjust either.
func (s *LedgerStore) Append(userID int64, typ model.LedgerType, amount decimal.Decimal, description string, taskID, redemptionID *int64) (*model.LedgerEntry, error) {
	var tID, rID sql.NullInt64
	if taskID != nil {
		tID = sql.NullInt64{Int64: *taskID, Valid: true}
	}
	if redemptionID != nil {
		rID = sql.NullInt64{Int64: *redemptionID, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO ledger_entries (user_id, type, amount, description, task_id, redemption_id) VALUES (?, ?, ?, ?, ?, ?)`,
		userID, typ, amount.String(), description, tID, rID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert ledger entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+ledgerCols+` FROM ledger_entries WHERE id = ?`, id)
	e, err := scanLedgerEntry(row)
	if err != nil {
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}
	return e, nil
}

// ListByUser returns the user's ledger, newest first.
func (s *LedgerStore) ListByUser(userID int64) ([]model.LedgerEntry, error) {
	rows, err := s.db.Query(
		`SELECT `+ledgerCols+` FROM ledger_entries WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []model.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// Balance sums the user's ledger. SQLite cannot sum decimal strings
// exactly, so the rows are folded in Go.
func (s *LedgerStore) Balance(userID int64) (decimal.Decimal, error) {
	rows, err := s.db.Query(`SELECT amount FROM ledger_entries WHERE user_id = ?`, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum ledger: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, fmt.Errorf("scan amount: %w", err)
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse amount %q: %w", amount, err)
		}
		total = total.Add(d)
	}
	return total, rows.Err()
}
