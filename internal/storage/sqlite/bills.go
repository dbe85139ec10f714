package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mmynk/billsplitter/internal/models"
	"github.com/mmynk/billsplitter/internal/storage"
)

const billColumns = `id, ledger, creator, token, share_price, total_shares, paid_shares,
	initial_shares, status, description, created_at, settled_at`

// CreateBill persists a new bill. IDs are never reused, so a duplicate
// insert fails even after the earlier bill was closed.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO bills (`+billColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID.Hex(), string(bill.Ledger), bill.Creator.Hex(), bill.Token.Hex(),
		bill.SharePrice.Dec(), bill.TotalShares, bill.PaidShares, bill.InitialShares,
		uint8(bill.Status), bill.Description, bill.CreatedAt, bill.SettledAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("bill %s: %w", bill.ID, storage.ErrConflict)
		}
		return fmt.Errorf("failed to insert bill: %w", err)
	}
	return nil
}

// GetBill retrieves a bill by ledger and ID.
func (s *SQLiteStore) GetBill(ctx context.Context, ledger models.Version, id models.BillID) (*models.Bill, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE ledger = ? AND id = ?`,
		string(ledger), id.Hex(),
	)
	bill, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bill %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

// BillExists reports whether the ID was ever registered on the ledger.
func (s *SQLiteStore) BillExists(ctx context.Context, ledger models.Version, id models.BillID) (bool, error) {
	var n int
	err := s.q(ctx).QueryRowContext(ctx,
		"SELECT COUNT(1) FROM bills WHERE ledger = ? AND id = ?",
		string(ledger), id.Hex(),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check bill: %w", err)
	}
	return n > 0, nil
}

// UpdateBill writes back the mutable fields of a bill.
func (s *SQLiteStore) UpdateBill(ctx context.Context, bill *models.Bill) error {
	result, err := s.q(ctx).ExecContext(ctx,
		`UPDATE bills SET share_price = ?, total_shares = ?, paid_shares = ?, status = ?,
			description = ?, settled_at = ?
		WHERE ledger = ? AND id = ?`,
		bill.SharePrice.Dec(), bill.TotalShares, bill.PaidShares, uint8(bill.Status),
		bill.Description, bill.SettledAt, string(bill.Ledger), bill.ID.Hex(),
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("bill %s: %w", bill.ID, storage.ErrNotFound)
	}
	return nil
}

// ListBillsByCreator returns the creator's bills, newest first.
func (s *SQLiteStore) ListBillsByCreator(ctx context.Context, ledger models.Version, creator models.Address) ([]*models.Bill, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE ledger = ? AND creator = ?
		ORDER BY created_at DESC, rowid DESC`,
		string(ledger), creator.Hex(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []*models.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	return bills, nil
}

// AddContribution adds shares to the payer's running total on a bill.
func (s *SQLiteStore) AddContribution(ctx context.Context, ledger models.Version, id models.BillID, payer models.Address, shares uint8) (bool, error) {
	existing, err := s.GetContribution(ctx, ledger, id, payer)
	if err != nil {
		return false, err
	}

	_, err = s.q(ctx).ExecContext(ctx,
		`INSERT INTO bill_contributions (ledger, bill_id, payer, shares) VALUES (?, ?, ?, ?)
		ON CONFLICT (ledger, bill_id, payer) DO UPDATE SET shares = shares + excluded.shares`,
		string(ledger), id.Hex(), payer.Hex(), shares,
	)
	if err != nil {
		return false, fmt.Errorf("failed to record contribution: %w", err)
	}
	return existing == 0, nil
}

// GetContribution returns the payer's cumulative shares on a bill.
func (s *SQLiteStore) GetContribution(ctx context.Context, ledger models.Version, id models.BillID, payer models.Address) (uint8, error) {
	var shares uint8
	err := s.q(ctx).QueryRowContext(ctx,
		"SELECT shares FROM bill_contributions WHERE ledger = ? AND bill_id = ? AND payer = ?",
		string(ledger), id.Hex(), payer.Hex(),
	).Scan(&shares)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get contribution: %w", err)
	}
	return shares, nil
}

// ListContributions returns the bill's payers in the order they first paid.
func (s *SQLiteStore) ListContributions(ctx context.Context, ledger models.Version, id models.BillID) ([]models.Contribution, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		"SELECT payer, shares FROM bill_contributions WHERE ledger = ? AND bill_id = ? ORDER BY rowid",
		string(ledger), id.Hex(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	defer rows.Close()

	var contributions []models.Contribution
	for rows.Next() {
		var c models.Contribution
		if err := rows.Scan(hexAddress{&c.Payer}, &c.Shares); err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		contributions = append(contributions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contributions: %w", err)
	}
	return contributions, nil
}

func scanBill(row scanner) (*models.Bill, error) {
	var (
		bill   models.Bill
		ledger string
		status uint8
	)
	err := row.Scan(
		hexBillID{&bill.ID},
		&ledger,
		hexAddress{&bill.Creator},
		hexAddress{&bill.Token},
		decAmount{&bill.SharePrice},
		&bill.TotalShares,
		&bill.PaidShares,
		&bill.InitialShares,
		&status,
		&bill.Description,
		&bill.CreatedAt,
		&bill.SettledAt,
	)
	if err != nil {
		return nil, err
	}
	bill.Ledger = models.Version(ledger)
	bill.Status = models.Status(status)
	return &bill, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
