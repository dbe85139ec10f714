package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/billsplitter/internal/models"
	"github.com/mmynk/billsplitter/internal/storage"
)

// GetAdmin retrieves the administrative record of a ledger.
func (s *SQLiteStore) GetAdmin(ctx context.Context, ledger models.Version) (*models.Admin, error) {
	admin := &models.Admin{Ledger: ledger}
	err := s.q(ctx).QueryRowContext(ctx,
		"SELECT owner, contract, token, platform_fee, collected_fees FROM ledger_admin WHERE ledger = ?",
		string(ledger),
	).Scan(
		hexAddress{&admin.Owner},
		hexAddress{&admin.Contract},
		hexAddress{&admin.Token},
		&admin.PlatformFee,
		decAmount{&admin.CollectedFees},
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ledger %s admin: %w", ledger, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger admin: %w", err)
	}
	return admin, nil
}

// PutAdmin inserts or replaces the administrative record of a ledger.
func (s *SQLiteStore) PutAdmin(ctx context.Context, admin *models.Admin) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO ledger_admin (ledger, owner, contract, token, platform_fee, collected_fees)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (ledger) DO UPDATE SET
			owner = excluded.owner,
			contract = excluded.contract,
			token = excluded.token,
			platform_fee = excluded.platform_fee,
			collected_fees = excluded.collected_fees`,
		string(admin.Ledger), admin.Owner.Hex(), admin.Contract.Hex(), admin.Token.Hex(),
		admin.PlatformFee, admin.CollectedFees.Dec(),
	)
	if err != nil {
		return fmt.Errorf("failed to save ledger admin: %w", err)
	}
	return nil
}
