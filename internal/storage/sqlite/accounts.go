package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/billsplitter/internal/models"
	"github.com/mmynk/billsplitter/internal/storage"
)

// CreateAccount inserts a new account into the database.
func (s *SQLiteStore) CreateAccount(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (address, display_name, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.q(ctx).ExecContext(ctx, query,
		account.Address.Hex(),
		account.DisplayName,
		account.PasswordHash,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("account %s: %w", account.Address, storage.ErrConflict)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetAccount retrieves an account by wallet address.
func (s *SQLiteStore) GetAccount(ctx context.Context, address models.Address) (*models.Account, error) {
	query := `
		SELECT address, display_name, password_hash, created_at, updated_at
		FROM accounts
		WHERE address = ?
	`

	account := &models.Account{}
	err := s.q(ctx).QueryRowContext(ctx, query, address.Hex()).Scan(
		hexAddress{&account.Address},
		&account.DisplayName,
		&account.PasswordHash,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil // Account not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}
