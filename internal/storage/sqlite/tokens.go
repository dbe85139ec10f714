package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/mmynk/billsplitter/internal/models"
	"github.com/mmynk/billsplitter/internal/token"
)

// PutToken registers token metadata.
func (s *SQLiteStore) PutToken(ctx context.Context, meta token.Meta) error {
	_, err := s.q(ctx).ExecContext(ctx,
		"INSERT INTO tokens (address, name, symbol, decimals) VALUES (?, ?, ?, ?)",
		meta.Address.Hex(), meta.Name, meta.Symbol, meta.Decimals,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("token %s: %w", meta.Address, token.ErrTokenExists)
		}
		return fmt.Errorf("failed to insert token: %w", err)
	}
	return nil
}

// GetToken retrieves token metadata by address.
func (s *SQLiteStore) GetToken(ctx context.Context, address models.Address) (*token.Meta, error) {
	meta := &token.Meta{}
	err := s.q(ctx).QueryRowContext(ctx,
		"SELECT address, name, symbol, decimals FROM tokens WHERE address = ?",
		address.Hex(),
	).Scan(hexAddress{&meta.Address}, &meta.Name, &meta.Symbol, &meta.Decimals)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("token %s: %w", address, token.ErrUnknownToken)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return meta, nil
}

// ListTokens returns every registered token ordered by symbol.
func (s *SQLiteStore) ListTokens(ctx context.Context) ([]token.Meta, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		"SELECT address, name, symbol, decimals FROM tokens ORDER BY symbol, address",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	defer rows.Close()

	var metas []token.Meta
	for rows.Next() {
		var meta token.Meta
		if err := rows.Scan(hexAddress{&meta.Address}, &meta.Name, &meta.Symbol, &meta.Decimals); err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		metas = append(metas, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tokens: %w", err)
	}
	return metas, nil
}

// GetBalance returns the account's balance; missing rows read as zero.
func (s *SQLiteStore) GetBalance(ctx context.Context, tokenAddr, account models.Address) (*uint256.Int, error) {
	var amount uint256.Int
	err := s.q(ctx).QueryRowContext(ctx,
		"SELECT amount FROM token_balances WHERE token = ? AND account = ?",
		tokenAddr.Hex(), account.Hex(),
	).Scan(decAmount{&amount})
	if errors.Is(err, sql.ErrNoRows) {
		return new(uint256.Int), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return &amount, nil
}

// SetBalance overwrites the account's balance.
func (s *SQLiteStore) SetBalance(ctx context.Context, tokenAddr, account models.Address, amount *uint256.Int) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO token_balances (token, account, amount) VALUES (?, ?, ?)
		ON CONFLICT (token, account) DO UPDATE SET amount = excluded.amount`,
		tokenAddr.Hex(), account.Hex(), amount.Dec(),
	)
	if err != nil {
		return fmt.Errorf("failed to set balance: %w", err)
	}
	return nil
}

// GetAllowance returns what spender may still pull from owner.
func (s *SQLiteStore) GetAllowance(ctx context.Context, tokenAddr, owner, spender models.Address) (*uint256.Int, error) {
	var amount uint256.Int
	err := s.q(ctx).QueryRowContext(ctx,
		"SELECT amount FROM token_allowances WHERE token = ? AND owner = ? AND spender = ?",
		tokenAddr.Hex(), owner.Hex(), spender.Hex(),
	).Scan(decAmount{&amount})
	if errors.Is(err, sql.ErrNoRows) {
		return new(uint256.Int), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get allowance: %w", err)
	}
	return &amount, nil
}

// SetAllowance overwrites the owner→spender allowance.
func (s *SQLiteStore) SetAllowance(ctx context.Context, tokenAddr, owner, spender models.Address, amount *uint256.Int) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO token_allowances (token, owner, spender, amount) VALUES (?, ?, ?, ?)
		ON CONFLICT (token, owner, spender) DO UPDATE SET amount = excluded.amount`,
		tokenAddr.Hex(), owner.Hex(), spender.Hex(), amount.Dec(),
	)
	if err != nil {
		return fmt.Errorf("failed to set allowance: %w", err)
	}
	return nil
}
