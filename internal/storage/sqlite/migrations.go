package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Addresses and bill IDs are stored as 0x-prefixed lowercase hex, token
// amounts as base-10 strings (they exceed 64 bits).
const schema = `
CREATE TABLE IF NOT EXISTS bills (
    ledger TEXT NOT NULL,
    id TEXT NOT NULL,
    creator TEXT NOT NULL,
    token TEXT NOT NULL,
    share_price TEXT NOT NULL,
    total_shares INTEGER NOT NULL CHECK (total_shares > 0 AND total_shares <= 100),
    paid_shares INTEGER NOT NULL CHECK (paid_shares <= total_shares),
    initial_shares INTEGER NOT NULL DEFAULT 0,
    status INTEGER NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    settled_at INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (ledger, id)
);

CREATE TABLE IF NOT EXISTS bill_contributions (
    ledger TEXT NOT NULL,
    bill_id TEXT NOT NULL,
    payer TEXT NOT NULL,
    shares INTEGER NOT NULL,
    PRIMARY KEY (ledger, bill_id, payer),
    FOREIGN KEY (ledger, bill_id) REFERENCES bills(ledger, id)
);

CREATE TABLE IF NOT EXISTS ledger_admin (
    ledger TEXT PRIMARY KEY,
    owner TEXT NOT NULL,
    contract TEXT NOT NULL,
    token TEXT NOT NULL,
    platform_fee INTEGER NOT NULL,
    collected_fees TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    ledger TEXT NOT NULL,
    kind TEXT NOT NULL,
    bill_id TEXT NOT NULL,
    payload TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tokens (
    address TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    symbol TEXT NOT NULL,
    decimals INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS token_balances (
    token TEXT NOT NULL,
    account TEXT NOT NULL,
    amount TEXT NOT NULL,
    PRIMARY KEY (token, account),
    FOREIGN KEY (token) REFERENCES tokens(address)
);

CREATE TABLE IF NOT EXISTS token_allowances (
    token TEXT NOT NULL,
    owner TEXT NOT NULL,
    spender TEXT NOT NULL,
    amount TEXT NOT NULL,
    PRIMARY KEY (token, owner, spender),
    FOREIGN KEY (token) REFERENCES tokens(address)
);

CREATE TABLE IF NOT EXISTS accounts (
    address TEXT PRIMARY KEY,
    display_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bills_creator ON bills(ledger, creator, created_at);
CREATE INDEX IF NOT EXISTS idx_events_bill ON events(ledger, bill_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
