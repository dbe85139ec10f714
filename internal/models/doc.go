// Package models defines the core domain models for the bill ledger.
//
// # Ledger Models
//
//   - Bill: a shared expense divided into equal-priced shares, keyed by a
//     caller-chosen 256-bit BillID and denominated in one token
//   - Contribution: cumulative shares one payer has covered on a V1 bill
//   - Admin: the per-ledger administrative record (owner, fee, collected fees)
//   - Event: an entry of the ledger's append-only event log
//
// # Identity Models
//
//   - Address: a 20-byte account or contract address
//   - Account: a registered wallet address with login credentials
//
// # Versions
//
// Two ledger variants share these models. V1 settles in a single token fixed
// at deploy time and takes a platform fee from every payment. V2 lets the
// creator pick the token per bill, declare shares paid without moving
// tokens, and update terms in place. Bills are namespaced by Version.
package models
