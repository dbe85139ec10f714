package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/billsplitter/internal/models"
)

// AppendEvents stores events in order, assigning each a UUID and a sequence
// number. The whole event is kept as a JSON payload; ledger, kind and bill
// are duplicated into columns for filtering.
func (s *SQLiteStore) AppendEvents(ctx context.Context, events []models.Event) error {
	for i := range events {
		e := &events[i]
		if e.ID == "" {
			e.ID = uuid.New().String()
		}

		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}

		result, err := s.q(ctx).ExecContext(ctx,
			"INSERT INTO events (id, ledger, kind, bill_id, payload, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			e.ID, string(e.Ledger), string(e.Kind), e.BillID.Hex(), string(payload), e.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}

		seq, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get event sequence: %w", err)
		}
		e.Seq = seq
	}
	return nil
}

// ListEvents returns events matching filter in sequence order.
func (s *SQLiteStore) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	var (
		where []string
		args  []any
	)
	if filter.Ledger != "" {
		where = append(where, "ledger = ?")
		args = append(args, string(filter.Ledger))
	}
	if !filter.BillID.IsZero() {
		where = append(where, "bill_id = ?")
		args = append(args, filter.BillID.Hex())
	}
	if filter.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(filter.Kind))
	}
	if filter.AfterSeq > 0 {
		where = append(where, "seq > ?")
		args = append(args, filter.AfterSeq)
	}

	query := "SELECT seq, payload FROM events"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var (
			seq     int64
			payload string
		)
		if err := rows.Scan(&seq, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		var e models.Event
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			return nil, fmt.Errorf("failed to decode event %d: %w", seq, err)
		}
		e.Seq = seq
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}
