// Package idempotency replays the stored response of a mutating request
// retried with the same Idempotency-Key.
//
// Responses are kept in a BoltDB file. A key is scoped to the caller's
// Authorization header and the procedure path, so two wallets may reuse a
// key independently. Only successful responses are stored: a failed ledger
// operation leaves no trace, so retrying it is safe.
package idempotency

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	bolt "github.com/boltdb/bolt"
)

const bucketName = "responses"

// ErrNotFound is returned when no live record exists for a key.
var ErrNotFound = errors.New("idempotency record not found")

// Record is a stored response.
type Record struct {
	// Fingerprint is the hash of the request body the response belongs to.
	Fingerprint string      `json:"fingerprint"`
	Status      int         `json:"status"`
	Header      http.Header `json:"header"`
	Body        []byte      `json:"body"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Store wraps a BoltDB database of Records.
type Store struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time
}

// Open opens (or creates) the database at path. Records older than ttl are
// treated as missing; ttl <= 0 keeps them forever.
func Open(path string, ttl time.Duration) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open idempotency store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &Store{db: db, ttl: ttl, now: time.Now}, nil
}

// Close releases the database file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the live record for key or ErrNotFound.
func (s *Store) Get(key string) (*Record, error) {
	var rec Record

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketName)).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &rec)
	})
	if err != nil {
		return nil, err
	}
	if s.expired(&rec) {
		return nil, ErrNotFound
	}

	return &rec, nil
}

// Put stores rec under key unless a live record already exists, in which
// case the stored record is returned unchanged with created=false.
func (s *Store) Put(key string, rec *Record) (*Record, bool, error) {
	var result Record
	created := false

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		if existing := b.Get([]byte(key)); existing != nil {
			if err := json.Unmarshal(existing, &result); err != nil {
				return err
			}
			if !s.expired(&result) {
				return nil
			}
		}

		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = s.now().UTC()
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}

		result = *rec
		created = true
		return b.Put([]byte(key), data)
	})
	if err != nil {
		return nil, false, err
	}

	return &result, created, nil
}

// Purge deletes expired records and returns how many were removed.
func (s *Store) Purge() (int, error) {
	if s.ttl <= 0 {
		return 0, nil
	}

	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil || s.expired(&rec) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		// Deleting while iterating with ForEach is unsafe in bolt.
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

func (s *Store) expired(rec *Record) bool {
	return s.ttl > 0 && s.now().Sub(rec.CreatedAt) > s.ttl
}
