// Package refstore persists fingerprints of known-good certificates and
// serves them as the reference corpus for perceptual comparison.
package refstore

import (
	"context"
	"database/sql"

	"certverify/internal/common/errors"
	"certverify/internal/common/logger"
)

// Querier is the slice of the Postgres client the store needs.
type Querier interface {
	Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Store reads and writes the reference_fingerprints table. The phash column
// is stored as BIGINT; Postgres has no unsigned 64-bit type so the value is
// reinterpreted on the way in and out.
type Store struct {
	db  Querier
	log logger.Logger
}

func New(db Querier, log logger.Logger) *Store {
	return &Store{db: db, log: log}
}

// ReferenceHashes returns every known-good perceptual hash. An empty table
// is not an error; the perceptual check degrades to NO_DB on its own.
func (s *Store) ReferenceHashes(ctx context.Context) ([]uint64, error) {
	rows, err := s.db.Query(ctx, `SELECT phash FROM reference_fingerprints`)
	if err != nil {
		return nil, errors.NewReferenceStoreError(err)
	}
	defer rows.Close()

	var hashes []uint64
	for rows.Next() {
		var signed int64
		if err := rows.Scan(&signed); err != nil {
			return nil, errors.NewReferenceStoreError(err)
		}
		hashes = append(hashes, uint64(signed))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewReferenceStoreError(err)
	}
	return hashes, nil
}

// Save records a verified certificate's fingerprint. Duplicate binary
// hashes are ignored so re-verifying the same document is idempotent.
func (s *Store) Save(ctx context.Context, binaryHash, canonicalHash string, phash uint64) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO reference_fingerprints (binary_hash, canonical_hash, phash)
		VALUES ($1, $2, $3)
		ON CONFLICT (binary_hash) DO NOTHING`,
		binaryHash, canonicalHash, int64(phash))
	if err != nil {
		return errors.NewReferenceStoreError(err)
	}
	return nil
}
