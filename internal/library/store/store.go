package store

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"libris/internal/library"
)

const bucket = "library"

// Persisted keys, one JSON array per collection.
const (
	keyBooks        = "library-books"
	keyMembers      = "library-members"
	keyTransactions = "library-transactions"
)

// Store persists the three library collections as JSON arrays under fixed
// keys in a single bbolt bucket. Each save rewrites the whole collection in
// one bbolt transaction, so an individual key is never partially written.
type Store struct {
	db *bbolt.DB
}

func New(db *bbolt.DB) *Store {
	return &Store{db: db}
}

// load unmarshals the collection stored under key into dst. A missing
// bucket or key means an empty collection; a value that fails to parse
// means the persisted data is corrupt.
func (s *Store) load(key string, dst any) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}

		raw := b.Get([]byte(key))
		if raw == nil {
			return nil
		}

		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("%w: %s holds malformed JSON: %v", library.ErrCorruptState, key, err)
		}

		return nil
	})
}

func (s *Store) save(key string, collection any) error {
	raw, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return fmt.Errorf("creating bucket: %w", err)
		}

		if err := b.Put([]byte(key), raw); err != nil {
			return fmt.Errorf("writing %s: %w", key, err)
		}

		return nil
	})
}

func (s *Store) LoadBooks(_ context.Context) ([]*library.Book, error) {
	var books []*library.Book
	if err := s.load(keyBooks, &books); err != nil {
		return nil, err
	}

	return books, nil
}

func (s *Store) SaveBooks(_ context.Context, books []*library.Book) error {
	if books == nil {
		books = []*library.Book{}
	}

	return s.save(keyBooks, books)
}

func (s *Store) LoadMembers(_ context.Context) ([]*library.Member, error) {
	var members []*library.Member
	if err := s.load(keyMembers, &members); err != nil {
		return nil, err
	}

	return members, nil
}

func (s *Store) SaveMembers(_ context.Context, members []*library.Member) error {
	if members == nil {
		members = []*library.Member{}
	}

	return s.save(keyMembers, members)
}

func (s *Store) LoadTransactions(_ context.Context) ([]*library.Transaction, error) {
	var txs []*library.Transaction
	if err := s.load(keyTransactions, &txs); err != nil {
		return nil, err
	}

	return txs, nil
}

func (s *Store) SaveTransactions(_ context.Context, txs []*library.Transaction) error {
	if txs == nil {
		txs = []*library.Transaction{}
	}

	return s.save(keyTransactions, txs)
}
