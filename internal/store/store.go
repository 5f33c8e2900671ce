// Package store wraps bbolt as a tenant-scoped JSON document store. Each
// tenant is a top-level bucket; each collection is a nested bucket keyed by
// document ID. The store offers get/put/update by ID, list-with-filter, and
// a bounded write batch applied in a single transaction.
package store

import (
	"errors"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
)

// Collection names used by the ledger core.
const (
	CollAccounts        = "accounts"
	CollJournalEntries  = "journal_entries"
	CollFeeTransactions = "fee_transactions"
	CollIncome          = "income"
	CollExpenses        = "expenses"
	CollStudents        = "students"
	CollSettings        = "settings"
	CollAudit           = "audit"
)

// Store is the bbolt-backed document store.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the database file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put marshals v and stores it under tenant/collection/id, overwriting any
// existing document.
func (s *Store) Put(tenantID, collection, docID string, v any) error {
	data, err := marshalDoc(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := collectionBucket(tx, tenantID, collection)
		if err != nil {
			return err
		}
		return b.Put([]byte(docID), data)
	})
}

// Get unmarshals the document at tenant/collection/id into v. Returns
// ErrNotFound if the document (or its collection) does not exist.
func (s *Store) Get(tenantID, collection, docID string, v any) error {
	return s.db.View(func(tx *bolt.Tx) error {
		b := viewBucket(tx, tenantID, collection)
		if b == nil {
			return ErrNotFound
		}
		data := b.Get([]byte(docID))
		if data == nil {
			return ErrNotFound
		}
		return Unmarshal(data, v)
	})
}

// Update applies mutate to the current document bytes and writes the result
// back, all within one transaction. mutate receives the raw document and
// returns the replacement value; returning an error aborts the write.
func (s *Store) Update(tenantID, collection, docID string, mutate func(data []byte) (any, error)) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := collectionBucket(tx, tenantID, collection)
		if err != nil {
			return err
		}
		data := b.Get([]byte(docID))
		if data == nil {
			return ErrNotFound
		}
		next, err := mutate(data)
		if err != nil {
			return err
		}
		out, err := marshalDoc(next)
		if err != nil {
			return err
		}
		return b.Put([]byte(docID), out)
	})
}

// List calls each for every document in a collection, in key order. A
// missing collection is an empty one. The byte slice is only valid for the
// duration of the callback; each must copy if it retains the data (the
// usual callback unmarshals immediately).
func (s *Store) List(tenantID, collection string, each func(docID string, data []byte) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		b := viewBucket(tx, tenantID, collection)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			return each(string(k), v)
		})
	})
}

// collectionBucket returns the nested collection bucket, creating buckets
// as needed. Only valid inside a writable transaction.
func collectionBucket(tx *bolt.Tx, tenantID, collection string) (*bolt.Bucket, error) {
	tb, err := tx.CreateBucketIfNotExists([]byte(tenantID))
	if err != nil {
		return nil, fmt.Errorf("creating tenant bucket %s: %w", tenantID, err)
	}
	b, err := tb.CreateBucketIfNotExists([]byte(collection))
	if err != nil {
		return nil, fmt.Errorf("creating collection bucket %s/%s: %w", tenantID, collection, err)
	}
	return b, nil
}

// viewBucket returns the nested collection bucket, or nil if either level
// does not exist yet.
func viewBucket(tx *bolt.Tx, tenantID, collection string) *bolt.Bucket {
	tb := tx.Bucket([]byte(tenantID))
	if tb == nil {
		return nil
	}
	return tb.Bucket([]byte(collection))
}
