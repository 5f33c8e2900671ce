package store

import (
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// MaxBatchOps is the documented per-batch operation ceiling. Callers that
// interleave other writes with a batch should stay below it; the backfill
// coordinator caps itself at roughly 90% of this value.
const MaxBatchOps = 500

type batchOp struct {
	tenantID   string
	collection string
	docID      string
	data       []byte
}

// WriteBatch accumulates document writes to be applied in one transaction.
// Documents are marshaled as they are added, so a marshal failure surfaces
// at Put time rather than at commit.
type WriteBatch struct {
	ops []batchOp
}

// NewWriteBatch returns an empty batch.
func NewWriteBatch() *WriteBatch {
	return &WriteBatch{}
}

// Put adds a document write to the batch.
func (b *WriteBatch) Put(tenantID, collection, docID string, v any) error {
	data, err := marshalDoc(v)
	if err != nil {
		return err
	}
	b.ops = append(b.ops, batchOp{tenantID: tenantID, collection: collection, docID: docID, data: data})
	return nil
}

// Len returns the number of pending operations.
func (b *WriteBatch) Len() int {
	return len(b.ops)
}

// Reset discards all pending operations so the batch can be reused.
func (b *WriteBatch) Reset() {
	b.ops = b.ops[:0]
}

// Commit applies all pending operations in a single transaction and resets
// the batch on success. A batch exceeding MaxBatchOps is rejected outright.
func (s *Store) Commit(b *WriteBatch) error {
	if b.Len() == 0 {
		return nil
	}
	if b.Len() > MaxBatchOps {
		return fmt.Errorf("write batch has %d operations, maximum is %d", b.Len(), MaxBatchOps)
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		for _, op := range b.ops {
			bucket, err := collectionBucket(tx, op.tenantID, op.collection)
			if err != nil {
				return err
			}
			if err := bucket.Put([]byte(op.docID), op.data); err != nil {
				return fmt.Errorf("writing %s/%s/%s: %w", op.tenantID, op.collection, op.docID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("committing batch of %d: %w", b.Len(), err)
	}
	b.Reset()
	return nil
}
