// Package audit keeps an append-only trail of ledger actions (postings,
// backfill runs) for operator triage. Audit writes are best-effort: a
// failed audit write never fails the action it records.
package audit

import (
	"fmt"
	"sort"
	"time"

	"github.com/schoolbooks-dev/schoolbooks/internal/id"
	"github.com/schoolbooks-dev/schoolbooks/internal/store"
)

// Actions recorded by the ledger core.
const (
	ActionPosted      = "posted"
	ActionManualEntry = "manual_entry"
	ActionBackfillRun = "backfill_run"
)

// Record is one row in the audit trail.
type Record struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	EntryID   string    `json:"entry_id,omitempty"`
	SourceID  string    `json:"source_id,omitempty"`
	Details   string    `json:"details,omitempty"`
}

// Service appends and reads audit records.
type Service struct {
	store *store.Store
	now   func() time.Time
}

// NewService creates an audit Service.
func NewService(st *store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

// Append stores a record, assigning ID and timestamp if unset.
func (s *Service) Append(tenantID string, rec Record) error {
	if rec.ID == "" {
		rec.ID = id.New(id.PrefixAudit)
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now().UTC()
	}
	if err := s.store.Put(tenantID, store.CollAudit, rec.ID, rec); err != nil {
		return fmt.Errorf("storing audit record: %w", err)
	}
	return nil
}

// List returns all audit records, oldest first.
func (s *Service) List(tenantID string) ([]Record, error) {
	var recs []Record
	err := s.store.List(tenantID, store.CollAudit, func(docID string, data []byte) error {
		var rec Record
		if err := store.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("audit record %s: %w", docID, err)
		}
		recs = append(recs, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing audit records: %w", err)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Timestamp.Before(recs[j].Timestamp) })
	return recs, nil
}
