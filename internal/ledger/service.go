package ledger

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/schoolbooks-dev/schoolbooks/internal/accounts"
	"github.com/schoolbooks-dev/schoolbooks/internal/id"
	"github.com/schoolbooks-dev/schoolbooks/internal/model"
	"github.com/schoolbooks-dev/schoolbooks/internal/store"
)

// ErrNotFound is returned when a journal entry does not exist.
var ErrNotFound = errors.New("journal entry not found")

// Service provides append and query access to a tenant's journal entries.
// Entries are never mutated or deleted; corrections are offsetting entries.
type Service struct {
	store    *store.Store
	accounts *accounts.Service
	now      func() time.Time
}

// NewService creates a ledger Service.
func NewService(st *store.Store, accts *accounts.Service) *Service {
	return &Service{store: st, accounts: accts, now: time.Now}
}

// Validate checks an entry against the tenant's chart of accounts without
// writing anything.
func (s *Service) Validate(tenantID string, e model.JournalEntry) []ValidationError {
	return ValidateEntry(e, func(accountID string) bool {
		return s.accounts.Exists(tenantID, accountID)
	})
}

// Append validates and stores a new journal entry. An empty ID is assigned.
// The entry is written exactly as validated; the caller owns idempotency
// for source-linked entries.
func (s *Service) Append(tenantID string, e model.JournalEntry) (model.JournalEntry, error) {
	if e.ID == "" {
		e.ID = id.NewJournalEntry()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now().UTC()
	}
	if e.SourceType == "" {
		e.SourceType = model.SourceManual
	}

	checker := func(accountID string) bool { return s.accounts.Exists(tenantID, accountID) }
	if verrs := ValidateEntry(e, checker); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		return model.JournalEntry{}, fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
	}

	if err := s.store.Put(tenantID, store.CollJournalEntries, e.ID, e); err != nil {
		return model.JournalEntry{}, fmt.Errorf("storing entry: %w", err)
	}
	return e, nil
}

// Get returns a journal entry by ID.
func (s *Service) Get(tenantID, entryID string) (model.JournalEntry, error) {
	var e model.JournalEntry
	err := s.store.Get(tenantID, store.CollJournalEntries, entryID, &e)
	if errors.Is(err, store.ErrNotFound) {
		return model.JournalEntry{}, fmt.Errorf("entry %s: %w", entryID, ErrNotFound)
	}
	if err != nil {
		return model.JournalEntry{}, fmt.Errorf("loading entry %s: %w", entryID, err)
	}
	return e, nil
}

// EntriesInRange returns entries with from <= date <= to, sorted by date
// then creation time. A zero from or to leaves that side unbounded.
func (s *Service) EntriesInRange(tenantID string, from, to time.Time) ([]model.JournalEntry, error) {
	return s.query(tenantID, func(e model.JournalEntry) bool {
		if !from.IsZero() && e.Date.Before(from) {
			return false
		}
		if !to.IsZero() && e.Date.After(to) {
			return false
		}
		return true
	})
}

// EntriesByAccount returns entries containing at least one line against the
// account, sorted by date.
func (s *Service) EntriesByAccount(tenantID, accountID string) ([]model.JournalEntry, error) {
	return s.query(tenantID, func(e model.JournalEntry) bool {
		for _, l := range e.Lines {
			if l.AccountID == accountID {
				return true
			}
		}
		return false
	})
}

func (s *Service) query(tenantID string, keep func(model.JournalEntry) bool) ([]model.JournalEntry, error) {
	var entries []model.JournalEntry
	err := s.store.List(tenantID, store.CollJournalEntries, func(docID string, data []byte) error {
		var e model.JournalEntry
		if err := store.Unmarshal(data, &e); err != nil {
			return fmt.Errorf("entry %s: %w", docID, err)
		}
		if keep(e) {
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.Before(entries[j].Date)
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}
