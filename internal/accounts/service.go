// Package accounts is the chart-of-accounts registry: named financial
// accounts with a fixed type that determines their natural balance sign.
package accounts

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/schoolbooks-dev/schoolbooks/internal/id"
	"github.com/schoolbooks-dev/schoolbooks/internal/model"
	"github.com/schoolbooks-dev/schoolbooks/internal/store"
)

// ErrNotFound is returned when an account does not exist.
var ErrNotFound = errors.New("account not found")

// Service provides lookup and administration over a tenant's chart of
// accounts.
type Service struct {
	store *store.Store
}

// NewService creates an accounts Service.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Create stores a new account. An empty ID is assigned; the name must be
// non-empty and the type one of the five account types.
func (s *Service) Create(tenantID string, acct model.Account) (model.Account, error) {
	if acct.Name == "" {
		return model.Account{}, fmt.Errorf("account name must not be empty")
	}
	if !acct.Type.Valid() {
		return model.Account{}, fmt.Errorf("invalid account type %q", acct.Type)
	}
	if acct.ID == "" {
		acct.ID = id.New(id.PrefixAccount)
	}
	if acct.CreatedAt.IsZero() {
		acct.CreatedAt = time.Now().UTC()
	}
	if err := s.store.Put(tenantID, store.CollAccounts, acct.ID, acct); err != nil {
		return model.Account{}, fmt.Errorf("storing account: %w", err)
	}
	return acct, nil
}

// Get returns an account by ID.
func (s *Service) Get(tenantID, accountID string) (model.Account, error) {
	var acct model.Account
	err := s.store.Get(tenantID, store.CollAccounts, accountID, &acct)
	if errors.Is(err, store.ErrNotFound) {
		return model.Account{}, fmt.Errorf("account %s: %w", accountID, ErrNotFound)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("loading account %s: %w", accountID, err)
	}
	return acct, nil
}

// Exists reports whether an account ID exists.
func (s *Service) Exists(tenantID, accountID string) bool {
	_, err := s.Get(tenantID, accountID)
	return err == nil
}

// List returns all accounts, sorted by name. A non-empty filter restricts
// the result to one account type.
func (s *Service) List(tenantID string, filter model.AccountType) ([]model.Account, error) {
	var accts []model.Account
	err := s.store.List(tenantID, store.CollAccounts, func(docID string, data []byte) error {
		var acct model.Account
		if err := store.Unmarshal(data, &acct); err != nil {
			return fmt.Errorf("account %s: %w", docID, err)
		}
		if filter != "" && acct.Type != filter {
			return nil
		}
		accts = append(accts, acct)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	sort.Slice(accts, func(i, j int) bool { return accts[i].Name < accts[j].Name })
	return accts, nil
}

// ByID returns a lookup map over all accounts of a tenant. Statement
// derivation uses it to resolve line accounts in one pass.
func (s *Service) ByID(tenantID string) (map[string]model.Account, error) {
	accts, err := s.List(tenantID, "")
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.Account, len(accts))
	for _, a := range accts {
		byID[a.ID] = a
	}
	return byID, nil
}
