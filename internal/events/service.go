// Package events is the thin interface onto the source financial event
// collections (fee transactions, income, expenses) owned by the rest of the
// platform. The ledger core reads them, and owns exactly one mutation: the
// one-way empty -> set transition of each record's journal entry link.
package events

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/schoolbooks-dev/schoolbooks/internal/id"
	"github.com/schoolbooks-dev/schoolbooks/internal/model"
	"github.com/schoolbooks-dev/schoolbooks/internal/store"
)

var (
	// ErrNotFound is returned when a source event does not exist.
	ErrNotFound = errors.New("event not found")

	// ErrAlreadyLinked is returned by Link when the record already carries
	// a journal entry link. This is the idempotency guard firing, not a
	// data fault.
	ErrAlreadyLinked = errors.New("event already linked to a journal entry")
)

// Service reads and mutates source event collections for one store.
type Service struct {
	store *store.Store
	now   func() time.Time
}

// NewService creates an events Service.
func NewService(st *store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

// CreateFeeTransaction durably stores a fee payment or billing.
func (s *Service) CreateFeeTransaction(tenantID string, ft model.FeeTransaction) (model.FeeTransaction, error) {
	if !ft.Amount.IsPositive() {
		return model.FeeTransaction{}, fmt.Errorf("fee transaction amount must be positive")
	}
	if ft.Kind != model.FeeTransactionPayment && ft.Kind != model.FeeTransactionBilling {
		return model.FeeTransaction{}, fmt.Errorf("invalid fee transaction kind %q", ft.Kind)
	}
	if ft.ID == "" {
		ft.ID = id.New(id.PrefixFeeTransaction)
	}
	if ft.CreatedAt.IsZero() {
		ft.CreatedAt = s.now().UTC()
	}
	if err := s.store.Put(tenantID, store.CollFeeTransactions, ft.ID, ft); err != nil {
		return model.FeeTransaction{}, fmt.Errorf("storing fee transaction: %w", err)
	}
	return ft, nil
}

// CreateIncome durably stores an income record.
func (s *Service) CreateIncome(tenantID string, in model.IncomeRecord) (model.IncomeRecord, error) {
	if !in.Amount.IsPositive() {
		return model.IncomeRecord{}, fmt.Errorf("income amount must be positive")
	}
	if in.ID == "" {
		in.ID = id.New(id.PrefixIncome)
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = s.now().UTC()
	}
	if err := s.store.Put(tenantID, store.CollIncome, in.ID, in); err != nil {
		return model.IncomeRecord{}, fmt.Errorf("storing income: %w", err)
	}
	return in, nil
}

// CreateExpense durably stores an expense record.
func (s *Service) CreateExpense(tenantID string, ex model.ExpenseRecord) (model.ExpenseRecord, error) {
	if !ex.Amount.IsPositive() {
		return model.ExpenseRecord{}, fmt.Errorf("expense amount must be positive")
	}
	if ex.ID == "" {
		ex.ID = id.New(id.PrefixExpense)
	}
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = s.now().UTC()
	}
	if err := s.store.Put(tenantID, store.CollExpenses, ex.ID, ex); err != nil {
		return model.ExpenseRecord{}, fmt.Errorf("storing expense: %w", err)
	}
	return ex, nil
}

// FeeTransactions returns all fee transactions, oldest first.
func (s *Service) FeeTransactions(tenantID string) ([]model.FeeTransaction, error) {
	var fts []model.FeeTransaction
	err := s.store.List(tenantID, store.CollFeeTransactions, func(docID string, data []byte) error {
		var ft model.FeeTransaction
		if err := store.Unmarshal(data, &ft); err != nil {
			return fmt.Errorf("fee transaction %s: %w", docID, err)
		}
		fts = append(fts, ft)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing fee transactions: %w", err)
	}
	sort.Slice(fts, func(i, j int) bool { return fts[i].Date.Before(fts[j].Date) })
	return fts, nil
}

// Income returns all income records, oldest first.
func (s *Service) Income(tenantID string) ([]model.IncomeRecord, error) {
	var ins []model.IncomeRecord
	err := s.store.List(tenantID, store.CollIncome, func(docID string, data []byte) error {
		var in model.IncomeRecord
		if err := store.Unmarshal(data, &in); err != nil {
			return fmt.Errorf("income %s: %w", docID, err)
		}
		ins = append(ins, in)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing income: %w", err)
	}
	sort.Slice(ins, func(i, j int) bool { return ins[i].Date.Before(ins[j].Date) })
	return ins, nil
}

// Expenses returns all expense records, oldest first.
func (s *Service) Expenses(tenantID string) ([]model.ExpenseRecord, error) {
	var exs []model.ExpenseRecord
	err := s.store.List(tenantID, store.CollExpenses, func(docID string, data []byte) error {
		var ex model.ExpenseRecord
		if err := store.Unmarshal(data, &ex); err != nil {
			return fmt.Errorf("expense %s: %w", docID, err)
		}
		exs = append(exs, ex)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	sort.Slice(exs, func(i, j int) bool { return exs[i].Date.Before(exs[j].Date) })
	return exs, nil
}

// Link sets the journal entry link on a source record. The check and the
// write happen in one store transaction; a record that is already linked
// returns ErrAlreadyLinked and stays untouched, which makes retried
// postings safe.
func (s *Service) Link(tenantID string, srcType model.SourceType, srcID, entryID string) error {
	collection, err := collectionFor(srcType)
	if err != nil {
		return err
	}

	err = s.store.Update(tenantID, collection, srcID, func(data []byte) (any, error) {
		switch srcType {
		case model.SourceFeeTransaction:
			var ft model.FeeTransaction
			if err := store.Unmarshal(data, &ft); err != nil {
				return nil, err
			}
			if ft.JournalEntryID != "" {
				return nil, ErrAlreadyLinked
			}
			ft.JournalEntryID = entryID
			return ft, nil
		case model.SourceIncome:
			var in model.IncomeRecord
			if err := store.Unmarshal(data, &in); err != nil {
				return nil, err
			}
			if in.JournalEntryID != "" {
				return nil, ErrAlreadyLinked
			}
			in.JournalEntryID = entryID
			return in, nil
		default:
			var ex model.ExpenseRecord
			if err := store.Unmarshal(data, &ex); err != nil {
				return nil, err
			}
			if ex.JournalEntryID != "" {
				return nil, ErrAlreadyLinked
			}
			ex.JournalEntryID = entryID
			return ex, nil
		}
	})
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", srcType, srcID, ErrNotFound)
	}
	if errors.Is(err, ErrAlreadyLinked) {
		return err
	}
	if err != nil {
		return fmt.Errorf("linking %s %s: %w", srcType, srcID, err)
	}
	return nil
}

// LinkedEntryID returns the journal entry a source record links to, or ""
// if it has not been posted.
func (s *Service) LinkedEntryID(tenantID string, srcType model.SourceType, srcID string) (string, error) {
	collection, err := collectionFor(srcType)
	if err != nil {
		return "", err
	}

	var doc struct {
		JournalEntryID string `json:"journal_entry_id"`
	}
	err = s.store.Get(tenantID, collection, srcID, &doc)
	if errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("%s %s: %w", srcType, srcID, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("loading %s %s: %w", srcType, srcID, err)
	}
	return doc.JournalEntryID, nil
}

// Students returns all student records.
func (s *Service) Students(tenantID string) ([]model.Student, error) {
	var students []model.Student
	err := s.store.List(tenantID, store.CollStudents, func(docID string, data []byte) error {
		var st model.Student
		if err := store.Unmarshal(data, &st); err != nil {
			return fmt.Errorf("student %s: %w", docID, err)
		}
		students = append(students, st)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing students: %w", err)
	}
	return students, nil
}

// SaveStudent stores a student record.
func (s *Service) SaveStudent(tenantID string, st model.Student) (model.Student, error) {
	if st.ID == "" {
		st.ID = id.New(id.PrefixStudent)
	}
	if err := s.store.Put(tenantID, store.CollStudents, st.ID, st); err != nil {
		return model.Student{}, fmt.Errorf("storing student: %w", err)
	}
	return st, nil
}

func collectionFor(srcType model.SourceType) (string, error) {
	switch srcType {
	case model.SourceFeeTransaction:
		return store.CollFeeTransactions, nil
	case model.SourceIncome:
		return store.CollIncome, nil
	case model.SourceExpense:
		return store.CollExpenses, nil
	default:
		return "", fmt.Errorf("source type %q has no event collection", srcType)
	}
}
