// Package ledger is the append-only journal entry store and its entry
// invariants.
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/schoolbooks-dev/schoolbooks/internal/model"
)

// BalanceTolerance is the maximum allowed difference between an entry's
// total debits and total credits. Amounts arrive from upstream systems that
// round independently, so exact equality is not required.
var BalanceTolerance = decimal.NewFromFloat(0.001)

// ValidationError describes a single invariant violation on an entry.
type ValidationError struct {
	EntryID     string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("entry %s: %s", e.EntryID, e.Description)
}

// AccountChecker tests whether an account ID exists in the tenant's chart
// of accounts.
type AccountChecker func(accountID string) bool

// ValidateEntry enforces the journal entry invariants:
//
//  1. at least two lines;
//  2. exactly one of debit/credit is set per line, and it is positive;
//  3. every line references a known account;
//  4. total debits equal total credits within BalanceTolerance.
func ValidateEntry(e model.JournalEntry, accounts AccountChecker) []ValidationError {
	var errs []ValidationError

	if len(e.Lines) < 2 {
		errs = append(errs, ValidationError{
			EntryID:     e.ID,
			Description: fmt.Sprintf("entry has %d lines, need at least 2", len(e.Lines)),
		})
	}

	for i, line := range e.Lines {
		hasDebit := line.Debit.IsPositive()
		hasCredit := line.Credit.IsPositive()
		switch {
		case line.Debit.IsNegative() || line.Credit.IsNegative():
			errs = append(errs, ValidationError{
				EntryID:     e.ID,
				Description: fmt.Sprintf("line %d: amounts must not be negative", i+1),
			})
		case hasDebit == hasCredit:
			errs = append(errs, ValidationError{
				EntryID:     e.ID,
				Description: fmt.Sprintf("line %d: exactly one of debit or credit must be set", i+1),
			})
		}

		if accounts != nil && !accounts(line.AccountID) {
			errs = append(errs, ValidationError{
				EntryID:     e.ID,
				Description: fmt.Sprintf("line %d: unknown account %s", i+1, line.AccountID),
			})
		}
	}

	debit := e.TotalDebit()
	credit := e.TotalCredit()
	if debit.Sub(credit).Abs().GreaterThanOrEqual(BalanceTolerance) {
		errs = append(errs, ValidationError{
			EntryID:     e.ID,
			Description: fmt.Sprintf("debits (%s) != credits (%s)", debit.StringFixed(2), credit.StringFixed(2)),
		})
	}

	return errs
}
