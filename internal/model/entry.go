package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourceType identifies the kind of source document a journal entry was
// posted from.
type SourceType string

const (
	SourceFeeTransaction SourceType = "fee_transaction"
	SourceIncome         SourceType = "income"
	SourceExpense        SourceType = "expense"
	SourceManual         SourceType = "manual"
)

// EntryLine is one side of a double-entry posting. Exactly one of
// Debit/Credit is a positive amount; the other is zero.
type EntryLine struct {
	AccountID   string          `json:"account_id"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// JournalEntry is an immutable, balanced set of entry lines recording one
// financial event. Entries are append-only; corrections are made by
// offsetting entries, never in place.
type JournalEntry struct {
	ID          string      `json:"id"`
	Date        time.Time   `json:"date"`
	Description string      `json:"description"`
	Lines       []EntryLine `json:"lines"`
	SourceID    string      `json:"source_id,omitempty"`
	SourceType  SourceType  `json:"source_type"`
	PostedBy    string      `json:"posted_by,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// TotalDebit sums the debit side of all lines.
func (e JournalEntry) TotalDebit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.Debit)
	}
	return total
}

// TotalCredit sums the credit side of all lines.
func (e JournalEntry) TotalCredit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.Credit)
	}
	return total
}
