package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeTransactionKind distinguishes money received against a student's fees
// from a billing that raises the amount the student owes.
type FeeTransactionKind string

const (
	FeeTransactionPayment FeeTransactionKind = "payment"
	FeeTransactionBilling FeeTransactionKind = "billing"
)

// PaymentMethod is how a fee payment was settled.
type PaymentMethod string

const (
	MethodCash        PaymentMethod = "cash"
	MethodBank        PaymentMethod = "bank"
	MethodMobileMoney PaymentMethod = "mobile_money"
	MethodBursary     PaymentMethod = "bursary"
	MethodScholarship PaymentMethod = "scholarship"
)

// Waiver reports whether the method settles fees without money changing
// hands. Waived payments post against bursary expense and accounts
// receivable instead of cash.
func (m PaymentMethod) Waiver() bool {
	return m == MethodBursary || m == MethodScholarship
}

// FeeTransaction is a payment or billing against a student's fees.
// JournalEntryID is the idempotency marker: empty means the record has not
// been posted to the ledger; it transitions empty -> set exactly once.
type FeeTransaction struct {
	ID             string             `json:"id"`
	StudentID      string             `json:"student_id"`
	FeeItemID      string             `json:"fee_item_id"`
	Kind           FeeTransactionKind `json:"kind"`
	Amount         decimal.Decimal    `json:"amount"`
	Date           time.Time          `json:"date"`
	Method         PaymentMethod      `json:"method,omitempty"`
	JournalEntryID string             `json:"journal_entry_id,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// IncomeRecord is miscellaneous (non-fee) income. AccountID is the revenue
// account chosen at entry time.
type IncomeRecord struct {
	ID             string          `json:"id"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	Date           time.Time       `json:"date"`
	AccountID      string          `json:"account_id"`
	JournalEntryID string          `json:"journal_entry_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ExpenseRecord is a school expense. AccountID is the expense account
// chosen at entry time.
type ExpenseRecord struct {
	ID             string          `json:"id"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	Date           time.Time       `json:"date"`
	AccountID      string          `json:"account_id"`
	JournalEntryID string          `json:"journal_entry_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Student is the slice of the student record this subsystem touches: the
// backfill's data-hygiene step deactivates students left in the placeholder
// demo class.
type Student struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ClassName string `json:"class_name"`
	Active    bool   `json:"active"`
}
