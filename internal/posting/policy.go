// Package posting converts source financial events into balanced journal
// entries and writes each entry at most once.
//
// The account-mapping policy is a pure function from event shape to entry
// lines; both the live event-triggered path and the backfill sweep go
// through it, so the mapping rules exist in exactly one place.
package posting

import (
	"fmt"

	"github.com/schoolbooks-dev/schoolbooks/internal/model"
)

// DecideFeeTransaction maps a fee transaction to entry lines.
//
//	payment, ordinary method:  debit cash,            credit fee item revenue
//	payment, waiver method:    debit bursary expense, credit accounts receivable
//	billing:                   debit receivable,      credit fee item revenue
func DecideFeeTransaction(ft model.FeeTransaction, cfg model.TenantLedgerConfig) ([]model.EntryLine, string, error) {
	revenue := cfg.RevenueAccountFor(ft.FeeItemID)

	switch {
	case ft.Kind == model.FeeTransactionBilling:
		if cfg.DefaultReceivableAccountID == "" {
			return nil, "", missingMapping("default accounts receivable account")
		}
		if revenue == "" {
			return nil, "", missingMapping(fmt.Sprintf("revenue account for fee item %q", ft.FeeItemID))
		}
		return []model.EntryLine{
			{AccountID: cfg.DefaultReceivableAccountID, Debit: ft.Amount},
			{AccountID: revenue, Credit: ft.Amount},
		}, fmt.Sprintf("Fee billing for student %s", ft.StudentID), nil

	case ft.Method.Waiver():
		if cfg.DefaultBursaryExpenseAccountID == "" {
			return nil, "", missingMapping("default bursary expense account")
		}
		if cfg.DefaultReceivableAccountID == "" {
			return nil, "", missingMapping("default accounts receivable account")
		}
		return []model.EntryLine{
			{AccountID: cfg.DefaultBursaryExpenseAccountID, Debit: ft.Amount},
			{AccountID: cfg.DefaultReceivableAccountID, Credit: ft.Amount},
		}, fmt.Sprintf("Fee waiver (%s) for student %s", ft.Method, ft.StudentID), nil

	default:
		if cfg.DefaultCashAccountID == "" {
			return nil, "", missingMapping("default cash account")
		}
		if revenue == "" {
			return nil, "", missingMapping(fmt.Sprintf("revenue account for fee item %q", ft.FeeItemID))
		}
		return []model.EntryLine{
			{AccountID: cfg.DefaultCashAccountID, Debit: ft.Amount},
			{AccountID: revenue, Credit: ft.Amount},
		}, fmt.Sprintf("Fee payment (%s) for student %s", ft.Method, ft.StudentID), nil
	}
}

// DecideIncome maps an income record: debit cash, credit the designated
// revenue account.
func DecideIncome(in model.IncomeRecord, cfg model.TenantLedgerConfig) ([]model.EntryLine, string, error) {
	if cfg.DefaultCashAccountID == "" {
		return nil, "", missingMapping("default cash account")
	}
	if in.AccountID == "" {
		return nil, "", &ConfigError{Reason: fmt.Sprintf("income record %s has no revenue account", in.ID)}
	}
	return []model.EntryLine{
		{AccountID: cfg.DefaultCashAccountID, Debit: in.Amount},
		{AccountID: in.AccountID, Credit: in.Amount},
	}, in.Description, nil
}

// DecideExpense maps an expense record: debit the designated expense
// account, credit cash.
func DecideExpense(ex model.ExpenseRecord, cfg model.TenantLedgerConfig) ([]model.EntryLine, string, error) {
	if cfg.DefaultCashAccountID == "" {
		return nil, "", missingMapping("default cash account")
	}
	if ex.AccountID == "" {
		return nil, "", &ConfigError{Reason: fmt.Sprintf("expense record %s has no expense account", ex.ID)}
	}
	return []model.EntryLine{
		{AccountID: ex.AccountID, Debit: ex.Amount},
		{AccountID: cfg.DefaultCashAccountID, Credit: ex.Amount},
	}, ex.Description, nil
}
