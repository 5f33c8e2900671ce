package model

import "time"

// AccountType classifies accounts in the chart of accounts. The type fixes
// the account's natural balance sign and is immutable once journal entry
// lines reference the account.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// Valid reports whether t is one of the five account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// DebitNormal reports whether the account type carries a debit-normal
// balance (assets and expenses). The remaining types are credit-normal.
func (t AccountType) DebitNormal() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// Account is one row in a tenant's chart of accounts.
type Account struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Type        AccountType `json:"type"`
	Description string      `json:"description,omitempty"`
	Archived    bool        `json:"archived,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}
