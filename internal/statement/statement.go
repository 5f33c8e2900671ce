// Package statement derives trial balance, income statement, and balance
// sheet views by folding ledger lines. Derivation is read-only and never
// fails on imbalanced data; the accounting-equation check is reported as a
// warning alongside the figures, because hiding it would be worse.
package statement

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/schoolbooks-dev/schoolbooks/internal/accounts"
	"github.com/schoolbooks-dev/schoolbooks/internal/ledger"
	"github.com/schoolbooks-dev/schoolbooks/internal/model"
)

// Line is one account's aggregated figure on a statement, signed per the
// account type's natural balance.
type Line struct {
	AccountID   string          `json:"account_id"`
	AccountName string          `json:"account_name"`
	Amount      decimal.Decimal `json:"amount"`
}

// TrialBalanceRow shows an account's net balance in the conventional
// debit/credit columns.
type TrialBalanceRow struct {
	AccountID   string            `json:"account_id"`
	AccountName string            `json:"account_name"`
	AccountType model.AccountType `json:"account_type"`
	Debit       decimal.Decimal   `json:"debit"`
	Credit      decimal.Decimal   `json:"credit"`
}

// TrialBalance lists every account with activity on or before AsOf.
type TrialBalance struct {
	AsOf        time.Time         `json:"as_of"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"total_debit"`
	TotalCredit decimal.Decimal   `json:"total_credit"`
	Warning     string            `json:"warning,omitempty"`
}

// IncomeStatement aggregates revenue and expense activity over a period.
type IncomeStatement struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	RevenueLines  []Line          `json:"revenue_lines"`
	ExpenseLines  []Line          `json:"expense_lines"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetIncome     decimal.Decimal `json:"net_income"`
}

// BalanceSheet shows cumulative asset, liability and equity balances as of
// a date, with the period's net income folded into equity in place of
// formal closing entries. PeriodStart records the net-income window so the
// convention is visible to callers.
type BalanceSheet struct {
	AsOf                      time.Time       `json:"as_of"`
	PeriodStart               time.Time       `json:"period_start"`
	Assets                    []Line          `json:"assets"`
	Liabilities               []Line          `json:"liabilities"`
	Equity                    []Line          `json:"equity"`
	NetIncome                 decimal.Decimal `json:"net_income"`
	TotalAssets               decimal.Decimal `json:"total_assets"`
	TotalLiabilitiesAndEquity decimal.Decimal `json:"total_liabilities_and_equity"`
	Warning                   string          `json:"warning,omitempty"`
}

// Deriver computes statements for a tenant.
type Deriver struct {
	ledger   *ledger.Service
	accounts *accounts.Service
}

// NewDeriver creates a Deriver.
func NewDeriver(led *ledger.Service, accts *accounts.Service) *Deriver {
	return &Deriver{ledger: led, accounts: accts}
}

// balances folds all lines of entries in [from, to] into per-account
// debit/credit totals.
type balances map[string]struct {
	debit  decimal.Decimal
	credit decimal.Decimal
}

func (d *Deriver) fold(tenantID string, from, to time.Time) (balances, error) {
	entries, err := d.ledger.EntriesInRange(tenantID, from, to)
	if err != nil {
		return nil, err
	}
	totals := balances{}
	for _, e := range entries {
		for _, l := range e.Lines {
			t := totals[l.AccountID]
			t.debit = t.debit.Add(l.Debit)
			t.credit = t.credit.Add(l.Credit)
			totals[l.AccountID] = t
		}
	}
	return totals, nil
}

// TrialBalance sums debit - credit per account across all entries dated on
// or before asOf.
func (d *Deriver) TrialBalance(tenantID string, asOf time.Time) (TrialBalance, error) {
	totals, err := d.fold(tenantID, time.Time{}, asOf)
	if err != nil {
		return TrialBalance{}, err
	}
	byID, err := d.accounts.ByID(tenantID)
	if err != nil {
		return TrialBalance{}, err
	}

	tb := TrialBalance{AsOf: asOf, TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for accountID, t := range totals {
		net := t.debit.Sub(t.credit)
		if net.IsZero() {
			continue
		}
		acct := byID[accountID]
		row := TrialBalanceRow{
			AccountID:   accountID,
			AccountName: acct.Name,
			AccountType: acct.Type,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
		}
		if net.IsPositive() {
			row.Debit = net
		} else {
			row.Credit = net.Neg()
		}
		tb.TotalDebit = tb.TotalDebit.Add(row.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(row.Credit)
		tb.Rows = append(tb.Rows, row)
	}
	sort.Slice(tb.Rows, func(i, j int) bool { return tb.Rows[i].AccountName < tb.Rows[j].AccountName })

	if diff := tb.TotalDebit.Sub(tb.TotalCredit).Abs(); diff.GreaterThanOrEqual(ledger.BalanceTolerance) {
		tb.Warning = fmt.Sprintf("trial balance out of balance by %s", diff.StringFixed(3))
	}
	return tb, nil
}

// IncomeStatement restricts entries to [from, to] and aggregates revenue
// (credit - debit) and expense (debit - credit) accounts. NetIncome is
// exactly TotalRevenue - TotalExpenses.
func (d *Deriver) IncomeStatement(tenantID string, from, to time.Time) (IncomeStatement, error) {
	totals, err := d.fold(tenantID, from, to)
	if err != nil {
		return IncomeStatement{}, err
	}
	byID, err := d.accounts.ByID(tenantID)
	if err != nil {
		return IncomeStatement{}, err
	}

	is := IncomeStatement{
		From:          from,
		To:            to,
		TotalRevenue:  decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for accountID, t := range totals {
		acct, ok := byID[accountID]
		if !ok {
			continue
		}
		switch acct.Type {
		case model.AccountTypeRevenue:
			amount := t.credit.Sub(t.debit)
			if amount.IsZero() {
				continue
			}
			is.RevenueLines = append(is.RevenueLines, Line{AccountID: accountID, AccountName: acct.Name, Amount: amount})
			is.TotalRevenue = is.TotalRevenue.Add(amount)
		case model.AccountTypeExpense:
			amount := t.debit.Sub(t.credit)
			if amount.IsZero() {
				continue
			}
			is.ExpenseLines = append(is.ExpenseLines, Line{AccountID: accountID, AccountName: acct.Name, Amount: amount})
			is.TotalExpenses = is.TotalExpenses.Add(amount)
		}
	}
	sortLines(is.RevenueLines)
	sortLines(is.ExpenseLines)
	is.NetIncome = is.TotalRevenue.Sub(is.TotalExpenses)
	return is, nil
}

// BalanceSheet reports cumulative balances as of asOf for balance-sheet
// accounts, folding the net income of [periodStart, asOf] into equity.
func (d *Deriver) BalanceSheet(tenantID string, periodStart, asOf time.Time) (BalanceSheet, error) {
	totals, err := d.fold(tenantID, time.Time{}, asOf)
	if err != nil {
		return BalanceSheet{}, err
	}
	byID, err := d.accounts.ByID(tenantID)
	if err != nil {
		return BalanceSheet{}, err
	}
	is, err := d.IncomeStatement(tenantID, periodStart, asOf)
	if err != nil {
		return BalanceSheet{}, err
	}

	bs := BalanceSheet{
		AsOf:        asOf,
		PeriodStart: periodStart,
		NetIncome:   is.NetIncome,
		TotalAssets: decimal.Zero,
	}
	totalLiabilities := decimal.Zero
	totalEquity := decimal.Zero

	for accountID, t := range totals {
		acct, ok := byID[accountID]
		if !ok {
			continue
		}
		switch acct.Type {
		case model.AccountTypeAsset:
			amount := t.debit.Sub(t.credit)
			if amount.IsZero() {
				continue
			}
			bs.Assets = append(bs.Assets, Line{AccountID: accountID, AccountName: acct.Name, Amount: amount})
			bs.TotalAssets = bs.TotalAssets.Add(amount)
		case model.AccountTypeLiability:
			amount := t.credit.Sub(t.debit)
			if amount.IsZero() {
				continue
			}
			bs.Liabilities = append(bs.Liabilities, Line{AccountID: accountID, AccountName: acct.Name, Amount: amount})
			totalLiabilities = totalLiabilities.Add(amount)
		case model.AccountTypeEquity:
			amount := t.credit.Sub(t.debit)
			if amount.IsZero() {
				continue
			}
			bs.Equity = append(bs.Equity, Line{AccountID: accountID, AccountName: acct.Name, Amount: amount})
			totalEquity = totalEquity.Add(amount)
		}
	}
	sortLines(bs.Assets)
	sortLines(bs.Liabilities)
	sortLines(bs.Equity)

	bs.TotalLiabilitiesAndEquity = totalLiabilities.Add(totalEquity).Add(bs.NetIncome)

	if diff := bs.TotalAssets.Sub(bs.TotalLiabilitiesAndEquity).Abs(); diff.GreaterThanOrEqual(ledger.BalanceTolerance) {
		bs.Warning = fmt.Sprintf(
			"total assets (%s) do not equal liabilities plus equity (%s), difference %s",
			bs.TotalAssets.StringFixed(2), bs.TotalLiabilitiesAndEquity.StringFixed(2), diff.StringFixed(3))
	}
	return bs, nil
}

func sortLines(lines []Line) {
	sort.Slice(lines, func(i, j int) bool { return lines[i].AccountName < lines[j].AccountName })
}
