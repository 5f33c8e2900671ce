package statement

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteTrialBalanceCSV renders a trial balance for download.
func WriteTrialBalanceCSV(w io.Writer, tb TrialBalance) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"account", "type", "debit", "credit"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, row := range tb.Rows {
		rec := []string{row.AccountName, string(row.AccountType), row.Debit.StringFixed(2), row.Credit.StringFixed(2)}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row for %s: %w", row.AccountName, err)
		}
	}
	if err := cw.Write([]string{"TOTAL", "", tb.TotalDebit.StringFixed(2), tb.TotalCredit.StringFixed(2)}); err != nil {
		return fmt.Errorf("writing totals: %w", err)
	}
	return cw.Error()
}

// WriteIncomeStatementCSV renders an income statement for download.
func WriteIncomeStatementCSV(w io.Writer, is IncomeStatement) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"section", "account", "amount"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, l := range is.RevenueLines {
		if err := cw.Write([]string{"revenue", l.AccountName, l.Amount.StringFixed(2)}); err != nil {
			return fmt.Errorf("writing revenue row: %w", err)
		}
	}
	for _, l := range is.ExpenseLines {
		if err := cw.Write([]string{"expense", l.AccountName, l.Amount.StringFixed(2)}); err != nil {
			return fmt.Errorf("writing expense row: %w", err)
		}
	}
	rows := [][]string{
		{"total", "Total Revenue", is.TotalRevenue.StringFixed(2)},
		{"total", "Total Expenses", is.TotalExpenses.StringFixed(2)},
		{"total", "Net Income", is.NetIncome.StringFixed(2)},
	}
	for _, rec := range rows {
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing totals: %w", err)
		}
	}
	return cw.Error()
}

// WriteBalanceSheetCSV renders a balance sheet for download.
func WriteBalanceSheetCSV(w io.Writer, bs BalanceSheet) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"section", "account", "amount"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	sections := []struct {
		name  string
		lines []Line
	}{
		{"assets", bs.Assets},
		{"liabilities", bs.Liabilities},
		{"equity", bs.Equity},
	}
	for _, sec := range sections {
		for _, l := range sec.lines {
			if err := cw.Write([]string{sec.name, l.AccountName, l.Amount.StringFixed(2)}); err != nil {
				return fmt.Errorf("writing %s row: %w", sec.name, err)
			}
		}
	}
	rows := [][]string{
		{"equity", "Net Income (current period)", bs.NetIncome.StringFixed(2)},
		{"total", "Total Assets", bs.TotalAssets.StringFixed(2)},
		{"total", "Total Liabilities & Equity", bs.TotalLiabilitiesAndEquity.StringFixed(2)},
	}
	for _, rec := range rows {
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing totals: %w", err)
		}
	}
	return cw.Error()
}
