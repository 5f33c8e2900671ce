package statement

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolbooks-dev/schoolbooks/internal/model"
)

func TestWriteTrialBalanceCSV(t *testing.T) {
	tb := TrialBalance{
		AsOf: time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Rows: []TrialBalanceRow{
			{AccountName: "Cash on Hand", AccountType: model.AccountTypeAsset, Debit: dec("60000"), Credit: dec("0")},
			{AccountName: "School Fees Revenue", AccountType: model.AccountTypeRevenue, Debit: dec("0"), Credit: dec("60000")},
		},
		TotalDebit:  dec("60000"),
		TotalCredit: dec("60000"),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTrialBalanceCSV(&buf, tb))

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4, "header + 2 rows + total")
	assert.Equal(t, "account,type,debit,credit", lines[0])
	assert.Contains(t, out, "Cash on Hand,asset,60000.00,0.00")
	assert.Contains(t, out, "TOTAL,,60000.00,60000.00")
}

func TestWriteIncomeStatementCSV(t *testing.T) {
	is := IncomeStatement{
		RevenueLines:  []Line{{AccountName: "School Fees Revenue", Amount: dec("50000")}},
		ExpenseLines:  []Line{{AccountName: "Utilities", Amount: dec("20000")}},
		TotalRevenue:  dec("50000"),
		TotalExpenses: dec("20000"),
		NetIncome:     dec("30000"),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteIncomeStatementCSV(&buf, is))

	out := buf.String()
	assert.Contains(t, out, "revenue,School Fees Revenue,50000.00")
	assert.Contains(t, out, "expense,Utilities,20000.00")
	assert.Contains(t, out, "total,Net Income,30000.00")
}

func TestWriteBalanceSheetCSV(t *testing.T) {
	bs := BalanceSheet{
		Assets:                    []Line{{AccountName: "Cash on Hand", Amount: dec("60000")}},
		Liabilities:               []Line{{AccountName: "Bank Loan", Amount: dec("30000")}},
		NetIncome:                 dec("30000"),
		TotalAssets:               dec("60000"),
		TotalLiabilitiesAndEquity: dec("60000"),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBalanceSheetCSV(&buf, bs))

	out := buf.String()
	assert.Contains(t, out, "assets,Cash on Hand,60000.00")
	assert.Contains(t, out, "liabilities,Bank Loan,30000.00")
	assert.Contains(t, out, "equity,Net Income (current period),30000.00")
	assert.Contains(t, out, "total,Total Liabilities & Equity,60000.00")
}
