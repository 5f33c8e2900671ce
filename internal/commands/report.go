package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/schoolbooks-dev/schoolbooks/internal/accounts"
	"github.com/schoolbooks-dev/schoolbooks/internal/config"
	"github.com/schoolbooks-dev/schoolbooks/internal/ledger"
	"github.com/schoolbooks-dev/schoolbooks/internal/statement"
	"github.com/schoolbooks-dev/schoolbooks/internal/store"
)

func newReportCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Derive financial statements from the ledger",
	}

	cmd.AddCommand(newTrialBalanceCommand(configPath))
	cmd.AddCommand(newIncomeStatementCommand(configPath))
	cmd.AddCommand(newBalanceSheetCommand(configPath))

	return cmd
}

func newTrialBalanceCommand(configPath *string) *cobra.Command {
	var tenant, asOf string
	var asCSV bool

	cmd := &cobra.Command{
		Use:   "trial-balance",
		Short: "Per-account net balances in debit/credit columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeriver(*configPath, func(d *statement.Deriver) error {
				asOfDate, err := parseDateFlag(asOf, time.Now().UTC())
				if err != nil {
					return err
				}
				tb, err := d.TrialBalance(tenant, asOfDate)
				if err != nil {
					return err
				}
				if asCSV {
					return statement.WriteTrialBalanceCSV(cmd.OutOrStdout(), tb)
				}
				printTrialBalance(cmd, tb)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant ID (required)")
	_ = cmd.MarkFlagRequired("tenant")
	cmd.Flags().StringVar(&asOf, "as-of", "", "report date YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "emit CSV instead of a table")

	return cmd
}

func newIncomeStatementCommand(configPath *string) *cobra.Command {
	var tenant, from, to string
	var asCSV bool

	cmd := &cobra.Command{
		Use:   "income-statement",
		Short: "Revenue and expenses over a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeriver(*configPath, func(d *statement.Deriver) error {
				fromDate, err := parseDateFlag(from, time.Time{})
				if err != nil {
					return err
				}
				toDate, err := parseDateFlag(to, time.Now().UTC())
				if err != nil {
					return err
				}
				is, err := d.IncomeStatement(tenant, fromDate, toDate)
				if err != nil {
					return err
				}
				if asCSV {
					return statement.WriteIncomeStatementCSV(cmd.OutOrStdout(), is)
				}
				printIncomeStatement(cmd, is)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant ID (required)")
	_ = cmd.MarkFlagRequired("tenant")
	cmd.Flags().StringVar(&from, "from", "", "period start YYYY-MM-DD (default all history)")
	cmd.Flags().StringVar(&to, "to", "", "period end YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "emit CSV instead of a table")

	return cmd
}

func newBalanceSheetCommand(configPath *string) *cobra.Command {
	var tenant, asOf, periodStart string
	var asCSV bool

	cmd := &cobra.Command{
		Use:   "balance-sheet",
		Short: "Assets, liabilities and equity as of a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeriver(*configPath, func(d *statement.Deriver) error {
				asOfDate, err := parseDateFlag(asOf, time.Now().UTC())
				if err != nil {
					return err
				}
				startDate, err := parseDateFlag(periodStart, time.Time{})
				if err != nil {
					return err
				}
				bs, err := d.BalanceSheet(tenant, startDate, asOfDate)
				if err != nil {
					return err
				}
				if asCSV {
					return statement.WriteBalanceSheetCSV(cmd.OutOrStdout(), bs)
				}
				printBalanceSheet(cmd, bs)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant ID (required)")
	_ = cmd.MarkFlagRequired("tenant")
	cmd.Flags().StringVar(&asOf, "as-of", "", "report date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&periodStart, "period-start", "", "net-income window start YYYY-MM-DD (default all history)")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "emit CSV instead of a table")

	return cmd
}

func withDeriver(configPath string, fn func(*statement.Deriver) error) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	accts := accounts.NewService(st)
	led := ledger.NewService(st, accts)
	return fn(statement.NewDeriver(led, accts))
}

func parseDateFlag(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", raw)
	}
	return t, nil
}

func printTrialBalance(cmd *cobra.Command, tb statement.TrialBalance) {
	cmd.Printf("Trial Balance as of %s\n\n", tb.AsOf.Format("2006-01-02"))
	cmd.Printf("%-36s %14s %14s\n", "Account", "Debit", "Credit")
	for _, row := range tb.Rows {
		cmd.Printf("%-36s %14s %14s\n", row.AccountName, row.Debit.StringFixed(2), row.Credit.StringFixed(2))
	}
	cmd.Printf("%-36s %14s %14s\n", "TOTAL", tb.TotalDebit.StringFixed(2), tb.TotalCredit.StringFixed(2))
	if tb.Warning != "" {
		cmd.Printf("\nWARNING: %s\n", tb.Warning)
	}
}

func printIncomeStatement(cmd *cobra.Command, is statement.IncomeStatement) {
	cmd.Printf("Income Statement\n\nRevenue\n")
	for _, l := range is.RevenueLines {
		cmd.Printf("  %-34s %14s\n", l.AccountName, l.Amount.StringFixed(2))
	}
	cmd.Printf("Expenses\n")
	for _, l := range is.ExpenseLines {
		cmd.Printf("  %-34s %14s\n", l.AccountName, l.Amount.StringFixed(2))
	}
	cmd.Printf("\n%-36s %14s\n", "Total Revenue", is.TotalRevenue.StringFixed(2))
	cmd.Printf("%-36s %14s\n", "Total Expenses", is.TotalExpenses.StringFixed(2))
	cmd.Printf("%-36s %14s\n", "Net Income", is.NetIncome.StringFixed(2))
}

func printBalanceSheet(cmd *cobra.Command, bs statement.BalanceSheet) {
	cmd.Printf("Balance Sheet as of %s\n\nAssets\n", bs.AsOf.Format("2006-01-02"))
	for _, l := range bs.Assets {
		cmd.Printf("  %-34s %14s\n", l.AccountName, l.Amount.StringFixed(2))
	}
	cmd.Printf("Liabilities\n")
	for _, l := range bs.Liabilities {
		cmd.Printf("  %-34s %14s\n", l.AccountName, l.Amount.StringFixed(2))
	}
	cmd.Printf("Equity\n")
	for _, l := range bs.Equity {
		cmd.Printf("  %-34s %14s\n", l.AccountName, l.Amount.StringFixed(2))
	}
	cmd.Printf("  %-34s %14s\n", "Net Income (current period)", bs.NetIncome.StringFixed(2))
	cmd.Printf("\n%-36s %14s\n", "Total Assets", bs.TotalAssets.StringFixed(2))
	cmd.Printf("%-36s %14s\n", "Total Liabilities & Equity", bs.TotalLiabilitiesAndEquity.StringFixed(2))
	if bs.Warning != "" {
		cmd.Printf("\nWARNING: %s\n", bs.Warning)
	}
}
