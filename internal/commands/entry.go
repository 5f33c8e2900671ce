package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/schoolbooks-dev/schoolbooks/internal/accounts"
	"github.com/schoolbooks-dev/schoolbooks/internal/audit"
	"github.com/schoolbooks-dev/schoolbooks/internal/config"
	"github.com/schoolbooks-dev/schoolbooks/internal/events"
	"github.com/schoolbooks-dev/schoolbooks/internal/ledger"
	"github.com/schoolbooks-dev/schoolbooks/internal/logger"
	"github.com/schoolbooks-dev/schoolbooks/internal/model"
	"github.com/schoolbooks-dev/schoolbooks/internal/posting"
	"github.com/schoolbooks-dev/schoolbooks/internal/store"
)

func newEntryCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Work with journal entries",
	}

	cmd.AddCommand(newEntryAddCommand(configPath))

	return cmd
}

func newEntryAddCommand(configPath *string) *cobra.Command {
	var tenant, dateStr, description string
	var debits, credits []string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a manual journal entry",
		Long: `Append a manual journal entry. Each --debit and --credit takes an
account:amount pair; the entry must balance.

  schoolbooks entry add --tenant greenhill --date 2026-02-01 \
    --description "opening balance" \
    --debit acc_cash:100000 --credit acc_equity:100000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEntryAdd(cmd, *configPath, tenant, dateStr, description, debits, credits)
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant ID (required)")
	_ = cmd.MarkFlagRequired("tenant")
	cmd.Flags().StringVar(&dateStr, "date", "", "entry date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&description, "description", "", "entry description (required)")
	_ = cmd.MarkFlagRequired("description")
	cmd.Flags().StringArrayVar(&debits, "debit", nil, "debit line as account:amount (repeatable)")
	cmd.Flags().StringArrayVar(&credits, "credit", nil, "credit line as account:amount (repeatable)")

	return cmd
}

func runEntryAdd(cmd *cobra.Command, configPath, tenant, dateStr, description string, debits, credits []string) error {
	entryDate, err := parseDateFlag(dateStr, time.Now().UTC())
	if err != nil {
		return err
	}

	var lines []model.EntryLine
	for _, raw := range debits {
		accountID, amount, err := parseLineFlag(raw)
		if err != nil {
			return err
		}
		lines = append(lines, model.EntryLine{AccountID: accountID, Debit: amount})
	}
	for _, raw := range credits {
		accountID, amount, err := parseLineFlag(raw)
		if err != nil {
			return err
		}
		lines = append(lines, model.EntryLine{AccountID: accountID, Credit: amount})
	}

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
	engine := posting.NewEngine(led, events.NewService(st), audit.NewService(st), logger.WithLevel(logger.New(), cfg.Logging.Level))

	entryID, err := engine.AppendManual(tenant, model.JournalEntry{
		Date:        entryDate,
		Description: description,
		Lines:       lines,
	}, "cli")
	if err != nil {
		return err
	}

	cmd.Printf("Appended entry %s\n", entryID)
	return nil
}

func parseLineFlag(raw string) (string, decimal.Decimal, error) {
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return "", decimal.Zero, fmt.Errorf("invalid line %q, want account:amount", raw)
	}
	amount, err := decimal.NewFromString(parts[1])
	if err != nil {
		return "", decimal.Zero, fmt.Errorf("invalid amount in %q: %w", raw, err)
	}
	return parts[0], amount, nil
}
