package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/schoolbooks-dev/schoolbooks/internal/accounts"
	"github.com/schoolbooks-dev/schoolbooks/internal/config"
	"github.com/schoolbooks-dev/schoolbooks/internal/model"
	"github.com/schoolbooks-dev/schoolbooks/internal/store"
)

func newAccountsCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage the chart of accounts",
	}

	cmd.AddCommand(newAccountsListCommand(configPath))
	cmd.AddCommand(newAccountsImportCommand(configPath))
	cmd.AddCommand(newAccountsExportCommand(configPath))

	return cmd
}

func newAccountsListCommand(configPath *string) *cobra.Command {
	var tenant, typeFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAccounts(*configPath, func(svc *accounts.Service) error {
				filter := model.AccountType(typeFilter)
				if filter != "" && !filter.Valid() {
					return fmt.Errorf("invalid account type %q", typeFilter)
				}
				accts, err := svc.List(tenant, filter)
				if err != nil {
					return err
				}
				cmd.Printf("%-24s %-10s %s\n", "ID", "Type", "Name")
				for _, a := range accts {
					cmd.Printf("%-24s %-10s %s\n", a.ID, a.Type, a.Name)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant ID (required)")
	_ = cmd.MarkFlagRequired("tenant")
	cmd.Flags().StringVar(&typeFilter, "type", "", "filter by account type")

	return cmd
}

func newAccountsImportCommand(configPath *string) *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import accounts from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAccounts(*configPath, func(svc *accounts.Service) error {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening %s: %w", args[0], err)
				}
				defer f.Close()

				imported, err := svc.Import(tenant, f)
				if err != nil {
					return err
				}
				cmd.Printf("Imported %d accounts\n", len(imported))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant ID (required)")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}

func newAccountsExportCommand(configPath *string) *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export accounts as CSV to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAccounts(*configPath, func(svc *accounts.Service) error {
				accts, err := svc.List(tenant, "")
				if err != nil {
					return err
				}
				return accounts.WriteAccounts(cmd.OutOrStdout(), accts)
			})
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant ID (required)")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}

func withAccounts(configPath string, fn func(*accounts.Service) error) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()
	return fn(accounts.NewService(st))
}
