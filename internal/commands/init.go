package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/schoolbooks-dev/schoolbooks/internal/accounts"
	"github.com/schoolbooks-dev/schoolbooks/internal/config"
	"github.com/schoolbooks-dev/schoolbooks/internal/posting"
	"github.com/schoolbooks-dev/schoolbooks/internal/store"
)

func newInitCommand(configPath *string) *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a tenant with the default chart of accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, *configPath, tenant)
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant ID (required)")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}

// runInit writes the config file if absent, seeds the default chart for the
// tenant, and stores the resulting account mappings. Re-running on an
// already-initialized tenant is refused so a typo cannot duplicate a chart.
func runInit(cmd *cobra.Command, configPath, tenant string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.Save(configPath, cfg); err != nil {
			return err
		}
		cmd.Printf("Wrote %s\n", configPath)
	}

	st, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	accts := accounts.NewService(st)
	existing, err := accts.List(tenant, "")
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return fmt.Errorf("tenant %s already has %d accounts", tenant, len(existing))
	}

	ledgerCfg, err := accts.Seed(tenant)
	if err != nil {
		return err
	}
	if err := posting.SaveTenantConfig(st, tenant, ledgerCfg); err != nil {
		return err
	}

	cmd.Printf("Initialized tenant %s with %d accounts\n", tenant, len(accounts.DefaultChart()))
	return nil
}
