package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/schoolbooks-dev/schoolbooks/internal/accounts"
	"github.com/schoolbooks-dev/schoolbooks/internal/audit"
	"github.com/schoolbooks-dev/schoolbooks/internal/backfill"
	"github.com/schoolbooks-dev/schoolbooks/internal/config"
	"github.com/schoolbooks-dev/schoolbooks/internal/events"
	"github.com/schoolbooks-dev/schoolbooks/internal/ledger"
	"github.com/schoolbooks-dev/schoolbooks/internal/logger"
	"github.com/schoolbooks-dev/schoolbooks/internal/store"
)

func newBackfillCommand(configPath *string) *cobra.Command {
	var tenant string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Post historical financial events that predate automated posting",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackfill(cmd, *configPath, tenant, quiet)
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant ID (required)")
	_ = cmd.MarkFlagRequired("tenant")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "suppress log output")

	return cmd
}

func runBackfill(cmd *cobra.Command, configPath, tenant string, quiet bool) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	log := logger.WithLevel(logger.New(), cfg.Logging.Level)
	if quiet {
		log = logger.NewWithWriter(io.Discard)
	}

	st, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	accts := accounts.NewService(st)
	evs := events.NewService(st)
	led := ledger.NewService(st, accts)
	aud := audit.NewService(st)

	coord := backfill.NewCoordinator(st, evs, led, aud, log)
	coord.BatchCap = cfg.Backfill.BatchCap
	coord.DemoClass = cfg.Backfill.DemoClass

	report, err := coord.Run(cmd.Context(), tenant)
	if err != nil {
		return err
	}

	cmd.Printf("Scanned:              %d\n", report.TotalRecordsScanned)
	cmd.Printf("Postings attempted:   %d\n", report.PostingsAttempted)
	cmd.Printf("Postings succeeded:   %d\n", report.PostingsSucceeded)
	cmd.Printf("Students deactivated: %d\n", report.StudentsDeactivated)
	if len(report.Errors) > 0 {
		cmd.Printf("Errors (%d):\n", len(report.Errors))
		for _, e := range report.Errors {
			cmd.Printf("  %s\n", e)
		}
	}
	return nil
}
