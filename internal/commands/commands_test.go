package commands

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolbooks-dev/schoolbooks/internal/config"
	"github.com/schoolbooks-dev/schoolbooks/internal/events"
	"github.com/schoolbooks-dev/schoolbooks/internal/model"
	"github.com/schoolbooks-dev/schoolbooks/internal/posting"
	"github.com/schoolbooks-dev/schoolbooks/internal/store"
)

const tenant = "greenhill"

// writeTestConfig writes a config pointing at a store inside the test's
// temp dir and returns the config path.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.Path = filepath.Join(dir, "schoolbooks.db")
	path := filepath.Join(dir, "schoolbooks.yaml")
	require.NoError(t, config.Save(path, cfg))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// withStore opens the configured store for direct fixture setup. The store
// must be closed again before any command runs; bolt holds an exclusive
// file lock.
func withStore(t *testing.T, configPath string, fn func(*store.Store)) {
	t.Helper()
	cfg, err := config.Load(configPath)
	require.NoError(t, err)
	st, err := store.Open(cfg.Storage.Path)
	require.NoError(t, err)
	defer func() { require.NoError(t, st.Close()) }()
	fn(st)
}

func TestInitCommand(t *testing.T) {
	configPath := writeTestConfig(t)

	out, err := execute(t, "init", "--config", configPath, "--tenant", tenant)
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized tenant greenhill")

	// The seeded mappings are in place.
	withStore(t, configPath, func(st *store.Store) {
		cfg, err := posting.LoadTenantConfig(st, tenant)
		require.NoError(t, err)
		assert.NotEmpty(t, cfg.DefaultCashAccountID)
		assert.NotEmpty(t, cfg.DefaultReceivableAccountID)
		assert.NotEmpty(t, cfg.DefaultBursaryExpenseAccountID)
	})
}

func TestInitCommand_RefusesRerun(t *testing.T) {
	configPath := writeTestConfig(t)

	_, err := execute(t, "init", "--config", configPath, "--tenant", tenant)
	require.NoError(t, err)

	_, err = execute(t, "init", "--config", configPath, "--tenant", tenant)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already has")
}

func TestInitCommand_RequiresTenant(t *testing.T) {
	configPath := writeTestConfig(t)

	_, err := execute(t, "init", "--config", configPath)
	require.Error(t, err)
}

func TestAccountsListCommand(t *testing.T) {
	configPath := writeTestConfig(t)
	_, err := execute(t, "init", "--config", configPath, "--tenant", tenant)
	require.NoError(t, err)

	out, err := execute(t, "accounts", "list", "--config", configPath, "--tenant", tenant)
	require.NoError(t, err)
	assert.Contains(t, out, "Cash on Hand")
	assert.Contains(t, out, "School Fees Revenue")

	out, err = execute(t, "accounts", "list", "--config", configPath, "--tenant", tenant, "--type", "expense")
	require.NoError(t, err)
	assert.Contains(t, out, "Bursary Expense")
	assert.NotContains(t, out, "Cash on Hand")
}

func TestAccountsExportCommand(t *testing.T) {
	configPath := writeTestConfig(t)
	_, err := execute(t, "init", "--config", configPath, "--tenant", tenant)
	require.NoError(t, err)

	out, err := execute(t, "accounts", "export", "--config", configPath, "--tenant", tenant)
	require.NoError(t, err)
	assert.Contains(t, out, "account_id,account_name,account_type,description")
	assert.Contains(t, out, "Cash on Hand")
}

func TestEntryAddCommand(t *testing.T) {
	configPath := writeTestConfig(t)
	_, err := execute(t, "init", "--config", configPath, "--tenant", tenant)
	require.NoError(t, err)

	var cash, equity string
	withStore(t, configPath, func(st *store.Store) {
		cfg, err := posting.LoadTenantConfig(st, tenant)
		require.NoError(t, err)
		cash = cfg.DefaultCashAccountID
		equity = cfg.DefaultReceivableAccountID
	})

	out, err := execute(t, "entry", "add",
		"--config", configPath, "--tenant", tenant,
		"--date", "2026-02-01", "--description", "opening balance",
		"--debit", cash+":100000", "--credit", equity+":100000")
	require.NoError(t, err)
	assert.Contains(t, out, "Appended entry je_")
}

func TestEntryAddCommand_UnbalancedRejected(t *testing.T) {
	configPath := writeTestConfig(t)
	_, err := execute(t, "init", "--config", configPath, "--tenant", tenant)
	require.NoError(t, err)

	var cash, ar string
	withStore(t, configPath, func(st *store.Store) {
		cfg, err := posting.LoadTenantConfig(st, tenant)
		require.NoError(t, err)
		cash = cfg.DefaultCashAccountID
		ar = cfg.DefaultReceivableAccountID
	})

	_, err = execute(t, "entry", "add",
		"--config", configPath, "--tenant", tenant,
		"--description", "lopsided",
		"--debit", cash+":100", "--credit", ar+":90")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration error")
}

func TestBackfillCommand(t *testing.T) {
	configPath := writeTestConfig(t)
	_, err := execute(t, "init", "--config", configPath, "--tenant", tenant)
	require.NoError(t, err)

	withStore(t, configPath, func(st *store.Store) {
		cfg, err := posting.LoadTenantConfig(st, tenant)
		require.NoError(t, err)
		evs := events.NewService(st)
		_, err = evs.CreateExpense(tenant, model.ExpenseRecord{
			Description: "chalk",
			Amount:      decimal.NewFromInt(20000),
			Date:        time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
			AccountID:   cfg.DefaultBursaryExpenseAccountID,
		})
		require.NoError(t, err)
	})

	out, err := execute(t, "backfill", "--config", configPath, "--tenant", tenant, "--quiet")
	require.NoError(t, err)
	assert.Contains(t, out, "Postings succeeded:   1")
}

func TestReportCommands(t *testing.T) {
	configPath := writeTestConfig(t)
	_, err := execute(t, "init", "--config", configPath, "--tenant", tenant)
	require.NoError(t, err)

	var cash, ar string
	withStore(t, configPath, func(st *store.Store) {
		cfg, err := posting.LoadTenantConfig(st, tenant)
		require.NoError(t, err)
		cash = cfg.DefaultCashAccountID
		ar = cfg.DefaultReceivableAccountID
	})

	_, err = execute(t, "entry", "add",
		"--config", configPath, "--tenant", tenant,
		"--date", "2026-02-01", "--description", "opening balance",
		"--debit", cash+":100000", "--credit", ar+":100000")
	require.NoError(t, err)

	out, err := execute(t, "report", "trial-balance",
		"--config", configPath, "--tenant", tenant, "--as-of", "2026-12-31")
	require.NoError(t, err)
	assert.Contains(t, out, "Trial Balance as of 2026-12-31")
	assert.Contains(t, out, "100000.00")

	out, err = execute(t, "report", "trial-balance",
		"--config", configPath, "--tenant", tenant, "--as-of", "2026-12-31", "--csv")
	require.NoError(t, err)
	assert.Contains(t, out, "account,type,debit,credit")

	out, err = execute(t, "report", "balance-sheet",
		"--config", configPath, "--tenant", tenant, "--as-of", "2026-12-31")
	require.NoError(t, err)
	assert.Contains(t, out, "Balance Sheet as of 2026-12-31")
}
