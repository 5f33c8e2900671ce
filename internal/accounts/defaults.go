package accounts

import (
	"fmt"

	"github.com/schoolbooks-dev/schoolbooks/internal/model"
)

// DefaultChart returns the standard chart of accounts a new school tenant
// starts with.
func DefaultChart() []model.Account {
	return []model.Account{
		{Name: "Cash on Hand", Type: model.AccountTypeAsset, Description: "Physical cash at the bursar's office"},
		{Name: "Bank Account", Type: model.AccountTypeAsset, Description: "Primary school bank account"},
		{Name: "Accounts Receivable", Type: model.AccountTypeAsset, Description: "Fees billed but not yet paid"},
		{Name: "Accounts Payable", Type: model.AccountTypeLiability, Description: "Unpaid supplier invoices"},
		{Name: "Retained Earnings", Type: model.AccountTypeEquity, Description: "Accumulated surplus"},
		{Name: "School Fees Revenue", Type: model.AccountTypeRevenue, Description: "Tuition and fee income"},
		{Name: "Other Income", Type: model.AccountTypeRevenue, Description: "Miscellaneous income"},
		{Name: "Bursary Expense", Type: model.AccountTypeExpense, Description: "Waived fees under bursaries and scholarships"},
		{Name: "Salaries & Wages", Type: model.AccountTypeExpense, Description: "Staff salaries"},
		{Name: "Utilities", Type: model.AccountTypeExpense, Description: "Power, water, internet"},
		{Name: "Supplies & Materials", Type: model.AccountTypeExpense, Description: "Scholastic and office supplies"},
	}
}

// Seed creates the default chart for a tenant and returns a ledger config
// with the default cash, receivable and bursary-expense mappings wired to
// the seeded accounts. The fee-item revenue map starts empty; every fee
// item the school defines gets its own mapping later.
func (s *Service) Seed(tenantID string) (model.TenantLedgerConfig, error) {
	var cfg model.TenantLedgerConfig
	for _, acct := range DefaultChart() {
		created, err := s.Create(tenantID, acct)
		if err != nil {
			return model.TenantLedgerConfig{}, fmt.Errorf("seeding chart: %w", err)
		}
		switch created.Name {
		case "Cash on Hand":
			cfg.DefaultCashAccountID = created.ID
		case "Accounts Receivable":
			cfg.DefaultReceivableAccountID = created.ID
		case "Bursary Expense":
			cfg.DefaultBursaryExpenseAccountID = created.ID
		}
	}
	cfg.FeeItemRevenueAccounts = map[string]string{}
	return cfg, nil
}
