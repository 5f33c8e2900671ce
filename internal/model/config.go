package model

// TenantLedgerConfig holds the account mappings the posting engine resolves
// events against. It is passed into every posting call rather than read
// from ambient state so callers (and tests) can inject incomplete
// configurations.
type TenantLedgerConfig struct {
	DefaultCashAccountID           string            `json:"default_cash_account_id"`
	DefaultReceivableAccountID     string            `json:"default_receivable_account_id"`
	DefaultBursaryExpenseAccountID string            `json:"default_bursary_expense_account_id"`
	FeeItemRevenueAccounts         map[string]string `json:"fee_item_revenue_accounts,omitempty"`
}

// RevenueAccountFor returns the revenue account mapped to a fee item, or ""
// if none is configured.
func (c TenantLedgerConfig) RevenueAccountFor(feeItemID string) string {
	return c.FeeItemRevenueAccounts[feeItemID]
}
