package posting

import (
	"errors"
	"fmt"

	"github.com/schoolbooks-dev/schoolbooks/internal/model"
	"github.com/schoolbooks-dev/schoolbooks/internal/store"
)

// ledgerConfigDoc is the settings document holding a tenant's account
// mappings.
const ledgerConfigDoc = "ledger_config"

// LoadTenantConfig reads the tenant's ledger config. A tenant that has
// never been configured gets a zero config; the posting policy then reports
// each missing mapping as a ConfigError, which is the intended signal.
func LoadTenantConfig(st *store.Store, tenantID string) (model.TenantLedgerConfig, error) {
	var cfg model.TenantLedgerConfig
	err := st.Get(tenantID, store.CollSettings, ledgerConfigDoc, &cfg)
	if errors.Is(err, store.ErrNotFound) {
		return model.TenantLedgerConfig{}, nil
	}
	if err != nil {
		return model.TenantLedgerConfig{}, fmt.Errorf("loading ledger config: %w", err)
	}
	return cfg, nil
}

// SaveTenantConfig stores the tenant's ledger config.
func SaveTenantConfig(st *store.Store, tenantID string, cfg model.TenantLedgerConfig) error {
	if err := st.Put(tenantID, store.CollSettings, ledgerConfigDoc, cfg); err != nil {
		return fmt.Errorf("storing ledger config: %w", err)
	}
	return nil
}
