package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolbooks-dev/schoolbooks/internal/accounts"
	"github.com/schoolbooks-dev/schoolbooks/internal/logger"
	"github.com/schoolbooks-dev/schoolbooks/internal/model"
	"github.com/schoolbooks-dev/schoolbooks/internal/posting"
	"github.com/schoolbooks-dev/schoolbooks/internal/store"
)

const tenant = "greenhill"

type apiFixture struct {
	ts  *httptest.Server
	srv *Server
	cfg model.TenantLedgerConfig
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "schoolbooks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	accts := accounts.NewService(st)
	cfg, err := accts.Seed(tenant)
	require.NoError(t, err)

	revenue, err := accts.Create(tenant, model.Account{Name: "Tuition Revenue", Type: model.AccountTypeRevenue})
	require.NoError(t, err)
	cfg.FeeItemRevenueAccounts["tuition"] = revenue.ID
	require.NoError(t, posting.SaveTenantConfig(st, tenant, cfg))

	srv := NewServer(st, logger.NewWithWriter(io.Discard))
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	return &apiFixture{ts: ts, srv: srv, cfg: cfg}
}

func (f *apiFixture) url(path string) string {
	return f.ts.URL + "/tenants/" + tenant + path
}

func (f *apiFixture) postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(f.url(path), "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeResp(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	f := newAPIFixture(t)

	resp, err := http.Get(f.ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateAndListAccounts(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.postJSON(t, "/accounts", map[string]string{
		"name": "Library Fund", "type": "asset",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		Account model.Account `json:"account"`
	}
	decodeResp(t, resp, &created)
	assert.NotEmpty(t, created.Account.ID)

	listResp, err := http.Get(f.url("/accounts?type=asset"))
	require.NoError(t, err)
	var listed struct {
		Accounts []model.Account `json:"accounts"`
	}
	decodeResp(t, listResp, &listed)

	names := make([]string, 0, len(listed.Accounts))
	for _, a := range listed.Accounts {
		assert.Equal(t, model.AccountTypeAsset, a.Type)
		names = append(names, a.Name)
	}
	assert.Contains(t, names, "Library Fund")
}

func TestGetAccount(t *testing.T) {
	f := newAPIFixture(t)

	resp, err := http.Get(f.url("/accounts/" + f.cfg.DefaultCashAccountID))
	require.NoError(t, err)
	var got struct {
		Account model.Account `json:"account"`
	}
	decodeResp(t, resp, &got)
	assert.Equal(t, "Cash on Hand", got.Account.Name)

	missing, err := http.Get(f.url("/accounts/acc_missing"))
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestCreateAccount_InvalidType(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.postJSON(t, "/accounts", map[string]string{
		"name": "Bad", "type": "vibes",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateFeeTransaction_PostsEntry(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.postJSON(t, "/fee-transactions", map[string]any{
		"student_id": "stu_1", "fee_item_id": "tuition",
		"kind": "payment", "method": "cash",
		"amount": "50000", "date": "2026-02-01T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body feeTransactionResponse
	decodeResp(t, resp, &body)
	assert.Empty(t, body.PostingError)
	assert.NotEmpty(t, body.FeeTransaction.JournalEntryID)

	entryResp, err := http.Get(f.url("/entries/" + body.FeeTransaction.JournalEntryID))
	require.NoError(t, err)
	defer entryResp.Body.Close()
	assert.Equal(t, http.StatusOK, entryResp.StatusCode)
}

func TestCreateIncome_MissingMappingStoresUnposted(t *testing.T) {
	f := newAPIFixture(t)

	// No revenue account on the record: the posting policy cannot resolve
	// it, but the record itself must survive for a later backfill.
	resp := f.postJSON(t, "/income", map[string]any{
		"description": "hall hire", "amount": "30000", "date": "2026-02-01T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body incomeResponse
	decodeResp(t, resp, &body)
	assert.NotEmpty(t, body.PostingError)
	assert.Empty(t, body.Income.JournalEntryID)

	listResp, err := http.Get(f.url("/income"))
	require.NoError(t, err)
	var listed struct {
		Income []model.IncomeRecord `json:"income"`
	}
	decodeResp(t, listResp, &listed)
	require.Len(t, listed.Income, 1)
	assert.Empty(t, listed.Income[0].JournalEntryID)
}

func TestCreateManualEntry_UnbalancedRejected(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.postJSON(t, "/entries", map[string]any{
		"date":        "2026-02-01T00:00:00Z",
		"description": "lopsided",
		"lines": []map[string]any{
			{"account_id": f.cfg.DefaultCashAccountID, "debit": "100"},
			{"account_id": f.cfg.DefaultReceivableAccountID, "credit": "90"},
		},
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestCreateManualEntry_Balanced(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.postJSON(t, "/entries", map[string]any{
		"date":        "2026-02-01T00:00:00Z",
		"description": "opening balance",
		"lines": []map[string]any{
			{"account_id": f.cfg.DefaultCashAccountID, "debit": "1000"},
			{"account_id": f.cfg.DefaultReceivableAccountID, "credit": "1000"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var body struct {
		EntryID string `json:"entry_id"`
	}
	decodeResp(t, resp, &body)
	assert.True(t, strings.HasPrefix(body.EntryID, "je_"))
}

func TestGetEntry_NotFound(t *testing.T) {
	f := newAPIFixture(t)

	resp, err := http.Get(f.url("/entries/je_missing"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBackfillEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	// Stage an unposted income record directly, bypassing live posting.
	_, err := f.srv.events.CreateIncome(tenant, model.IncomeRecord{
		Description: "hall hire", Amount: dec("30000"),
		Date: date(2025, 9, 1), AccountID: f.cfg.FeeItemRevenueAccounts["tuition"],
	})
	require.NoError(t, err)

	resp := f.postJSON(t, "/backfill", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report model.BackfillReport
	decodeResp(t, resp, &report)
	assert.Equal(t, 1, report.TotalRecordsScanned)
	assert.Equal(t, 1, report.PostingsSucceeded)
}

func TestTrialBalanceReport(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.postJSON(t, "/fee-transactions", map[string]any{
		"student_id": "stu_1", "fee_item_id": "tuition",
		"kind": "payment", "method": "cash",
		"amount": "50000", "date": "2026-02-01T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	tbResp, err := http.Get(f.url("/reports/trial-balance?as_of=2026-12-31"))
	require.NoError(t, err)
	var tb struct {
		TotalDebit  string `json:"total_debit"`
		TotalCredit string `json:"total_credit"`
		Warning     string `json:"warning"`
	}
	decodeResp(t, tbResp, &tb)
	assert.Equal(t, "50000", tb.TotalDebit)
	assert.Equal(t, tb.TotalDebit, tb.TotalCredit)
	assert.Empty(t, tb.Warning)
}

func TestTrialBalanceReport_CSV(t *testing.T) {
	f := newAPIFixture(t)

	resp, err := http.Get(f.url("/reports/trial-balance?as_of=2026-12-31&format=csv"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "account,type,debit,credit")
}

func TestReport_BadDateParam(t *testing.T) {
	f := newAPIFixture(t)

	resp, err := http.Get(f.url("/reports/trial-balance?as_of=yesterday"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLedgerConfigRoundTrip(t *testing.T) {
	f := newAPIFixture(t)

	getResp, err := http.Get(f.url("/ledger-config"))
	require.NoError(t, err)
	var cfg model.TenantLedgerConfig
	decodeResp(t, getResp, &cfg)
	assert.Equal(t, f.cfg.DefaultCashAccountID, cfg.DefaultCashAccountID)

	cfg.FeeItemRevenueAccounts["boarding"] = cfg.DefaultCashAccountID
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPut, f.url("/ledger-config"), bytes.NewReader(data))
	require.NoError(t, err)
	putResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	putResp.Body.Close()
	require.Equal(t, http.StatusOK, putResp.StatusCode)

	reloaded, err := posting.LoadTenantConfig(f.srv.store, tenant)
	require.NoError(t, err)
	assert.Contains(t, reloaded.FeeItemRevenueAccounts, "boarding")
}

func TestTenantIsolation(t *testing.T) {
	f := newAPIFixture(t)

	resp, err := http.Get(f.ts.URL + "/tenants/other-school/accounts")
	require.NoError(t, err)
	var listed struct {
		Accounts []model.Account `json:"accounts"`
	}
	decodeResp(t, resp, &listed)
	assert.Empty(t, listed.Accounts, "another tenant sees nothing")
}

func TestAccountsCSVExportImport(t *testing.T) {
	f := newAPIFixture(t)

	exportResp, err := http.Get(f.url("/accounts/export"))
	require.NoError(t, err)
	defer exportResp.Body.Close()
	exported, err := io.ReadAll(exportResp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(exported), "Cash on Hand")

	// Import the same CSV into a fresh tenant.
	importURL := f.ts.URL + "/tenants/other-school/accounts/import"
	importResp, err := http.Post(importURL, "text/csv", bytes.NewReader(exported))
	require.NoError(t, err)
	defer importResp.Body.Close()
	require.Equal(t, http.StatusCreated, importResp.StatusCode)

	listResp, err := http.Get(f.ts.URL + "/tenants/other-school/accounts")
	require.NoError(t, err)
	var listed struct {
		Accounts []model.Account `json:"accounts"`
	}
	decodeResp(t, listResp, &listed)
	assert.Len(t, listed.Accounts, len(accounts.DefaultChart())+1)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
