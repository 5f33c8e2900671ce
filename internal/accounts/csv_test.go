package accounts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolbooks-dev/schoolbooks/internal/model"
)

const chartCSV = `account_id,account_name,account_type,description
acc_11111111-1111-1111-1111-111111111111,Cash on Hand,asset,Bursar cash
,School Fees Revenue,revenue,Tuition income
`

func TestReadAccounts(t *testing.T) {
	accts, err := ReadAccounts(strings.NewReader(chartCSV))
	require.NoError(t, err)
	require.Len(t, accts, 2)

	assert.Equal(t, "acc_11111111-1111-1111-1111-111111111111", accts[0].ID)
	assert.Equal(t, "Cash on Hand", accts[0].Name)
	assert.Equal(t, model.AccountTypeAsset, accts[0].Type)

	assert.Empty(t, accts[1].ID, "blank ID is assigned at create time")
	assert.Equal(t, model.AccountTypeRevenue, accts[1].Type)
}

func TestReadAccounts_BadType(t *testing.T) {
	csv := "account_id,account_name,account_type,description\n,Petty Cash,money,\n"
	_, err := ReadAccounts(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid account type")
}

func TestWriteAccounts_RoundTrip(t *testing.T) {
	in := []model.Account{
		{ID: "acc_1", Name: "Cash on Hand", Type: model.AccountTypeAsset, Description: "cash"},
		{ID: "acc_2", Name: "Utilities", Type: model.AccountTypeExpense},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, in))

	out, err := ReadAccounts(&buf)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, in[0].ID, out[0].ID)
	assert.Equal(t, in[1].Type, out[1].Type)
}

func TestImport(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Import(tenant, strings.NewReader(chartCSV))
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.NotEmpty(t, created[1].ID)

	all, err := svc.List(tenant, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
