package accounts

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/schoolbooks-dev/schoolbooks/internal/model"
)

const (
	numFields = 4
	colID     = 0
	colName   = 1
	colType   = 2
	colDesc   = 3
)

// ReadAccounts reads a chart-of-accounts CSV (header row expected).
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accts = append(accts, acct)
	}
	return accts, nil
}

// WriteAccounts writes a chart-of-accounts CSV.
func WriteAccounts(w io.Writer, accts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"account_id", "account_name", "account_type", "description"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colID] = acct.ID
	row[colName] = acct.Name
	row[colType] = string(acct.Type)
	row[colDesc] = acct.Description
	return row
}

// UnmarshalAccount converts a CSV row to an Account. An empty account_id is
// allowed; Create assigns one.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	acct := model.Account{
		ID:          record[colID],
		Name:        record[colName],
		Type:        model.AccountType(record[colType]),
		Description: record[colDesc],
	}
	if !acct.Type.Valid() {
		return model.Account{}, fmt.Errorf("invalid account type %q", record[colType])
	}
	return acct, nil
}

// Import reads a chart CSV and creates every account for the tenant.
// Returns the created accounts.
func (s *Service) Import(tenantID string, r io.Reader) ([]model.Account, error) {
	accts, err := ReadAccounts(r)
	if err != nil {
		return nil, err
	}

	created := make([]model.Account, 0, len(accts))
	for _, acct := range accts {
		c, err := s.Create(tenantID, acct)
		if err != nil {
			return created, fmt.Errorf("importing account %q: %w", acct.Name, err)
		}
		created = append(created, c)
	}
	return created, nil
}
