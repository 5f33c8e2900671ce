package httpapi

import (
	"errors"
	"net/http"

	"github.com/schoolbooks-dev/schoolbooks/internal/model"
	"github.com/schoolbooks-dev/schoolbooks/internal/posting"
)

// feeTransactionResponse is the reply to creating a fee transaction. When
// the tenant's account mappings cannot post the event, the record is still
// stored and PostingError says why; a later backfill run retries it.
type feeTransactionResponse struct {
	FeeTransaction model.FeeTransaction `json:"fee_transaction"`
	PostingError   string               `json:"posting_error,omitempty"`
}

type incomeResponse struct {
	Income       model.IncomeRecord `json:"income"`
	PostingError string             `json:"posting_error,omitempty"`
}

type expenseResponse struct {
	Expense      model.ExpenseRecord `json:"expense"`
	PostingError string              `json:"posting_error,omitempty"`
}

// handleCreateFeeTransaction stores a fee payment or billing and posts it
// to the ledger in the same request.
func (s *Server) handleCreateFeeTransaction(w http.ResponseWriter, r *http.Request) {
	tenant := tenantID(r)

	var ft model.FeeTransaction
	if !decodeBody(w, r, &ft) {
		return
	}
	ft.JournalEntryID = ""

	ft, err := s.events.CreateFeeTransaction(tenant, ft)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	resp := feeTransactionResponse{FeeTransaction: ft}
	entryID, err := s.postStored(tenant, func(cfg model.TenantLedgerConfig) (string, error) {
		return s.engine.PostFeeTransaction(tenant, ft, cfg, "api")
	})
	if err != nil {
		resp.PostingError = err.Error()
	} else {
		resp.FeeTransaction.JournalEntryID = entryID
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	tenant := tenantID(r)

	var in model.IncomeRecord
	if !decodeBody(w, r, &in) {
		return
	}
	in.JournalEntryID = ""

	in, err := s.events.CreateIncome(tenant, in)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	resp := incomeResponse{Income: in}
	entryID, err := s.postStored(tenant, func(cfg model.TenantLedgerConfig) (string, error) {
		return s.engine.PostIncome(tenant, in, cfg, "api")
	})
	if err != nil {
		resp.PostingError = err.Error()
	} else {
		resp.Income.JournalEntryID = entryID
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	tenant := tenantID(r)

	var ex model.ExpenseRecord
	if !decodeBody(w, r, &ex) {
		return
	}
	ex.JournalEntryID = ""

	ex, err := s.events.CreateExpense(tenant, ex)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	resp := expenseResponse{Expense: ex}
	entryID, err := s.postStored(tenant, func(cfg model.TenantLedgerConfig) (string, error) {
		return s.engine.PostExpense(tenant, ex, cfg, "api")
	})
	if err != nil {
		resp.PostingError = err.Error()
	} else {
		resp.Expense.JournalEntryID = entryID
	}
	writeJSON(w, http.StatusCreated, resp)
}

// postStored posts a freshly stored event. Posting failure does not undo
// the store; the event stays eligible for backfill.
func (s *Server) postStored(tenant string, post func(model.TenantLedgerConfig) (string, error)) (string, error) {
	cfg, err := posting.LoadTenantConfig(s.store, tenant)
	if err != nil {
		return "", err
	}
	entryID, err := post(cfg)
	if err != nil {
		if !errors.Is(err, posting.ErrAlreadyPosted) {
			s.log.Warn().Str("tenant_id", tenant).Err(err).Msg("live posting failed")
		}
		return "", err
	}
	return entryID, nil
}

func (s *Server) handleListFeeTransactions(w http.ResponseWriter, r *http.Request) {
	fts, err := s.events.FeeTransactions(tenantID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fee_transactions": fts})
}

func (s *Server) handleListIncome(w http.ResponseWriter, r *http.Request) {
	ins, err := s.events.Income(tenantID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"income": ins})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	exs, err := s.events.Expenses(tenantID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": exs})
}

// handleBackfill runs the historical posting sweep for the tenant and
// returns its report. The sweep honors request cancellation.
func (s *Server) handleBackfill(w http.ResponseWriter, r *http.Request) {
	report, err := s.backfill.Run(r.Context(), tenantID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
