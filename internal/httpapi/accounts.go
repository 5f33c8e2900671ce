package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/schoolbooks-dev/schoolbooks/internal/accounts"
	"github.com/schoolbooks-dev/schoolbooks/internal/model"
)

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	filter := model.AccountType(r.URL.Query().Get("type"))
	if filter != "" && !filter.Valid() {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid account type filter")
		return
	}

	accts, err := s.accounts.List(tenantID(r), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": accts})
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := s.accounts.Get(tenantID(r), chi.URLParam(r, "accountID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"account": acct})
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var acct model.Account
	if !decodeBody(w, r, &acct) {
		return
	}

	acct, err := s.accounts.Create(tenantID(r), acct)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"account": acct})
}

// handleExportAccounts downloads the chart of accounts as CSV.
func (s *Server) handleExportAccounts(w http.ResponseWriter, r *http.Request) {
	accts, err := s.accounts.List(tenantID(r), "")
	if err != nil {
		writeServiceError(w, err)
		return
	}
	serveCSV(w, "accounts.csv", func() error {
		return accounts.WriteAccounts(w, accts)
	})
}

// handleImportAccounts bulk-loads accounts from an uploaded CSV body.
func (s *Server) handleImportAccounts(w http.ResponseWriter, r *http.Request) {
	imported, err := s.accounts.Import(tenantID(r), r.Body)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"accounts": imported})
}
