package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/schoolbooks-dev/schoolbooks/internal/model"
	"github.com/schoolbooks-dev/schoolbooks/internal/posting"
)

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	from, ok := parseDateParam(w, r, "from")
	if !ok {
		return
	}
	to, ok := parseDateParam(w, r, "to")
	if !ok {
		return
	}

	entries, err := s.ledger.EntriesInRange(tenantID(r), from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.ledger.Get(tenantID(r), chi.URLParam(r, "entryID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry": entry})
}

// handleCreateManualEntry appends a manual journal entry. The caller must
// supply at least two balanced lines against existing accounts.
func (s *Server) handleCreateManualEntry(w http.ResponseWriter, r *http.Request) {
	var entry model.JournalEntry
	if !decodeBody(w, r, &entry) {
		return
	}

	entryID, err := s.engine.AppendManual(tenantID(r), entry, "api")
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"entry_id": entryID})
}

// handleListOrphans reports entries whose source event does not link back,
// the leftovers of interrupted postings.
func (s *Server) handleListOrphans(w http.ResponseWriter, r *http.Request) {
	orphans, err := s.engine.Orphans(tenantID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orphans": orphans})
}

func (s *Server) handleGetLedgerConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := posting.LoadTenantConfig(s.store, tenantID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handlePutLedgerConfig(w http.ResponseWriter, r *http.Request) {
	var cfg model.TenantLedgerConfig
	if !decodeBody(w, r, &cfg) {
		return
	}
	if err := posting.SaveTenantConfig(s.store, tenantID(r), cfg); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	records, err := s.audit.List(tenantID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

// parseDateParam reads an optional YYYY-MM-DD query parameter. Absent means
// a zero time, which queries treat as unbounded.
func parseDateParam(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid "+name+" date, want YYYY-MM-DD")
		return time.Time{}, false
	}
	return t, true
}
