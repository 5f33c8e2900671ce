package posting

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/schoolbooks-dev/schoolbooks/internal/audit"
	"github.com/schoolbooks-dev/schoolbooks/internal/events"
	"github.com/schoolbooks-dev/schoolbooks/internal/id"
	"github.com/schoolbooks-dev/schoolbooks/internal/ledger"
	"github.com/schoolbooks-dev/schoolbooks/internal/model"
)

// Engine posts source events to the ledger. Posting is a two-phase
// protocol: phase 1 writes the journal entry, phase 2 sets the source
// record's link. The link write re-checks the idempotency marker in the
// same store transaction, so concurrent retries on one event produce at
// most one link. A crash between the phases leaves an unlinked entry
// behind; re-running posting is safe, and Orphans finds the leftovers.
type Engine struct {
	ledger *ledger.Service
	events *events.Service
	audit  *audit.Service
	log    zerolog.Logger
	now    func() time.Time
}

// NewEngine creates a posting Engine.
func NewEngine(led *ledger.Service, evs *events.Service, aud *audit.Service, log zerolog.Logger) *Engine {
	return &Engine{ledger: led, events: evs, audit: aud, log: log, now: time.Now}
}

// PostFeeTransaction posts a fee payment or billing. Returns the journal
// entry ID, ErrAlreadyPosted, or a *ConfigError.
func (e *Engine) PostFeeTransaction(tenantID string, ft model.FeeTransaction, cfg model.TenantLedgerConfig, postedBy string) (string, error) {
	if ft.JournalEntryID != "" {
		return "", ErrAlreadyPosted
	}
	lines, desc, err := DecideFeeTransaction(ft, cfg)
	if err != nil {
		return "", err
	}
	return e.post(tenantID, model.JournalEntry{
		Date:        ft.Date,
		Description: desc,
		Lines:       lines,
		SourceID:    ft.ID,
		SourceType:  model.SourceFeeTransaction,
		PostedBy:    postedBy,
	})
}

// PostIncome posts an income record.
func (e *Engine) PostIncome(tenantID string, in model.IncomeRecord, cfg model.TenantLedgerConfig, postedBy string) (string, error) {
	if in.JournalEntryID != "" {
		return "", ErrAlreadyPosted
	}
	lines, desc, err := DecideIncome(in, cfg)
	if err != nil {
		return "", err
	}
	return e.post(tenantID, model.JournalEntry{
		Date:        in.Date,
		Description: desc,
		Lines:       lines,
		SourceID:    in.ID,
		SourceType:  model.SourceIncome,
		PostedBy:    postedBy,
	})
}

// PostExpense posts an expense record.
func (e *Engine) PostExpense(tenantID string, ex model.ExpenseRecord, cfg model.TenantLedgerConfig, postedBy string) (string, error) {
	if ex.JournalEntryID != "" {
		return "", ErrAlreadyPosted
	}
	lines, desc, err := DecideExpense(ex, cfg)
	if err != nil {
		return "", err
	}
	return e.post(tenantID, model.JournalEntry{
		Date:        ex.Date,
		Description: desc,
		Lines:       lines,
		SourceID:    ex.ID,
		SourceType:  model.SourceExpense,
		PostedBy:    postedBy,
	})
}

// AppendManual validates and appends a manual journal entry. Manual entries
// have no source event and no idempotency marker; the caller owns
// double-submission protection.
func (e *Engine) AppendManual(tenantID string, entry model.JournalEntry, postedBy string) (string, error) {
	entry.SourceType = model.SourceManual
	entry.PostedBy = postedBy
	if verrs := e.ledger.Validate(tenantID, entry); len(verrs) > 0 {
		return "", &ConfigError{Reason: joinValidation(verrs)}
	}

	written, err := e.ledger.Append(tenantID, entry)
	if err != nil {
		return "", fmt.Errorf("writing manual entry: %w", err)
	}
	e.recordAudit(tenantID, audit.Record{
		Actor:   postedBy,
		Action:  audit.ActionManualEntry,
		EntryID: written.ID,
	})
	return written.ID, nil
}

// post runs the two-phase write for a decided entry.
func (e *Engine) post(tenantID string, entry model.JournalEntry) (string, error) {
	entry.ID = id.NewJournalEntry()
	entry.CreatedAt = e.now().UTC()

	// An invalid decided entry means the policy or the chart is broken,
	// not the event. Surface it as a configuration problem and write
	// nothing.
	if verrs := e.ledger.Validate(tenantID, entry); len(verrs) > 0 {
		return "", &ConfigError{Reason: joinValidation(verrs)}
	}

	// Phase 1: journal entry.
	written, err := e.ledger.Append(tenantID, entry)
	if err != nil {
		return "", fmt.Errorf("writing entry for %s %s: %w", entry.SourceType, entry.SourceID, err)
	}

	// Phase 2: source link, re-checking the marker transactionally.
	err = e.events.Link(tenantID, entry.SourceType, entry.SourceID, written.ID)
	if errors.Is(err, events.ErrAlreadyLinked) {
		// Lost a race with a concurrent posting. Our entry is now an
		// unlinked orphan; leave it for the reconciliation query.
		e.log.Warn().
			Str("tenant_id", tenantID).
			Str("source_id", entry.SourceID).
			Str("orphan_entry_id", written.ID).
			Msg("concurrent posting detected, entry orphaned")
		return "", ErrAlreadyPosted
	}
	if err != nil {
		return "", fmt.Errorf("linking %s %s: %w", entry.SourceType, entry.SourceID, err)
	}

	e.recordAudit(tenantID, audit.Record{
		Actor:    entry.PostedBy,
		Action:   audit.ActionPosted,
		EntryID:  written.ID,
		SourceID: entry.SourceID,
	})
	return written.ID, nil
}

// Orphans returns entries whose source event does not link back to them:
// the leftovers of a crash or race between phase 1 and phase 2. They are
// reported for a compensating cleanup, never deleted here.
func (e *Engine) Orphans(tenantID string) ([]model.JournalEntry, error) {
	all, err := e.ledger.EntriesInRange(tenantID, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}

	var orphans []model.JournalEntry
	for _, entry := range all {
		if entry.SourceType == model.SourceManual || entry.SourceID == "" {
			continue
		}
		linked, err := e.events.LinkedEntryID(tenantID, entry.SourceType, entry.SourceID)
		if errors.Is(err, events.ErrNotFound) {
			// The source event is gone entirely, so nothing can link back.
			// That is exactly the inconsistency this query reports; it must
			// not abort the rest of the scan.
			e.log.Warn().
				Str("tenant_id", tenantID).
				Str("entry_id", entry.ID).
				Str("source_id", entry.SourceID).
				Msg("source event missing for entry")
			orphans = append(orphans, entry)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolving source of entry %s: %w", entry.ID, err)
		}
		if linked != entry.ID {
			orphans = append(orphans, entry)
		}
	}
	return orphans, nil
}

func (e *Engine) recordAudit(tenantID string, rec audit.Record) {
	if err := e.audit.Append(tenantID, rec); err != nil {
		e.log.Warn().Err(err).Str("tenant_id", tenantID).Msg("audit write failed")
	}
}

func joinValidation(verrs []ledger.ValidationError) string {
	msgs := make([]string, len(verrs))
	for i, ve := range verrs {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}
