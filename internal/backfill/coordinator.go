// Package backfill sweeps historical financial events that predate
// automated posting and posts a journal entry for each. The sweep is
// best-effort and record-isolated: one record's failure never blocks the
// rest, and re-running is always safe because progress lives in the
// journal-entry markers on the events themselves.
package backfill

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/schoolbooks-dev/schoolbooks/internal/audit"
	"github.com/schoolbooks-dev/schoolbooks/internal/events"
	"github.com/schoolbooks-dev/schoolbooks/internal/id"
	"github.com/schoolbooks-dev/schoolbooks/internal/ledger"
	"github.com/schoolbooks-dev/schoolbooks/internal/model"
	"github.com/schoolbooks-dev/schoolbooks/internal/posting"
	"github.com/schoolbooks-dev/schoolbooks/internal/store"
)

// DefaultBatchCap keeps link-update batches at roughly 90% of the store's
// per-batch ceiling, leaving headroom for writes interleaved by the
// surrounding platform.
const DefaultBatchCap = 450

// DefaultDemoClass is the placeholder class whose students are deactivated
// during the sweep so they stop polluting reports.
const DefaultDemoClass = "Demo Class"

// Coordinator runs the backfill sweep for one tenant at a time. It is
// intentionally single-threaded per tenant; batch flushing is the
// bottleneck, not lookup latency.
type Coordinator struct {
	store  *store.Store
	events *events.Service
	ledger *ledger.Service
	audit  *audit.Service
	log    zerolog.Logger

	// BatchCap bounds pending link-updates per flush. Must stay below
	// store.MaxBatchOps.
	BatchCap int
	// DemoClass is the placeholder class name for the hygiene step.
	DemoClass string

	now func() time.Time
}

// NewCoordinator creates a Coordinator with default batch cap and demo
// class name.
func NewCoordinator(st *store.Store, evs *events.Service, led *ledger.Service, aud *audit.Service, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		store:     st,
		events:    evs,
		ledger:    led,
		audit:     aud,
		log:       log,
		BatchCap:  DefaultBatchCap,
		DemoClass: DefaultDemoClass,
		now:       time.Now,
	}
}

// sweepState accumulates the report and the pending link-update batch
// across collections.
type sweepState struct {
	report          model.BackfillReport
	batch           *store.WriteBatch
	pending         int // postings whose link-update awaits a flush
	pendingStudents int // demo-class deactivations awaiting a flush
}

// Run sweeps every event collection in chronological order, posts the
// unlinked records, and batches their link-updates. The context is checked
// between records; cancellation stops the sweep after a final flush, and a
// later re-run picks up where the markers left off.
func (c *Coordinator) Run(ctx context.Context, tenantID string) (model.BackfillReport, error) {
	log := c.log.With().Str("tenant_id", tenantID).Logger()
	log.Info().Msg("backfill sweep started")

	cfg, err := posting.LoadTenantConfig(c.store, tenantID)
	if err != nil {
		return model.BackfillReport{}, err
	}

	st := &sweepState{batch: store.NewWriteBatch()}

	c.sweepFeeTransactions(ctx, tenantID, cfg, st)
	c.sweepIncome(ctx, tenantID, cfg, st)
	c.sweepExpenses(ctx, tenantID, cfg, st)
	c.deactivateDemoStudents(ctx, tenantID, st)

	// Final flush for whatever the last collection left pending.
	c.flush(tenantID, st)

	log.Info().
		Int("scanned", st.report.TotalRecordsScanned).
		Int("attempted", st.report.PostingsAttempted).
		Int("succeeded", st.report.PostingsSucceeded).
		Int("errors", len(st.report.Errors)).
		Msg("backfill sweep finished")

	if err := c.audit.Append(tenantID, audit.Record{
		Action: audit.ActionBackfillRun,
		Details: fmt.Sprintf("scanned=%d attempted=%d succeeded=%d errors=%d",
			st.report.TotalRecordsScanned, st.report.PostingsAttempted,
			st.report.PostingsSucceeded, len(st.report.Errors)),
	}); err != nil {
		log.Warn().Err(err).Msg("audit write failed")
	}

	return st.report, nil
}

func (c *Coordinator) sweepFeeTransactions(ctx context.Context, tenantID string, cfg model.TenantLedgerConfig, st *sweepState) {
	fts, err := c.events.FeeTransactions(tenantID)
	if err != nil {
		st.report.Errors = append(st.report.Errors, fmt.Sprintf("%s: listing failed: %v", store.CollFeeTransactions, err))
		return
	}
	for _, ft := range fts {
		if ctx.Err() != nil {
			return
		}
		st.report.TotalRecordsScanned++
		if ft.JournalEntryID != "" {
			continue
		}
		st.report.PostingsAttempted++

		lines, desc, err := posting.DecideFeeTransaction(ft, cfg)
		if err != nil {
			st.recordError(store.CollFeeTransactions, ft.ID, err)
			continue
		}
		ft.JournalEntryID, err = c.writeEntry(tenantID, model.JournalEntry{
			Date: ft.Date, Description: desc, Lines: lines,
			SourceID: ft.ID, SourceType: model.SourceFeeTransaction, PostedBy: "backfill",
		})
		if err != nil {
			st.recordError(store.CollFeeTransactions, ft.ID, err)
			continue
		}
		c.stageLink(tenantID, store.CollFeeTransactions, ft.ID, ft, st)
	}
}

func (c *Coordinator) sweepIncome(ctx context.Context, tenantID string, cfg model.TenantLedgerConfig, st *sweepState) {
	ins, err := c.events.Income(tenantID)
	if err != nil {
		st.report.Errors = append(st.report.Errors, fmt.Sprintf("%s: listing failed: %v", store.CollIncome, err))
		return
	}
	for _, in := range ins {
		if ctx.Err() != nil {
			return
		}
		st.report.TotalRecordsScanned++
		if in.JournalEntryID != "" {
			continue
		}
		st.report.PostingsAttempted++

		lines, desc, err := posting.DecideIncome(in, cfg)
		if err != nil {
			st.recordError(store.CollIncome, in.ID, err)
			continue
		}
		in.JournalEntryID, err = c.writeEntry(tenantID, model.JournalEntry{
			Date: in.Date, Description: desc, Lines: lines,
			SourceID: in.ID, SourceType: model.SourceIncome, PostedBy: "backfill",
		})
		if err != nil {
			st.recordError(store.CollIncome, in.ID, err)
			continue
		}
		c.stageLink(tenantID, store.CollIncome, in.ID, in, st)
	}
}

func (c *Coordinator) sweepExpenses(ctx context.Context, tenantID string, cfg model.TenantLedgerConfig, st *sweepState) {
	exs, err := c.events.Expenses(tenantID)
	if err != nil {
		st.report.Errors = append(st.report.Errors, fmt.Sprintf("%s: listing failed: %v", store.CollExpenses, err))
		return
	}
	for _, ex := range exs {
		if ctx.Err() != nil {
			return
		}
		st.report.TotalRecordsScanned++
		if ex.JournalEntryID != "" {
			continue
		}
		st.report.PostingsAttempted++

		lines, desc, err := posting.DecideExpense(ex, cfg)
		if err != nil {
			st.recordError(store.CollExpenses, ex.ID, err)
			continue
		}
		ex.JournalEntryID, err = c.writeEntry(tenantID, model.JournalEntry{
			Date: ex.Date, Description: desc, Lines: lines,
			SourceID: ex.ID, SourceType: model.SourceExpense, PostedBy: "backfill",
		})
		if err != nil {
			st.recordError(store.CollExpenses, ex.ID, err)
			continue
		}
		c.stageLink(tenantID, store.CollExpenses, ex.ID, ex, st)
	}
}

// deactivateDemoStudents flips Active off for students parked in the
// placeholder demo class. Rides along in the same sweep and batch.
func (c *Coordinator) deactivateDemoStudents(ctx context.Context, tenantID string, st *sweepState) {
	students, err := c.events.Students(tenantID)
	if err != nil {
		st.report.Errors = append(st.report.Errors, fmt.Sprintf("%s: listing failed: %v", store.CollStudents, err))
		return
	}
	for _, stu := range students {
		if ctx.Err() != nil {
			return
		}
		if stu.ClassName != c.DemoClass || !stu.Active {
			continue
		}
		stu.Active = false
		if err := st.batch.Put(tenantID, store.CollStudents, stu.ID, stu); err != nil {
			st.recordError(store.CollStudents, stu.ID, err)
			continue
		}
		st.pendingStudents++
		if st.batch.Len() >= c.BatchCap {
			c.flush(tenantID, st)
		}
	}
}

// writeEntry validates and writes the journal entry (phase 1 of posting).
// Policy-produced entries that fail validation surface as ConfigError.
func (c *Coordinator) writeEntry(tenantID string, entry model.JournalEntry) (string, error) {
	entry.ID = id.NewJournalEntry()
	entry.CreatedAt = c.now().UTC()
	written, err := c.ledger.Append(tenantID, entry)
	if err != nil {
		return "", err
	}
	return written.ID, nil
}

// stageLink queues the event's link-update (phase 2) and flushes when the
// batch reaches the cap. Unlike the live path, the staged write carries the
// pre-scan snapshot and does not re-check the marker at flush time: a live
// posting that links the same event between scan and flush gets overwritten,
// leaving its entry an unlinked orphan for the reconciliation query.
func (c *Coordinator) stageLink(tenantID, collection, docID string, doc any, st *sweepState) {
	if err := st.batch.Put(tenantID, collection, docID, doc); err != nil {
		st.recordError(collection, docID, err)
		return
	}
	st.pending++
	if st.batch.Len() >= c.BatchCap {
		c.flush(tenantID, st)
	}
}

// flush commits the pending batch. On failure the staged link-updates are
// lost, so the affected postings are reported as errors; their entries
// remain unlinked orphans and the events stay eligible for the next run.
func (c *Coordinator) flush(tenantID string, st *sweepState) {
	if st.batch.Len() == 0 {
		return
	}
	n := st.batch.Len()
	if err := c.store.Commit(st.batch); err != nil {
		st.report.Errors = append(st.report.Errors,
			fmt.Sprintf("batch flush of %d updates failed: %v", n, err))
		st.batch.Reset()
		st.pending = 0
		st.pendingStudents = 0
		return
	}
	st.report.PostingsSucceeded += st.pending
	st.report.StudentsDeactivated += st.pendingStudents
	st.pending = 0
	st.pendingStudents = 0
	c.log.Debug().Str("tenant_id", tenantID).Int("ops", n).Msg("batch flushed")
}

func (st *sweepState) recordError(collection, docID string, err error) {
	st.report.Errors = append(st.report.Errors, fmt.Sprintf("%s/%s: %v", collection, docID, err))
}
