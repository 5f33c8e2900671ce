package model

// BackfillReport summarizes one backfill sweep. It is returned to the
// caller and never persisted. Counts are always populated, even when the
// sweep fails entirely, so the operator can tell "nothing to do" from
// "partially succeeded, re-run to retry".
type BackfillReport struct {
	TotalRecordsScanned int      `json:"total_records_scanned"`
	PostingsAttempted   int      `json:"postings_attempted"`
	PostingsSucceeded   int      `json:"postings_succeeded"`
	StudentsDeactivated int      `json:"students_deactivated"`
	Errors              []string `json:"errors,omitempty"`
}
