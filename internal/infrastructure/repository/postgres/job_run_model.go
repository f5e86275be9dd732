package postgres

import "time"

type jobRunTableModel struct {
	RunID        string     `db:"run_id"`
	Routine      string     `db:"routine"`
	TriggerKind  string     `db:"trigger_kind"`
	Status       string     `db:"status"`
	Summary      string     `db:"summary"`
	StartedAt    *time.Time `db:"started_at"`
	FinishedAt   *time.Time `db:"finished_at"`
	LastError    *string    `db:"last_error"`
	TraceID      *string    `db:"trace_id"`
	SpanID       *string    `db:"span_id"`
	LastStatusAt time.Time  `db:"last_status_at"`
}
