package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/cricket-odds/internal/domain/jobrun"
	qb "github.com/riskibarqy/cricket-odds/internal/platform/querybuilder"
)

const jobRunsTable = "job_runs"

type JobRunRepository struct {
	db *sqlx.DB
}

func NewJobRunRepository(db *sqlx.DB) *JobRunRepository {
	return &JobRunRepository{db: db}
}

func (r *JobRunRepository) UpsertRun(ctx context.Context, run jobrun.Run) error {
	runID := strings.TrimSpace(run.RunID)
	if runID == "" {
		return fmt.Errorf("run id is required")
	}

	routine := strings.TrimSpace(run.Routine)
	if routine == "" {
		routine = "unknown"
	}

	occurredAt := run.OccurredAt.UTC()
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	summaryJSON, err := marshalPayload(run.Summary)
	if err != nil {
		return fmt.Errorf("marshal job run summary: %w", err)
	}

	model := jobRunTableModel{
		RunID:        runID,
		Routine:      routine,
		TriggerKind:  string(run.Trigger),
		Status:       string(run.Status),
		Summary:      summaryJSON,
		LastError:    optionalString(run.ErrorMessage),
		TraceID:      optionalString(run.TraceID),
		SpanID:       optionalString(run.SpanID),
		LastStatusAt: occurredAt,
	}

	switch run.Status {
	case jobrun.StatusStarted:
		model.StartedAt = &occurredAt
		model.LastError = nil
	case jobrun.StatusCompleted:
		model.FinishedAt = &occurredAt
		model.LastError = nil
	case jobrun.StatusFailed, jobrun.StatusSkipped:
		model.FinishedAt = &occurredAt
	}

	query, args, err := qb.InsertModel(jobRunsTable, model, `ON CONFLICT (run_id)
DO UPDATE SET
    status = EXCLUDED.status,
    summary = CASE
        WHEN EXCLUDED.summary = '{}' THEN job_runs.summary
        ELSE EXCLUDED.summary
    END,
    started_at = COALESCE(job_runs.started_at, EXCLUDED.started_at),
    finished_at = CASE
        WHEN EXCLUDED.status = 'started' THEN job_runs.finished_at
        ELSE EXCLUDED.finished_at
    END,
    last_error = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.last_error
        ELSE NULL
    END,
    trace_id = COALESCE(EXCLUDED.trace_id, job_runs.trace_id),
    span_id = COALESCE(EXCLUDED.span_id, job_runs.span_id),
    last_status_at = EXCLUDED.last_status_at`)
	if err != nil {
		return fmt.Errorf("build upsert job run query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert job run run_id=%s status=%s: %w", runID, run.Status, err)
	}

	return nil
}

func (r *JobRunRepository) ListRecent(ctx context.Context, routine string, limit int) ([]jobrun.Run, error) {
	builder := qb.Select(
		"run_id",
		"routine",
		"trigger_kind",
		"status",
		"summary",
		"started_at",
		"finished_at",
		"last_error",
		"trace_id",
		"span_id",
		"last_status_at",
	).From(jobRunsTable)
	if routine = strings.TrimSpace(routine); routine != "" {
		builder = builder.Where(qb.Eq("routine", routine))
	}
	query, args, err := builder.OrderBy("last_status_at DESC").Limit(limit).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list job runs query: %w", err)
	}

	var rows []jobRunTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list job runs: %w", err)
	}

	out := make([]jobrun.Run, 0, len(rows))
	for _, row := range rows {
		out = append(out, jobrun.Run{
			RunID:        row.RunID,
			Routine:      row.Routine,
			Trigger:      jobrun.Trigger(row.TriggerKind),
			Status:       jobrun.Status(row.Status),
			Summary:      unmarshalPayload(row.Summary),
			ErrorMessage: derefString(row.LastError),
			OccurredAt:   row.LastStatusAt.UTC(),
			TraceID:      derefString(row.TraceID),
			SpanID:       derefString(row.SpanID),
		})
	}
	return out, nil
}
