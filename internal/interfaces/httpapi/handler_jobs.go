package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/cricket-odds/internal/domain/jobrun"
	"github.com/riskibarqy/cricket-odds/internal/usecase"
)

const defaultJobRunsLimit = 20

// RunJob runs one routine on demand. The pass runs on the request context, so
// a client that disconnects early cancels it.
func (h *Handler) RunJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunJob")
	defer span.End()

	if h.jobOrchestrator == nil {
		writeError(ctx, w, fmt.Errorf("%w: job orchestrator is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req := runJobRequest{Routine: strings.TrimSpace(r.PathValue("routine"))}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	routine := usecase.Routine(req.Routine)
	if !h.jobOrchestrator.Has(routine) {
		writeError(ctx, w, fmt.Errorf("%w: routine %s is disabled", usecase.ErrDependencyUnavailable, routine))
		return
	}

	result, err := h.jobOrchestrator.Run(ctx, routine, jobrun.TriggerManual)
	if err != nil {
		if !errors.Is(err, usecase.ErrRoutineBusy) {
			h.logger.WarnContext(ctx, "run job failed", "routine", routine, "run_id", result.RunID, "error", err)
		}
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) ListJobRuns(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListJobRuns")
	defer span.End()

	if h.jobRunRepo == nil {
		writeError(ctx, w, fmt.Errorf("%w: job run log is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	req := listJobRunsRequest{Routine: strings.TrimSpace(r.PathValue("routine")), Limit: limit}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if req.Limit == 0 {
		req.Limit = defaultJobRunsLimit
	}

	runs, err := h.jobRunRepo.ListRecent(ctx, req.Routine, req.Limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list job runs failed", "routine", req.Routine, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]jobRunDTO, 0, len(runs))
	for _, run := range runs {
		out = append(out, jobRunToDTO(ctx, run))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}
