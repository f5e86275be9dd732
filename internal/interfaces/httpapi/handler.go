package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/cricket-odds/internal/domain/jobrun"
	"github.com/riskibarqy/cricket-odds/internal/platform/logging"
	"github.com/riskibarqy/cricket-odds/internal/usecase"
)

// SubscriberCounter reports connected realtime subscribers.
type SubscriberCounter interface {
	Count() int
}

type Handler struct {
	queryService    *usecase.MatchQueryService
	jobOrchestrator *usecase.JobOrchestratorService
	jobRunRepo      jobrun.Repository
	subscribers     SubscriberCounter
	logger          *logging.Logger
	validator       *validator.Validate
}

func NewHandler(
	queryService *usecase.MatchQueryService,
	jobOrchestrator *usecase.JobOrchestratorService,
	jobRunRepo jobrun.Repository,
	subscribers SubscriberCounter,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		queryService:    queryService,
		jobOrchestrator: jobOrchestrator,
		jobRunRepo:      jobRunRepo,
		subscribers:     subscribers,
		logger:          logger.Named("httpapi"),
		validator:       validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetRealtimeStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRealtimeStats")
	defer span.End()

	count := 0
	if h.subscribers != nil {
		count = h.subscribers.Count()
	}
	writeSuccess(ctx, w, http.StatusOK, realtimeStatsDTO{Subscribers: count})
}
