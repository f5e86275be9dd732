package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/cricket-odds/internal/domain/match"
	"github.com/riskibarqy/cricket-odds/internal/domain/odds"
	"github.com/riskibarqy/cricket-odds/internal/usecase"
)

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	limit, err := parseLimit(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	req := listMatchesRequest{
		Status: strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status"))),
		Limit:  limit,
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.queryService.ListMatches(ctx, match.ListFilter{
		Status: match.Status(req.Status),
		Limit:  req.Limit,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed", "status", req.Status, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]matchDTO, 0, len(items))
	for _, item := range items {
		out = append(out, matchToDTO(ctx, item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListLiveMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLiveMatches")
	defer span.End()

	items, err := h.queryService.ListLiveMatches(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list live matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]matchDTO, 0, len(items))
	for _, item := range items {
		out = append(out, matchToDTO(ctx, item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	detail, err := h.queryService.GetMatchDetail(ctx, r.PathValue("matchID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchDetailToDTO(ctx, detail))
}

func (h *Handler) ListOdds(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListOdds")
	defer span.End()

	limit, err := parseLimit(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	req := listOddsRequest{Limit: limit}
	if raw := strings.TrimSpace(r.URL.Query().Get("in_sheet")); raw != "" {
		inSheet, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: in_sheet must be a boolean", usecase.ErrInvalidInput))
			return
		}
		req.InSheet = inSheet
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.queryService.ListOdds(ctx, odds.ListFilter{
		InSheetOnly: req.InSheet,
		Limit:       req.Limit,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "list odds failed", "in_sheet", req.InSheet, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]oddsDTO, 0, len(items))
	for _, item := range items {
		out = append(out, oddsToDTO(ctx, item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetOdds(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetOdds")
	defer span.End()

	item, err := h.queryService.GetOdds(ctx, r.PathValue("matchID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, oddsToDTO(ctx, item))
}

func parseLimit(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: limit must be an integer", usecase.ErrInvalidInput)
	}
	return limit, nil
}
