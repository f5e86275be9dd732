package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicQueryRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/matches", handler.ListMatches)
	mux.HandleFunc("GET /v1/matches/live", handler.ListLiveMatches)
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
	mux.HandleFunc("GET /v1/odds", handler.ListOdds)
	mux.HandleFunc("GET /v1/odds/{matchID}", handler.GetOdds)
}

func registerRealtimeRoutes(mux *http.ServeMux, handler *Handler, realtime http.Handler) {
	mux.HandleFunc("GET /v1/realtime/stats", handler.GetRealtimeStats)
	if realtime == nil {
		return
	}
	mux.Handle("GET /v1/ws/odds", realtime)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/{routine}", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunJob)))
	mux.Handle("GET /v1/internal/jobs/{routine}/runs", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ListJobRuns)))
}
