package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /readyz", handler.Readyz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerMatchDataRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/match-data/unprocessed", handler.ListUnprocessedMatches)
	mux.HandleFunc("GET /v1/match-data/stats", handler.GetMatchDataStats)
	mux.HandleFunc("POST /v1/match-data/check-finished", handler.CheckFinishedMatches)
}

func registerTeamRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/teams/{teamID}/form", handler.GetTeamForm)
	mux.HandleFunc("GET /v1/h2h/{team1ID}/{team2ID}", handler.GetHeadToHead)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/reconcile", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunReconcileJob)))
	mux.Handle("POST /v1/internal/jobs/backfill", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunBackfillJob)))
	mux.Handle("POST /v1/internal/matches/{matchID}/ingest", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.IngestMatch)))
}
