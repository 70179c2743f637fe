package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/smuti/greydb-api/internal/domain/fixture"
	"github.com/smuti/greydb-api/internal/usecase"
)

type unprocessedFixtureDTO struct {
	ID              int64  `json:"id"`
	ProviderMatchID int64  `json:"match_id"`
	LeagueID        int64  `json:"league_id"`
	LeagueName      string `json:"league_name"`
	HomeTeam        string `json:"home_team"`
	AwayTeam        string `json:"away_team"`
	Round           int    `json:"round"`
	KickoffAt       string `json:"match_date"`
}

type checkFinishedRequest struct {
	MatchIDs []int64 `json:"match_ids" validate:"required,min=1,max=50,dive,gt=0"`
}

func (h *Handler) ListUnprocessedMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListUnprocessedMatches")
	defer span.End()

	if h.matchData == nil {
		writeError(ctx, w, fmt.Errorf("%w: match data service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	leagueID, err := queryInt64(r, "league_id")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.matchData.ListUnprocessed(ctx, leagueID, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list unprocessed matches failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]unprocessedFixtureDTO, 0, len(items))
	for _, item := range items {
		out = append(out, unprocessedFixtureFromDomain(item))
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"count":   len(out),
		"matches": out,
	})
}

func (h *Handler) GetMatchDataStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchDataStats")
	defer span.End()

	if h.matchData == nil {
		writeError(ctx, w, fmt.Errorf("%w: match data service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	summary, err := h.matchData.Summary(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "get match data stats failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, summary)
}

func (h *Handler) CheckFinishedMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CheckFinishedMatches")
	defer span.End()

	if h.matchData == nil {
		writeError(ctx, w, fmt.Errorf("%w: match data service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req checkFinishedRequest
	if err := decodeJSONBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	results, err := h.matchData.CheckFinished(ctx, req.MatchIDs)
	if err != nil {
		h.logger.WarnContext(ctx, "check finished matches failed", "count", len(req.MatchIDs), "error", err)
		writeError(ctx, w, err)
		return
	}

	finished := 0
	for _, item := range results {
		if item.Finished {
			finished++
		}
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"checked":  len(results),
		"finished": finished,
		"matches":  results,
	})
}

func unprocessedFixtureFromDomain(item fixture.Fixture) unprocessedFixtureDTO {
	return unprocessedFixtureDTO{
		ID:              item.ID,
		ProviderMatchID: item.ProviderMatchID,
		LeagueID:        item.LeagueProviderID,
		LeagueName:      item.LeagueName,
		HomeTeam:        item.HomeTeam,
		AwayTeam:        item.AwayTeam,
		Round:           item.Round,
		KickoffAt:       item.KickoffAt.UTC().Format(time.RFC3339),
	}
}
