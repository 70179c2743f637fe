package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/smuti/greydb-api/internal/usecase"
)

func (h *Handler) GetTeamForm(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamForm")
	defer span.End()

	if h.teamForm == nil {
		writeError(ctx, w, fmt.Errorf("%w: team form service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	teamID, err := pathInt64(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
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

	form, err := h.teamForm.Form(ctx, usecase.TeamFormInput{
		TeamProviderID:   teamID,
		LeagueProviderID: leagueID,
		Venue:            strings.TrimSpace(r.URL.Query().Get("venue")),
		Limit:            limit,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "get team form failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, form)
}

func (h *Handler) GetHeadToHead(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetHeadToHead")
	defer span.End()

	if h.teamForm == nil {
		writeError(ctx, w, fmt.Errorf("%w: team form service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	team1ID, err := pathInt64(r, "team1ID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	team2ID, err := pathInt64(r, "team2ID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	homeOnly, err := queryBool(r, "home_only")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.teamForm.HeadToHead(ctx, usecase.HeadToHeadInput{
		Team1ProviderID: team1ID,
		Team2ProviderID: team2ID,
		HomeOnly:        homeOnly,
		Limit:           limit,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "get head to head failed", "team1_id", team1ID, "team2_id", team2ID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}
