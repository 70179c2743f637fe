package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/smuti/greydb-api/internal/domain/h2h"
	qb "github.com/smuti/greydb-api/internal/platform/querybuilder"
)

type H2HRepository struct {
	db *sqlx.DB
}

func NewH2HRepository(db *sqlx.DB) *H2HRepository {
	return &H2HRepository{db: db}
}

func (r *H2HRepository) InsertIfAbsent(ctx context.Context, item h2h.Stat) (bool, error) {
	model := h2hTableModel{
		TeamLowID:    item.TeamLowID,
		TeamHighID:   item.TeamHighID,
		TotalMatches: item.TotalMatches,
		TeamLowWins:  item.TeamLowWins,
		TeamHighWins: item.TeamHighWins,
		Draws:        item.Draws,
		AvgGoalsLow:  item.AvgGoalsLow,
		AvgGoalsHigh: item.AvgGoalsHigh,
		ComputedAt:   item.ComputedAt.UTC(),
	}
	if item.SourceMatchID > 0 {
		source := item.SourceMatchID
		model.SourceMatchID = &source
	}

	query, args, err := qb.InsertModel("h2h_stats", model, "ON CONFLICT (team_low_id, team_high_id) DO NOTHING")
	if err != nil {
		return false, fmt.Errorf("build insert h2h query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, classifyErr(fmt.Errorf("insert h2h pair=%d/%d: %w", item.TeamLowID, item.TeamHighID, err))
	}
	return affected(res)
}

func (r *H2HRepository) GetByPair(ctx context.Context, teamA, teamB int64) (h2h.Stat, bool, error) {
	low, high := h2h.Pair(teamA, teamB)
	query, args, err := qb.Select(qb.Columns(h2hTableModel{})...).From("h2h_stats").
		Where(qb.Eq("team_low_id", low), qb.Eq("team_high_id", high)).
		ToSQL()
	if err != nil {
		return h2h.Stat{}, false, fmt.Errorf("build get h2h query: %w", err)
	}

	var row h2hTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return h2h.Stat{}, false, nil
		}
		return h2h.Stat{}, false, fmt.Errorf("get h2h pair=%d/%d: %w", low, high, err)
	}

	out := h2h.Stat{
		TeamLowID:    row.TeamLowID,
		TeamHighID:   row.TeamHighID,
		TotalMatches: row.TotalMatches,
		TeamLowWins:  row.TeamLowWins,
		TeamHighWins: row.TeamHighWins,
		Draws:        row.Draws,
		AvgGoalsLow:  row.AvgGoalsLow,
		AvgGoalsHigh: row.AvgGoalsHigh,
		ComputedAt:   row.ComputedAt,
	}
	if row.SourceMatchID != nil {
		out.SourceMatchID = *row.SourceMatchID
	}
	return out, true, nil
}
