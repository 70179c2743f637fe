package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/smuti/greydb-api/internal/domain/teamstats"
	qb "github.com/smuti/greydb-api/internal/platform/querybuilder"
)

type TeamStatsRepository struct {
	db *sqlx.DB
}

func NewTeamStatsRepository(db *sqlx.DB) *TeamStatsRepository {
	return &TeamStatsRepository{db: db}
}

func (r *TeamStatsRepository) InsertMatchStats(ctx context.Context, item teamstats.MatchStats) (bool, error) {
	return insertOnce(ctx, r.db, "match_stats", matchStatsInsertModel{
		MatchID:           item.MatchID,
		HomeXG:            item.Home.XG,
		AwayXG:            item.Away.XG,
		HomeShots:         item.Home.Shots,
		AwayShots:         item.Away.Shots,
		HomeShotsOnTarget: item.Home.ShotsOnTarget,
		AwayShotsOnTarget: item.Away.ShotsOnTarget,
		HomePossession:    item.Home.Possession,
		AwayPossession:    item.Away.Possession,
		HomeCorners:       item.Home.Corners,
		AwayCorners:       item.Away.Corners,
		HomeFouls:         item.Home.Fouls,
		AwayFouls:         item.Away.Fouls,
		HomeYellowCards:   item.Home.YellowCards,
		AwayYellowCards:   item.Away.YellowCards,
		HomeRedCards:      item.Home.RedCards,
		AwayRedCards:      item.Away.RedCards,
	})
}

// InsertAdvancedStats writes 56 side-prefixed columns, built from the column list
// rather than a tagged model.
func (r *TeamStatsRepository) InsertAdvancedStats(ctx context.Context, item teamstats.AdvancedStats) (bool, error) {
	columns := make([]string, 0, 1+2*len(advancedSideColumns))
	values := make([]any, 0, cap(columns))
	columns = append(columns, "match_id")
	values = append(values, item.MatchID)

	for _, side := range []struct {
		prefix string
		stats  teamstats.AdvancedSideStats
	}{
		{prefix: "home_", stats: item.Home},
		{prefix: "away_", stats: item.Away},
	} {
		sideValues := advancedSideValues(side.stats)
		for i, col := range advancedSideColumns {
			columns = append(columns, side.prefix+col)
			values = append(values, sideValues[i])
		}
	}

	query, args, err := qb.InsertInto("match_advanced_stats").
		Columns(columns...).
		Values(values...).
		Suffix("ON CONFLICT (match_id) DO NOTHING").
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build insert advanced stats query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, classifyErr(fmt.Errorf("insert advanced stats match_id=%d: %w", item.MatchID, err))
	}
	return affected(res)
}

func advancedSideValues(s teamstats.AdvancedSideStats) []any {
	return []any{
		s.OpenPlayXG,
		s.SetPieceXG,
		s.XGOT,
		s.ShotsBlocked,
		s.ShotsOffTarget,
		s.ShotsInsideBox,
		s.ShotsOutsideBox,
		s.TotalPasses,
		s.PassAccuracy,
		s.LongPasses,
		s.LongPassAccuracy,
		s.Crosses,
		s.CrossAccuracy,
		s.PassesOwnHalf,
		s.PassesOppHalf,
		s.TouchesInBox,
		s.Tackles,
		s.Interceptions,
		s.Blocks,
		s.Clearances,
		s.GoalkeeperSaves,
		s.DuelsWon,
		s.DuelsWonPct,
		s.AerialDuelsWon,
		s.AerialDuelsPct,
		s.DribblesSuccessful,
		s.DribblesPct,
		s.Offsides,
	}
}
