package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/smuti/greydb-api/internal/domain/match"
	qb "github.com/smuti/greydb-api/internal/platform/querybuilder"
)

const matchUpsertSuffix = `ON CONFLICT (provider_match_id)
DO UPDATE SET
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    finished = EXCLUDED.finished,
    raw_payload = EXCLUDED.raw_payload,
    updated_at = NOW()
RETURNING id, (xmax = 0) AS inserted`

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) Upsert(ctx context.Context, item match.Match) (match.UpsertOutcome, error) {
	model := matchUpsertModel{
		ProviderMatchID: item.ProviderMatchID,
		LeagueID:        item.LeagueID,
		HomeTeamID:      item.HomeTeamID,
		AwayTeamID:      item.AwayTeamID,
		RoundName:       optionalString(item.RoundName),
		MatchDate:       item.MatchDate,
		HomeScore:       item.HomeScore,
		AwayScore:       item.AwayScore,
		Finished:        item.Finished,
		RawPayload:      jsonbParam(item.RawPayload),
	}
	if item.Round > 0 {
		round := item.Round
		model.Round = &round
	}

	query, args, err := qb.InsertModel("matches", model, matchUpsertSuffix)
	if err != nil {
		return match.UpsertOutcome{}, fmt.Errorf("build upsert match query: %w", err)
	}

	var row matchUpsertRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return match.UpsertOutcome{}, classifyErr(fmt.Errorf("upsert match provider_match_id=%d: %w", item.ProviderMatchID, err))
	}
	return match.UpsertOutcome{ID: row.ID, Inserted: row.Inserted}, nil
}

func (r *MatchRepository) GetByID(ctx context.Context, id int64) (match.Match, bool, error) {
	return r.getOne(ctx, qb.Eq("id", id))
}

func (r *MatchRepository) GetByProviderID(ctx context.Context, providerMatchID int64) (match.Match, bool, error) {
	return r.getOne(ctx, qb.Eq("provider_match_id", providerMatchID))
}

func (r *MatchRepository) getOne(ctx context.Context, cond qb.Condition) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").Where(cond).ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match: %w", err)
	}
	return matchFromRow(row), true, nil
}

func (r *MatchRepository) ListBackfillCandidates(ctx context.Context, limit int) ([]match.Match, error) {
	query, args, err := backfillCandidatesBuilder(limit).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list backfill candidates query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list backfill candidates: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out, nil
}

func (r *MatchRepository) MarkBackfillAttempted(ctx context.Context, id int64) error {
	query, args, err := qb.Update("matches").
		SetExpr("backfill_attempted_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark backfill attempted query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark backfill attempted match_id=%d: %w", id, err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("mark backfill attempted match_id=%d: no row updated", id)
	}
	return nil
}

// backfillCandidatesBuilder selects finished, stats-less matches that have not
// been re-parsed since their root last changed.
func backfillCandidatesBuilder(limit int) *qb.SelectBuilder {
	return qb.Select("m.*").From("matches m").
		Where(
			qb.Eq("m.finished", true),
			qb.IsNotNull("m.raw_payload"),
			qb.Expr("NOT EXISTS (SELECT 1 FROM match_stats s WHERE s.match_id = m.id)"),
			qb.Or(
				qb.IsNull("m.backfill_attempted_at"),
				qb.Expr("m.backfill_attempted_at < m.updated_at"),
			),
		).
		OrderBy("m.id").
		Limit(limit)
}

func (r *MatchRepository) ListTeamResults(ctx context.Context, query match.ResultQuery) ([]match.Result, error) {
	conds := make([]qb.Condition, 0, 2)
	switch query.Venue {
	case match.VenueHome:
		conds = append(conds, qb.Eq("home.provider_id", query.TeamProviderID))
	case match.VenueAway:
		conds = append(conds, qb.Eq("away.provider_id", query.TeamProviderID))
	default:
		conds = append(conds, qb.Or(
			qb.Eq("home.provider_id", query.TeamProviderID),
			qb.Eq("away.provider_id", query.TeamProviderID),
		))
	}
	if query.LeagueProviderID > 0 {
		conds = append(conds, qb.Eq("l.provider_id", query.LeagueProviderID))
	}
	return r.listResults(ctx, "list team results", query.Limit, conds...)
}

func (r *MatchRepository) ListHeadToHead(ctx context.Context, query match.HeadToHeadQuery) ([]match.Result, error) {
	hosted := qb.And(
		qb.Eq("home.provider_id", query.TeamProviderID),
		qb.Eq("away.provider_id", query.OpponentProviderID),
	)
	if query.HomeOnly {
		return r.listResults(ctx, "list head to head", query.Limit, hosted)
	}
	return r.listResults(ctx, "list head to head", query.Limit, qb.Or(
		hosted,
		qb.And(
			qb.Eq("home.provider_id", query.OpponentProviderID),
			qb.Eq("away.provider_id", query.TeamProviderID),
		),
	))
}

func (r *MatchRepository) listResults(ctx context.Context, op string, limit int, conds ...qb.Condition) ([]match.Result, error) {
	where := append([]qb.Condition{
		qb.Eq("m.finished", true),
		qb.IsNotNull("m.home_score"),
		qb.IsNotNull("m.away_score"),
	}, conds...)

	query, args, err := resultSelectBuilder().
		Where(where...).
		OrderBy("m.match_date DESC NULLS LAST", "m.id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []matchResultRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]match.Result, 0, len(rows))
	for _, row := range rows {
		item := match.Result{
			MatchID:            row.MatchID,
			ProviderMatchID:    row.ProviderMatchID,
			LeagueProviderID:   row.LeagueProviderID,
			LeagueName:         row.LeagueName,
			Season:             stringOrEmpty(row.Season),
			HomeTeamProviderID: row.HomeTeamProviderID,
			HomeTeamName:       row.HomeTeamName,
			AwayTeamProviderID: row.AwayTeamProviderID,
			AwayTeamName:       row.AwayTeamName,
			HomeScore:          row.HomeScore,
			AwayScore:          row.AwayScore,
		}
		if row.MatchDate != nil {
			item.MatchDate = *row.MatchDate
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *MatchRepository) Summary(ctx context.Context) (match.Summary, error) {
	query, args, err := qb.Select(
		"COUNT(1) AS total",
		"COUNT(1) FILTER (WHERE home_score IS NOT NULL AND away_score IS NOT NULL) AS with_score",
		"COUNT(1) FILTER (WHERE finished) AS finished",
	).From("matches").ToSQL()
	if err != nil {
		return match.Summary{}, fmt.Errorf("build match summary query: %w", err)
	}

	var row matchSummaryRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return match.Summary{}, fmt.Errorf("match summary: %w", err)
	}
	return match.Summary{Total: row.Total, WithScore: row.WithScore, Finished: row.Finished}, nil
}

func resultSelectBuilder() *qb.SelectBuilder {
	return qb.Select(
		"m.id AS match_id",
		"m.provider_match_id",
		"m.match_date",
		"l.provider_id AS league_provider_id",
		"l.name AS league_name",
		"l.season",
		"home.provider_id AS home_team_provider_id",
		"home.name AS home_team_name",
		"away.provider_id AS away_team_provider_id",
		"away.name AS away_team_name",
		"m.home_score",
		"m.away_score",
	).From("matches m").
		Join("JOIN leagues l ON l.id = m.league_id").
		Join("JOIN teams home ON home.id = m.home_team_id").
		Join("JOIN teams away ON away.id = m.away_team_id")
}

func matchFromRow(row matchTableModel) match.Match {
	out := match.Match{
		ID:              row.ID,
		ProviderMatchID: row.ProviderMatchID,
		LeagueID:        row.LeagueID,
		HomeTeamID:      row.HomeTeamID,
		AwayTeamID:      row.AwayTeamID,
		RoundName:       stringOrEmpty(row.RoundName),
		MatchDate:       row.MatchDate,
		HomeScore:       row.HomeScore,
		AwayScore:       row.AwayScore,
		Finished:        row.Finished,
		RawPayload:      row.RawPayload,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
	if row.BackfillAttemptedAt != nil {
		attempted := *row.BackfillAttemptedAt
		out.BackfillAttemptedAt = &attempted
	}
	if row.Round != nil {
		out.Round = *row.Round
	}
	return out
}
