package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/smuti/greydb-api/internal/domain/fixture"
	qb "github.com/smuti/greydb-api/internal/platform/querybuilder"
)

// FixtureRepository reads the upcoming_matches feed maintained by the fixture importer.
type FixtureRepository struct {
	db *sqlx.DB
}

func NewFixtureRepository(db *sqlx.DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

func (r *FixtureRepository) ListDueLeagues(ctx context.Context, now time.Time, leagueProviderID int64) ([]fixture.DueLeague, error) {
	conds := dueConditions(now)
	if leagueProviderID > 0 {
		conds = append(conds, qb.Eq("l.provider_id", leagueProviderID))
	}

	query, args, err := qb.Select(
		"u.league_id",
		"l.provider_id AS league_provider_id",
		"l.name AS league_name",
		"COUNT(1) AS due_count",
	).From("upcoming_matches u").
		Join("JOIN leagues l ON l.id = u.league_id").
		Where(conds...).
		GroupBy("u.league_id", "l.provider_id", "l.name").
		OrderBy("u.league_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list due leagues query: %w", err)
	}

	var rows []dueLeagueRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list due leagues: %w", err)
	}

	out := make([]fixture.DueLeague, 0, len(rows))
	for _, row := range rows {
		out = append(out, fixture.DueLeague{
			LeagueID:         row.LeagueID,
			LeagueProviderID: row.LeagueProviderID,
			LeagueName:       row.LeagueName,
			DueCount:         row.DueCount,
		})
	}
	return out, nil
}

func (r *FixtureRepository) ListDueByLeague(ctx context.Context, leagueID int64, now time.Time, limit int) ([]fixture.Fixture, error) {
	conds := append(dueConditions(now), qb.Eq("u.league_id", leagueID))
	return r.listDue(ctx, "list due fixtures by league", limit, conds...)
}

func (r *FixtureRepository) ListDue(ctx context.Context, now time.Time, leagueProviderID int64, limit int) ([]fixture.Fixture, error) {
	conds := dueConditions(now)
	if leagueProviderID > 0 {
		conds = append(conds, qb.Eq("l.provider_id", leagueProviderID))
	}
	return r.listDue(ctx, "list due fixtures", limit, conds...)
}

func (r *FixtureRepository) listDue(ctx context.Context, op string, limit int, conds ...qb.Condition) ([]fixture.Fixture, error) {
	query, args, err := fixtureSelectBuilder().
		Where(conds...).
		OrderBy("u.match_date", "u.id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []fixtureTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		out = append(out, fixtureFromRow(row))
	}
	return out, nil
}

func (r *FixtureRepository) MarkProcessed(ctx context.Context, fixtureID int64, at time.Time) error {
	query, args, err := qb.Update("upcoming_matches").
		Set("is_processed", true).
		Set("processed_at", at.UTC()).
		Where(qb.Eq("id", fixtureID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark fixture processed query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark fixture processed id=%d: %w", fixtureID, err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("mark fixture processed id=%d: no row updated", fixtureID)
	}
	return nil
}

func (r *FixtureRepository) Summary(ctx context.Context, now time.Time) (fixture.Summary, error) {
	query, args, err := fixtureSummaryBuilder(now).ToSQL()
	if err != nil {
		return fixture.Summary{}, fmt.Errorf("build fixture summary query: %w", err)
	}

	var row fixtureSummaryRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return fixture.Summary{}, fmt.Errorf("fixture summary: %w", err)
	}
	return fixture.Summary{
		Total:          row.Total,
		Processed:      row.Processed,
		Unprocessed:    row.Unprocessed,
		ReadyToProcess: row.ReadyToProcess,
	}, nil
}

func dueConditions(now time.Time) []qb.Condition {
	return []qb.Condition{
		qb.Eq("u.is_processed", false),
		qb.Cmp("u.match_date", "<", now.UTC()),
	}
}

func fixtureSelectBuilder() *qb.SelectBuilder {
	return qb.Select(
		"u.id",
		"u.provider_match_id",
		"u.league_id",
		"l.provider_id AS league_provider_id",
		"l.name AS league_name",
		"u.home_team_name",
		"u.away_team_name",
		"u.round",
		"u.match_date",
		"u.is_processed",
		"u.processed_at",
	).From("upcoming_matches u").
		Join("JOIN leagues l ON l.id = u.league_id")
}

func fixtureFromRow(row fixtureTableModel) fixture.Fixture {
	out := fixture.Fixture{
		ID:               row.ID,
		ProviderMatchID:  row.ProviderMatchID,
		LeagueID:         row.LeagueID,
		LeagueProviderID: row.LeagueProviderID,
		LeagueName:       row.LeagueName,
		HomeTeam:         row.HomeTeam,
		AwayTeam:         row.AwayTeam,
		KickoffAt:        row.KickoffAt,
		Processed:        row.Processed,
		ProcessedAt:      row.ProcessedAt,
	}
	if row.Round != nil {
		out.Round = *row.Round
	}
	return out
}

func fixtureSummaryBuilder(now time.Time) *qb.SelectBuilder {
	return qb.Select(
		"COUNT(1) AS total",
		"COUNT(1) FILTER (WHERE is_processed) AS processed",
		"COUNT(1) FILTER (WHERE NOT is_processed) AS unprocessed",
	).
		ColumnExpr("COUNT(1) FILTER (WHERE NOT is_processed AND match_date < ?) AS ready_to_process", now.UTC()).
		From("upcoming_matches")
}
