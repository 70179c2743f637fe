package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/smuti/greydb-api/internal/domain/league"
	qb "github.com/smuti/greydb-api/internal/platform/querybuilder"
)

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) GetByProviderID(ctx context.Context, providerID int64) (league.League, bool, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(qb.Eq("provider_id", providerID)).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league by provider id query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league provider_id=%d: %w", providerID, err)
	}

	return leagueFromRow(row), true, nil
}

// Ensure never overwrites an existing row; a lost insert race falls back to a re-select.
func (r *LeagueRepository) Ensure(ctx context.Context, item league.League) (int64, error) {
	existing, ok, err := r.GetByProviderID(ctx, item.ProviderID)
	if err != nil {
		return 0, err
	}
	if ok {
		return existing.ID, nil
	}

	model := leagueInsertModel{
		ProviderID:  item.ProviderID,
		Name:        item.Name,
		Country:     optionalString(item.Country),
		CountryCode: optionalString(item.CountryCode),
		Season:      optionalString(item.Season),
	}
	query, args, err := qb.InsertModel("leagues", model, "ON CONFLICT (provider_id) DO NOTHING RETURNING id")
	if err != nil {
		return 0, fmt.Errorf("build insert league query: %w", err)
	}

	var id int64
	err = r.db.GetContext(ctx, &id, query, args...)
	if err == nil {
		return id, nil
	}
	if !isNotFound(err) {
		return 0, classifyErr(fmt.Errorf("insert league provider_id=%d: %w", item.ProviderID, err))
	}

	existing, ok, err = r.GetByProviderID(ctx, item.ProviderID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("league provider_id=%d missing after insert conflict", item.ProviderID)
	}
	return existing.ID, nil
}

func leagueFromRow(row leagueTableModel) league.League {
	return league.League{
		ID:          row.ID,
		ProviderID:  row.ProviderID,
		Name:        row.Name,
		Country:     stringOrEmpty(row.Country),
		CountryCode: stringOrEmpty(row.CountryCode),
		Season:      stringOrEmpty(row.Season),
	}
}
