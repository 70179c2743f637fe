package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/smuti/greydb-api/internal/domain/team"
	qb "github.com/smuti/greydb-api/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetByProviderID(ctx context.Context, providerID int64) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(qb.Eq("provider_id", providerID)).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build get team by provider id query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team provider_id=%d: %w", providerID, err)
	}

	out := team.Team{
		ID:         row.ID,
		ProviderID: row.ProviderID,
		Name:       row.Name,
		ShortName:  stringOrEmpty(row.ShortName),
	}
	if row.LeagueID != nil {
		out.LeagueID = *row.LeagueID
	}
	return out, true, nil
}

// Ensure keeps the first stored name and league of a team.
func (r *TeamRepository) Ensure(ctx context.Context, item team.Team) (int64, error) {
	existing, ok, err := r.GetByProviderID(ctx, item.ProviderID)
	if err != nil {
		return 0, err
	}
	if ok {
		return existing.ID, nil
	}

	model := teamInsertModel{
		ProviderID: item.ProviderID,
		Name:       item.Name,
		ShortName:  optionalString(item.ShortName),
	}
	if item.LeagueID > 0 {
		leagueID := item.LeagueID
		model.LeagueID = &leagueID
	}
	query, args, err := qb.InsertModel("teams", model, "ON CONFLICT (provider_id) DO NOTHING RETURNING id")
	if err != nil {
		return 0, fmt.Errorf("build insert team query: %w", err)
	}

	var id int64
	err = r.db.GetContext(ctx, &id, query, args...)
	if err == nil {
		return id, nil
	}
	if !isNotFound(err) {
		return 0, classifyErr(fmt.Errorf("insert team provider_id=%d: %w", item.ProviderID, err))
	}

	existing, ok, err = r.GetByProviderID(ctx, item.ProviderID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("team provider_id=%d missing after insert conflict", item.ProviderID)
	}
	return existing.ID, nil
}
