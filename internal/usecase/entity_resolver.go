package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/smuti/greydb-api/internal/domain/league"
	"github.com/smuti/greydb-api/internal/domain/team"
	"github.com/smuti/greydb-api/internal/platform/logging"
)

const defaultSeasonLabel = "2024/2025"

// EntityResolver maps provider league and team ids to internal ids, creating
// records on first sight. Existing records are never renamed.
type EntityResolver struct {
	leagueRepo    league.Repository
	teamRepo      team.Repository
	defaultSeason string
	logger        *logging.Logger
}

func NewEntityResolver(leagueRepo league.Repository, teamRepo team.Repository, defaultSeason string, logger *logging.Logger) *EntityResolver {
	if logger == nil {
		logger = logging.Default()
	}
	defaultSeason = strings.TrimSpace(defaultSeason)
	if defaultSeason == "" {
		defaultSeason = defaultSeasonLabel
	}
	return &EntityResolver{
		leagueRepo:    leagueRepo,
		teamRepo:      teamRepo,
		defaultSeason: defaultSeason,
		logger:        logger,
	}
}

func (r *EntityResolver) ResolveLeague(ctx context.Context, input ExternalLeague) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EntityResolver.ResolveLeague")
	defer span.End()

	if input.ProviderID <= 0 {
		return 0, fmt.Errorf("%w: league provider id must be > 0", ErrInvalidInput)
	}

	existing, exists, err := r.leagueRepo.GetByProviderID(ctx, input.ProviderID)
	if err != nil {
		return 0, fmt.Errorf("get league provider_id=%d: %w", input.ProviderID, err)
	}
	if exists {
		return existing.ID, nil
	}

	item := league.League{
		ProviderID:  input.ProviderID,
		Name:        firstNonBlank(input.Name, league.DefaultName),
		Country:     strings.TrimSpace(input.CountryCode),
		CountryCode: strings.TrimSpace(input.CountryCode),
		Season:      firstNonBlank(input.Season, r.defaultSeason),
	}
	if err := item.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	id, err := r.leagueRepo.Ensure(ctx, item)
	if err != nil {
		return 0, fmt.Errorf("ensure league provider_id=%d: %w", input.ProviderID, err)
	}
	r.logger.InfoContext(ctx, "league resolved", "provider_id", input.ProviderID, "league_id", id)
	return id, nil
}

func (r *EntityResolver) ResolveTeam(ctx context.Context, input ExternalTeam, leagueID int64) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EntityResolver.ResolveTeam")
	defer span.End()

	if input.ProviderID <= 0 {
		return 0, fmt.Errorf("%w: team provider id must be > 0", ErrInvalidInput)
	}

	existing, exists, err := r.teamRepo.GetByProviderID(ctx, input.ProviderID)
	if err != nil {
		return 0, fmt.Errorf("get team provider_id=%d: %w", input.ProviderID, err)
	}
	if exists {
		return existing.ID, nil
	}

	name := firstNonBlank(input.Name, team.DefaultName)
	item := team.Team{
		ProviderID: input.ProviderID,
		LeagueID:   leagueID,
		Name:       name,
		ShortName:  team.ShortNameOrDefault(input.ShortName, name),
	}
	if err := item.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	id, err := r.teamRepo.Ensure(ctx, item)
	if err != nil {
		return 0, fmt.Errorf("ensure team provider_id=%d: %w", input.ProviderID, err)
	}
	return id, nil
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
