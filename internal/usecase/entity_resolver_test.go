package usecase

import (
	"context"
	"errors"
	"testing"
)

func TestEntityResolver_ResolveLeague_StableAcrossCalls(t *testing.T) {
	t.Parallel()

	p := newTestPipeline()
	ctx := context.Background()

	first, err := p.resolver.ResolveLeague(ctx, ExternalLeague{ProviderID: 71, Name: "Super Lig", CountryCode: "TUR"})
	if err != nil {
		t.Fatalf("resolve league: %v", err)
	}
	second, err := p.resolver.ResolveLeague(ctx, ExternalLeague{ProviderID: 71, Name: "Trendyol Super Lig"})
	if err != nil {
		t.Fatalf("resolve league again: %v", err)
	}
	if first != second {
		t.Fatalf("unexpected league id: got=%d want=%d", second, first)
	}

	stored, _, err := p.leagues.GetByProviderID(ctx, 71)
	if err != nil {
		t.Fatalf("get league: %v", err)
	}
	if stored.Name != "Super Lig" {
		t.Fatalf("league name must not be overwritten: got=%q want=%q", stored.Name, "Super Lig")
	}
	if stored.Season != defaultSeasonLabel {
		t.Fatalf("unexpected default season: got=%q want=%q", stored.Season, defaultSeasonLabel)
	}
	if got := p.store.LeagueCount(); got != 1 {
		t.Fatalf("unexpected league count: got=%d want=1", got)
	}
}

func TestEntityResolver_ResolveTeam_DefaultsNames(t *testing.T) {
	t.Parallel()

	p := newTestPipeline()
	ctx := context.Background()

	leagueID, err := p.resolver.ResolveLeague(ctx, ExternalLeague{ProviderID: 71})
	if err != nil {
		t.Fatalf("resolve league: %v", err)
	}
	teamID, err := p.resolver.ResolveTeam(ctx, ExternalTeam{ProviderID: 8637, Name: "Galatasaray"}, leagueID)
	if err != nil {
		t.Fatalf("resolve team: %v", err)
	}
	again, err := p.resolver.ResolveTeam(ctx, ExternalTeam{ProviderID: 8637, Name: "Galatasaray SK", ShortName: "GS"}, leagueID)
	if err != nil {
		t.Fatalf("resolve team again: %v", err)
	}
	if teamID != again {
		t.Fatalf("unexpected team id: got=%d want=%d", again, teamID)
	}

	stored, _, _ := p.teams.GetByProviderID(ctx, 8637)
	if stored.ShortName != "Gal" {
		t.Fatalf("unexpected short name: got=%q want=%q", stored.ShortName, "Gal")
	}

	unnamed, err := p.resolver.ResolveTeam(ctx, ExternalTeam{ProviderID: 1}, leagueID)
	if err != nil {
		t.Fatalf("resolve unnamed team: %v", err)
	}
	row, _, _ := p.teams.GetByProviderID(ctx, 1)
	if row.ID != unnamed || row.Name != "Unknown" {
		t.Fatalf("unexpected unnamed team: got=%+v", row)
	}

	league, _, _ := p.leagues.GetByProviderID(ctx, 71)
	if league.Name != "Unknown" {
		t.Fatalf("unexpected default league name: got=%q want=%q", league.Name, "Unknown")
	}
}

func TestEntityResolver_RejectsMissingProviderID(t *testing.T) {
	t.Parallel()

	p := newTestPipeline()
	if _, err := p.resolver.ResolveLeague(context.Background(), ExternalLeague{Name: "No id"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := p.resolver.ResolveTeam(context.Background(), ExternalTeam{Name: "No id"}, 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
