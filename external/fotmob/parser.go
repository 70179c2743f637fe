package fotmob

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/smuti/greydb-api/internal/domain/lineup"
	"github.com/smuti/greydb-api/internal/domain/match"
	"github.com/smuti/greydb-api/internal/domain/playerstats"
	"github.com/smuti/greydb-api/internal/domain/teamstats"
	"github.com/smuti/greydb-api/internal/usecase"
)

const defaultH2HSampleSize = 10

var teamSheetSides = []struct {
	key  string
	side match.Side
}{
	{key: "homeTeam", side: match.SideHome},
	{key: "awayTeam", side: match.SideAway},
}

// Parser turns matchDetails documents into usecase.ParsedMatch values. It does
// no I/O; sections it cannot read are left empty.
type Parser struct {
	h2hSampleSize int
}

func NewParser() *Parser {
	return &Parser{h2hSampleSize: defaultH2HSampleSize}
}

func (p *Parser) Parse(raw []byte) (usecase.ParsedMatch, error) {
	var doc map[string]any
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return usecase.ParsedMatch{}, fmt.Errorf("%w: decode payload: %v", usecase.ErrMalformedPayload, err)
	}
	if doc == nil {
		return usecase.ParsedMatch{}, fmt.Errorf("%w: payload is not an object", usecase.ErrMalformedPayload)
	}
	return p.ParseDocument(doc)
}

func (p *Parser) ParseDocument(doc map[string]any) (usecase.ParsedMatch, error) {
	general := mapAt(doc, "general")
	header := mapAt(doc, "header")
	content := mapAt(doc, "content")

	providerMatchID := getInt64(general, "matchId")
	if providerMatchID <= 0 {
		return usecase.ParsedMatch{}, fmt.Errorf("%w: general.matchId is missing", usecase.ErrMalformedPayload)
	}

	headerTeams := listAt(header, "teams")
	out := usecase.ParsedMatch{
		ProviderMatchID: providerMatchID,
		League:          parseLeague(general),
		HomeTeam:        parseTeam(asMap(general["homeTeam"]), headerTeamAt(headerTeams, 0)),
		AwayTeam:        parseTeam(asMap(general["awayTeam"]), headerTeamAt(headerTeams, 1)),
		Round:           ParseRound(general["matchRound"]),
		RoundName:       getString(general, "leagueRoundName"),
		MatchDate:       parseKickoff(general),
		Finished:        getBool(mapAt(header, "status"), "finished") || getBool(general, "finished"),
	}
	out.HomeScore, out.AwayScore = parseScores(headerTeams)

	table := newStatTable(content)
	out.Stats = parseStats(table)
	out.AdvancedStats = parseAdvancedStats(table)
	out.Context = parseContext(content)
	out.Formations = parseFormations(content)
	out.Lineups = parseLineups(content)
	out.Events = parseEvents(content)
	out.Availability = parseAvailability(content)
	out.PlayerStats = parsePlayerStats(content, out.HomeTeam.ProviderID, out.AwayTeam.ProviderID)
	out.H2H = p.parseH2H(content, out.HomeTeam.ProviderID, out.AwayTeam.ProviderID)
	return out, nil
}

// ParseRound normalizes free-text round labels: "1/N" gives N, final gives 1,
// semi gives 2, quarter gives 4, otherwise the first run of digits or 0.
func ParseRound(raw any) int {
	switch typed := raw.(type) {
	case nil:
		return 0
	case float64:
		return int(typed)
	case int:
		return typed
	case int64:
		return int(typed)
	case string:
		return parseRoundLabel(typed)
	default:
		return parseRoundLabel(fmt.Sprint(typed))
	}
}

func parseRoundLabel(raw string) int {
	label := strings.ToLower(strings.TrimSpace(raw))
	if label == "" {
		return 0
	}

	if strings.Contains(label, "/") {
		parts := strings.Split(label, "/")
		if len(parts) == 2 && strings.TrimSpace(parts[0]) == "1" {
			if n, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil && n > 0 {
				return n
			}
		}
		return 0
	}

	switch {
	case label == "final" || label == "finale":
		return 1
	case strings.Contains(label, "semi"):
		return 2
	case strings.Contains(label, "quarter"):
		return 4
	}

	digits := digitsRegex.FindString(label)
	if digits == "" {
		return 0
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

func parseLeague(general map[string]any) usecase.ExternalLeague {
	providerID := getInt64(general, "parentLeagueId")
	if providerID <= 0 {
		providerID = getInt64(general, "leagueId")
	}
	return usecase.ExternalLeague{
		ProviderID:  providerID,
		Name:        firstNonEmpty(getString(general, "leagueName"), getString(general, "parentLeagueName")),
		CountryCode: getString(general, "countryCode"),
		Season:      firstNonEmpty(getString(general, "parentLeagueSeason"), getString(general, "leagueSeason")),
	}
}

func headerTeamAt(items []any, index int) map[string]any {
	if index >= len(items) {
		return nil
	}
	return asMap(items[index])
}

func parseTeam(general, header map[string]any) usecase.ExternalTeam {
	providerID := getInt64(general, "id")
	if providerID <= 0 {
		providerID = getInt64(header, "id")
	}
	return usecase.ExternalTeam{
		ProviderID: providerID,
		Name:       firstNonEmpty(getString(general, "name"), getString(header, "name")),
		ShortName:  getString(general, "shortName"),
	}
}

func parseKickoff(general map[string]any) *time.Time {
	raw := getString(general, "matchTimeUTCDate")
	if raw == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	value := parsed.UTC()
	return &value
}

func parseScores(headerTeams []any) (*int, *int) {
	if len(headerTeams) < 2 {
		return nil, nil
	}
	home := asMap(headerTeams[0])
	away := asMap(headerTeams[1])
	if home == nil || away == nil {
		return nil, nil
	}
	return intPtr(home["score"]), intPtr(away["score"])
}

// statTable indexes content.stats.Periods.All by metric key into home/away pairs.
type statTable map[string][2]any

func newStatTable(content map[string]any) statTable {
	groups := listAt(content, "stats", "Periods", "All", "stats")
	if len(groups) == 0 {
		return nil
	}

	table := make(statTable)
	for _, rawGroup := range groups {
		items, ok := asMap(rawGroup)["stats"].([]any)
		if !ok {
			continue
		}
		for _, rawItem := range items {
			item := asMap(rawItem)
			pair, ok := item["stats"].([]any)
			if !ok {
				continue
			}
			var values [2]any
			if len(pair) > 0 {
				values[0] = pair[0]
			}
			if len(pair) > 1 {
				values[1] = pair[1]
			}
			for _, key := range []string{getString(item, "key"), getString(item, "title")} {
				if key == "" {
					continue
				}
				if _, exists := table[key]; !exists {
					table[key] = values
				}
			}
		}
	}
	return table
}

func (t statTable) find(keys ...string) ([2]any, bool) {
	for _, key := range keys {
		if pair, ok := t[key]; ok {
			return pair, true
		}
	}
	return [2]any{}, false
}

func parseStats(table statTable) *teamstats.MatchStats {
	if len(table) == 0 {
		return nil
	}

	out := &teamstats.MatchStats{}
	counter := func(keys ...string) (int, int) {
		pair, _ := table.find(keys...)
		return countOrZero(pair[0]), countOrZero(pair[1])
	}

	xg, _ := table.find("expected_goals")
	out.Home.XG, out.Away.XG = metricValue(xg[0]), metricValue(xg[1])
	out.Home.Shots, out.Away.Shots = counter("total_shots")
	out.Home.ShotsOnTarget, out.Away.ShotsOnTarget = counter("ShotsOnTarget", "shots_on_target")
	out.Home.Corners, out.Away.Corners = counter("corners")
	out.Home.Fouls, out.Away.Fouls = counter("fouls")
	out.Home.YellowCards, out.Away.YellowCards = counter("yellow_cards")
	out.Home.RedCards, out.Away.RedCards = counter("red_cards")

	if pair, ok := table.find("BallPossesion", "BallPossession", "Ball possession", "possession_percentage"); ok {
		out.Home.Possession, out.Away.Possession = floatPtr(pair[0]), floatPtr(pair[1])
	} else {
		home, away := 50.0, 50.0
		out.Home.Possession, out.Away.Possession = &home, &away
	}
	return out
}

func countOrZero(raw any) int {
	if value := metricCount(raw); value != nil {
		return *value
	}
	return 0
}

type advancedSetter func(dst *teamstats.AdvancedSideStats, raw any)

var advancedStatSetters = map[string]advancedSetter{
	"expected_goals_open_play": func(d *teamstats.AdvancedSideStats, v any) { d.OpenPlayXG = metricValue(v) },
	"expected_goals_set_play":  func(d *teamstats.AdvancedSideStats, v any) { d.SetPieceXG = metricValue(v) },
	"expected_goals_on_target": func(d *teamstats.AdvancedSideStats, v any) { d.XGOT = metricValue(v) },
	"blocked_shots":            func(d *teamstats.AdvancedSideStats, v any) { d.ShotsBlocked = metricCount(v) },
	"ShotsOffTarget":           func(d *teamstats.AdvancedSideStats, v any) { d.ShotsOffTarget = metricCount(v) },
	"shots_inside_box":         func(d *teamstats.AdvancedSideStats, v any) { d.ShotsInsideBox = metricCount(v) },
	"shots_outside_box":        func(d *teamstats.AdvancedSideStats, v any) { d.ShotsOutsideBox = metricCount(v) },
	"passes":                   func(d *teamstats.AdvancedSideStats, v any) { d.TotalPasses = metricCount(v) },
	"accurate_passes":          func(d *teamstats.AdvancedSideStats, v any) { d.PassAccuracy = metricPct(v) },
	"long_balls_accurate": func(d *teamstats.AdvancedSideStats, v any) {
		d.LongPasses, d.LongPassAccuracy = metricCount(v), metricPct(v)
	},
	"accurate_crosses": func(d *teamstats.AdvancedSideStats, v any) {
		d.Crosses, d.CrossAccuracy = metricCount(v), metricPct(v)
	},
	"own_half_passes":            func(d *teamstats.AdvancedSideStats, v any) { d.PassesOwnHalf = metricCount(v) },
	"opposition_half_passes":     func(d *teamstats.AdvancedSideStats, v any) { d.PassesOppHalf = metricCount(v) },
	"touches_opp_box":            func(d *teamstats.AdvancedSideStats, v any) { d.TouchesInBox = metricCount(v) },
	"matchstats.headers.tackles": func(d *teamstats.AdvancedSideStats, v any) { d.Tackles = metricCount(v) },
	"interceptions":              func(d *teamstats.AdvancedSideStats, v any) { d.Interceptions = metricCount(v) },
	"shot_blocks":                func(d *teamstats.AdvancedSideStats, v any) { d.Blocks = metricCount(v) },
	"clearances":                 func(d *teamstats.AdvancedSideStats, v any) { d.Clearances = metricCount(v) },
	"keeper_saves":               func(d *teamstats.AdvancedSideStats, v any) { d.GoalkeeperSaves = metricCount(v) },
	"duel_won":                   func(d *teamstats.AdvancedSideStats, v any) { d.DuelsWon = metricCount(v) },
	"ground_duels_won":           func(d *teamstats.AdvancedSideStats, v any) { d.DuelsWonPct = metricPct(v) },
	"aerials_won": func(d *teamstats.AdvancedSideStats, v any) {
		d.AerialDuelsWon, d.AerialDuelsPct = metricCount(v), metricPct(v)
	},
	"dribbles_succeeded": func(d *teamstats.AdvancedSideStats, v any) {
		d.DribblesSuccessful, d.DribblesPct = metricCount(v), metricPct(v)
	},
	"Offsides": func(d *teamstats.AdvancedSideStats, v any) { d.Offsides = metricCount(v) },
}

func parseAdvancedStats(table statTable) *teamstats.AdvancedStats {
	if len(table) == 0 {
		return nil
	}

	out := &teamstats.AdvancedStats{}
	for key, set := range advancedStatSetters {
		pair, ok := table[key]
		if !ok {
			continue
		}
		set(&out.Home, pair[0])
		set(&out.Away, pair[1])
	}
	if out.Home.IsZero() && out.Away.IsZero() {
		return nil
	}
	return out
}

func parseContext(content map[string]any) *match.Context {
	facts := mapAt(content, "matchFacts")
	if len(facts) == 0 {
		return nil
	}

	info := mapAt(facts, "infoBox")
	stadium := mapAt(info, "Stadium")
	referee := mapAt(info, "Referee")
	weather := mapAt(content, "weather")
	return &match.Context{
		StadiumName:      getString(stadium, "name"),
		StadiumLat:       floatPtr(stadium["lat"]),
		StadiumLon:       floatPtr(stadium["long"]),
		StadiumCapacity:  intPtr(stadium["capacity"]),
		Referee:          getString(referee, "text"),
		RefereeCountry:   getString(referee, "country"),
		Attendance:       parseAttendance(info["Attendance"]),
		WeatherCondition: getString(weather, "condition"),
		WeatherTemp:      floatPtr(weather["temp"]),
	}
}

func parseAttendance(raw any) *int {
	text, ok := raw.(string)
	if !ok {
		return intPtr(raw)
	}
	text = strings.NewReplacer(",", "", ".", "", " ", "").Replace(text)
	value, err := strconv.Atoi(text)
	if err != nil {
		return nil
	}
	return &value
}

func parseFormations(content map[string]any) *match.Formations {
	sheet := mapAt(content, "lineup")
	out := &match.Formations{
		HomeFormation: getString(mapAt(sheet, "homeTeam"), "formation"),
		AwayFormation: getString(mapAt(sheet, "awayTeam"), "formation"),
	}
	if out.HomeFormation == "" && out.AwayFormation == "" {
		return nil
	}
	return out
}

func playerName(item map[string]any) string {
	switch typed := item["name"].(type) {
	case string:
		return strings.TrimSpace(typed)
	case map[string]any:
		full := getString(typed, "fullName")
		if full != "" {
			return full
		}
		return strings.TrimSpace(getString(typed, "firstName") + " " + getString(typed, "lastName"))
	default:
		return ""
	}
}

func parseLineups(content map[string]any) []lineup.Player {
	sheet := mapAt(content, "lineup")
	if sheet == nil {
		return nil
	}

	var out []lineup.Player
	for _, side := range teamSheetSides {
		team := mapAt(sheet, side.key)
		out = appendLineupGroup(out, listAt(team, "starters"), side.side, true)
		out = appendLineupGroup(out, listAt(team, "subs"), side.side, false)
	}
	return out
}

func appendLineupGroup(dst []lineup.Player, items []any, side match.Side, starter bool) []lineup.Player {
	for _, raw := range items {
		item := asMap(raw)
		name := playerName(item)
		if name == "" {
			continue
		}

		player := lineup.Player{
			Side:         side,
			ProviderID:   getInt64(item, "id"),
			PlayerName:   name,
			ShirtNumber:  intPtr(item["shirtNumber"]),
			IsStarter:    starter,
			Age:          intPtr(item["age"]),
			SeasonRating: floatPtr(mapAt(item, "performance")["seasonRating"]),
		}
		if positionID, ok := asInt64(item["positionId"]); ok {
			player.Position = strconv.FormatInt(positionID, 10)
			player.PositionRole = lineup.PositionRole(int(positionID))
		}
		if value := floatPtr(item["marketValue"]); value != nil && *value != 0 {
			millions := *value / 1_000_000
			player.MarketValueM = &millions
		}
		dst = append(dst, player)
	}
	return dst
}

func parseEvents(content map[string]any) []match.Event {
	items := listAt(content, "matchFacts", "events", "events")
	if len(items) == 0 {
		return nil
	}

	out := make([]match.Event, 0, len(items))
	for _, raw := range items {
		item := asMap(raw)
		if item == nil {
			continue
		}
		eventType, ok := mapEventType(item)
		if !ok {
			continue
		}

		event := match.Event{
			Side:       eventSide(item),
			Type:       eventType,
			Minute:     intPtr(item["time"]),
			AddedTime:  intPtr(item["overloadTime"]),
			PlayerName: firstNonEmpty(getString(item, "fullName"), getString(item, "nameStr"), getString(mapAt(item, "player"), "name")),
			IsOwnGoal:  getBool(item, "ownGoal"),
			IsPenalty:  strings.Contains(getString(item, "goalDescription"), "Penalty") || strings.Contains(getString(item, "suffixKey"), "penalty"),
			RawEvent:   rawJSON(item),
		}

		switch eventType {
		case match.EventGoal:
			event.AssistedBy = getString(item, "assistStr")
		case match.EventSubstitution:
			if swap, ok := item["swap"].([]any); ok {
				if len(swap) > 0 {
					event.PlayerOut = getString(asMap(swap[0]), "name")
				}
				if len(swap) > 1 {
					event.PlayerIn = getString(asMap(swap[1]), "name")
				}
			}
			event.PlayerName = firstNonEmpty(event.PlayerOut, event.PlayerName)
		}
		out = append(out, event)
	}
	return out
}

func mapEventType(item map[string]any) (match.EventType, bool) {
	raw := getString(item, "type")
	switch raw {
	case "":
		return "", false
	case "AddedTime":
		return "", false
	case "Goal":
		return match.EventGoal, true
	case "Card":
		switch getString(item, "card") {
		case "Red", "YellowRed":
			return match.EventRedCard, true
		default:
			return match.EventYellowCard, true
		}
	case "Substitution":
		return match.EventSubstitution, true
	default:
		return match.EventType(strings.ToUpper(raw)), true
	}
}

func eventSide(item map[string]any) match.Side {
	if isHome, ok := item["isHome"].(bool); ok && !isHome {
		return match.SideAway
	}
	return match.SideHome
}

func parseAvailability(content map[string]any) []lineup.Availability {
	sheet := mapAt(content, "lineup")
	if sheet == nil {
		return nil
	}

	var out []lineup.Availability
	for _, side := range teamSheetSides {
		for _, raw := range listAt(sheet, side.key, "unavailable") {
			item := asMap(raw)
			name := playerName(item)
			if name == "" {
				continue
			}
			reason := getString(item, "injuryStatus")
			if reason == "" || reason == "Unknown" {
				reason = firstNonEmpty(getString(item, "reason"), getString(mapAt(item, "unavailability"), "type"), "Unknown")
			}
			out = append(out, lineup.Availability{
				Side:       side.side,
				PlayerName: name,
				Status:     lineup.StatusUnavailable,
				Reason:     reason,
			})
		}
	}
	return out
}

func parsePlayerStats(content map[string]any, homeProviderID, awayProviderID int64) []playerstats.MatchStat {
	players := mapAt(content, "playerStats")
	if len(players) == 0 {
		return nil
	}

	sheet := mapAt(content, "lineup")
	if id := getInt64(mapAt(sheet, "homeTeam"), "id"); id > 0 {
		homeProviderID = id
	}
	if id := getInt64(mapAt(sheet, "awayTeam"), "id"); id > 0 {
		awayProviderID = id
	}

	playerKeys := make([]string, 0, len(players))
	for key := range players {
		playerKeys = append(playerKeys, key)
	}
	sort.Strings(playerKeys)

	out := make([]playerstats.MatchStat, 0, len(playerKeys))
	for _, key := range playerKeys {
		item := asMap(players[key])
		if item == nil {
			continue
		}

		var side match.Side
		switch getInt64(item, "teamId") {
		case 0:
			continue
		case homeProviderID:
			side = match.SideHome
		case awayProviderID:
			side = match.SideAway
		default:
			continue
		}

		merged := map[string]any{}
		groups, _ := item["stats"].([]any)
		for _, rawGroup := range groups {
			for statKey, value := range mapAt(asMap(rawGroup), "stats") {
				merged[statKey] = value
			}
		}
		stat := func(field string, keys ...string) any {
			for _, k := range keys {
				if value, ok := mapAt(merged, k, "stat")[field]; ok && value != nil {
					return value
				}
			}
			return nil
		}
		value := func(keys ...string) any { return stat("value", keys...) }

		providerPlayerID := getInt64(item, "id")
		if providerPlayerID <= 0 {
			providerPlayerID, _ = asInt64(key)
		}
		row := playerstats.MatchStat{
			Side:             side,
			ProviderPlayerID: providerPlayerID,
			PlayerName:       playerName(item),
			IsGoalkeeper:     getBool(item, "isGoalkeeper"),
			Rating:           floatPtr(value("FotMob rating", "rating_title")),
			MinutesPlayed:    intPtr(value("Minutes played", "minutes_played")),
			Goals:            intOrZero(value("Goals", "goals")),
			Assists:          intOrZero(value("Assists", "assists")),
			XG:               floatPtr(value("Expected goals (xG)", "expected_goals")),
			XA:               floatPtr(value("Expected assists (xA)", "expected_assists")),
			TotalShots:       intOrZero(value("Total shots", "total_shots")),
			ShotsOnTarget:    intOrZero(value("Shots on target", "ShotsOnTarget")),
			Touches:          intOrZero(value("Touches", "touches")),
			TotalPasses:      intOrZero(stat("total", "Accurate passes", "accurate_passes")),
			AccuratePasses:   intOrZero(value("Accurate passes", "accurate_passes")),
			KeyPasses:        intOrZero(value("Key passes", "key_passes")),
			Tackles:          intOrZero(value("Tackles", "tackles")),
			Interceptions:    intOrZero(value("Interceptions", "interceptions")),
			Clearances:       intOrZero(value("Clearances", "clearances")),
			DuelsWon:         intOrZero(value("Duels won", "duels_won")),
			DuelsLost:        intOrZero(value("Duels lost", "duels_lost")),
			FoulsCommitted:   intOrZero(value("Fouls", "fouls")),
			FoulsWon:         intOrZero(value("Was fouled", "was_fouled")),
		}
		if row.IsGoalkeeper {
			saves := intOrZero(value("Saves", "saves"))
			row.Saves = &saves
			row.GoalsConceded = intPtr(value("Goals conceded", "goals_conceded"))
		}
		out = append(out, row)
	}
	return out
}

func (p *Parser) parseH2H(content map[string]any, homeProviderID, awayProviderID int64) *usecase.ParsedH2H {
	section := mapAt(content, "h2h")
	if len(section) == 0 {
		return nil
	}

	summary, _ := section["summary"].([]any)
	at := func(i int) int {
		if i >= len(summary) {
			return 0
		}
		return intOrZero(summary[i])
	}
	out := &usecase.ParsedH2H{HomeWins: at(0), Draws: at(1), AwayWins: at(2)}
	if out.Total() == 0 {
		return nil
	}

	matches, _ := section["matches"].([]any)
	if len(matches) > p.h2hSampleSize {
		matches = matches[:p.h2hSampleSize]
	}
	if len(matches) == 0 {
		return out
	}

	var homeGoals, awayGoals int
	for _, raw := range matches {
		item := asMap(raw)
		home, away := h2hScore(item)
		if awayProviderID > 0 && getInt64(mapAt(item, "home"), "id") == awayProviderID &&
			getInt64(mapAt(item, "away"), "id") == homeProviderID {
			home, away = away, home
		}
		homeGoals += home
		awayGoals += away
	}
	out.AvgHomeGoals = round2(float64(homeGoals) / float64(len(matches)))
	out.AvgAwayGoals = round2(float64(awayGoals) / float64(len(matches)))
	return out
}

func h2hScore(item map[string]any) (int, int) {
	_, hasHome := item["homeScore"]
	_, hasAway := item["awayScore"]
	if hasHome || hasAway {
		return intOrZero(item["homeScore"]), intOrZero(item["awayScore"])
	}
	scoreStr := getString(mapAt(item, "status"), "scoreStr")
	parts := strings.Split(scoreStr, "-")
	if len(parts) != 2 {
		return 0, 0
	}
	return intOrZero(strings.TrimSpace(parts[0])), intOrZero(strings.TrimSpace(parts[1]))
}
