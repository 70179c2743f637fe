package team

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const DefaultName = "Unknown"

// Team is a club or national side referenced by ingested matches.
type Team struct {
	ID         int64
	ProviderID int64
	LeagueID   int64
	Name       string
	ShortName  string
}

func (t Team) Validate() error {
	if t.ProviderID <= 0 {
		return fmt.Errorf("team provider id must be > 0")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	return nil
}

// ShortNameOrDefault falls back to the first three characters of name.
func ShortNameOrDefault(shortName, name string) string {
	shortName = strings.TrimSpace(shortName)
	if shortName != "" {
		return shortName
	}
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) <= 3 {
		return name
	}
	return string([]rune(name)[:3])
}
