package postgres

import "time"

type teamTableModel struct {
	ID         int64     `db:"id"`
	ProviderID int64     `db:"provider_id"`
	LeagueID   *int64    `db:"league_id"`
	Name       string    `db:"name"`
	ShortName  *string   `db:"short_name"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type teamInsertModel struct {
	ProviderID int64   `db:"provider_id"`
	LeagueID   *int64  `db:"league_id"`
	Name       string  `db:"name"`
	ShortName  *string `db:"short_name"`
}
