package postgres

import "time"

type leagueTableModel struct {
	ID          int64     `db:"id"`
	ProviderID  int64     `db:"provider_id"`
	Name        string    `db:"name"`
	Country     *string   `db:"country"`
	CountryCode *string   `db:"country_code"`
	Season      *string   `db:"season"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type leagueInsertModel struct {
	ProviderID  int64   `db:"provider_id"`
	Name        string  `db:"name"`
	Country     *string `db:"country"`
	CountryCode *string `db:"country_code"`
	Season      *string `db:"season"`
}
