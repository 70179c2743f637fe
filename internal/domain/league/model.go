package league

import "fmt"

const DefaultName = "Unknown"

// League is a competition known to the match-data provider.
type League struct {
	ID          int64
	ProviderID  int64
	Name        string
	Country     string
	CountryCode string
	Season      string
}

func (l League) Validate() error {
	if l.ProviderID <= 0 {
		return fmt.Errorf("league provider id must be > 0")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	return nil
}
