// Package normalize maps provider payloads into canonical records. Every
// function in this package is pure: it parses a raw payload, applies the
// documented vocabulary mappings, and drops entries missing mandatory
// fields without failing the whole payload.
package normalize

import (
	"encoding/json"
	"fmt"

	"fantasytennis/ingestion/internal/models"
)

// RankingsResponse mirrors the provider's rankings payload.
type RankingsResponse struct {
	Rankings []RankingList `json:"rankings"`
}

// RankingList is one ranking table (e.g. ATP singles).
type RankingList struct {
	TypeID             int                 `json:"type_id"`
	Name               string              `json:"name"`
	Gender             string              `json:"gender"`
	CompetitorRankings []CompetitorRanking `json:"competitor_rankings"`
}

// CompetitorRanking is one row of a ranking table.
type CompetitorRanking struct {
	Rank       int        `json:"rank"`
	Points     int        `json:"points"`
	Competitor Competitor `json:"competitor"`
}

// Competitor is the provider's player shape, shared across payloads.
type Competitor struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Country      string `json:"country"`
	CountryCode  string `json:"country_code"`
	Abbreviation string `json:"abbreviation"`
}

// Rankings parses a rankings payload into canonical player records.
// Rows with neither a competitor ID nor a name, or carrying a
// non-positive rank, are counted as filtered and skipped. Rows with a
// name but no ID are kept; the writer matches those by name. The second
// return value is the number of filtered rows.
func Rankings(raw []byte) ([]models.PlayerRecord, int, error) {
	var resp RankingsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, 0, fmt.Errorf("failed to parse rankings payload: %w", err)
	}

	var records []models.PlayerRecord
	filtered := 0
	for _, list := range resp.Rankings {
		for _, row := range list.CompetitorRankings {
			if (row.Competitor.ID == "" && row.Competitor.Name == "") || row.Rank <= 0 {
				filtered++
				continue
			}
			records = append(records, models.PlayerRecord{
				ExternalID:  row.Competitor.ID,
				Name:        row.Competitor.Name,
				CountryCode: row.Competitor.CountryCode,
				Ranking:     row.Rank,
				Points:      row.Points,
			})
		}
	}
	return records, filtered, nil
}
