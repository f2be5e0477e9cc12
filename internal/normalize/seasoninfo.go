package normalize

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"fantasytennis/ingestion/internal/models"
)

// seasonInfoXML is the typed schema for the provider's season-info XML.
// The previous generation of this pipeline scraped these attributes with
// regular expressions; a structured decode survives attribute reordering
// and whitespace changes upstream.
type seasonInfoXML struct {
	XMLName xml.Name `xml:"season_info"`
	Season  struct {
		ID        string `xml:"id,attr"`
		Name      string `xml:"name,attr"`
		StartDate string `xml:"start_date,attr"`
		EndDate   string `xml:"end_date,attr"`
		Year      string `xml:"year,attr"`
	} `xml:"season"`
	Venue struct {
		Name    string `xml:"name,attr"`
		City    string `xml:"city,attr"`
		Country string `xml:"country,attr"`
	} `xml:"venue"`
	Surface    string `xml:"surface"`
	Category   string `xml:"category"`
	PrizeMoney struct {
		Currency string `xml:"currency,attr"`
		Amount   int64  `xml:",chardata"`
	} `xml:"prize_money"`
	BestOf int `xml:"best_of"`
}

// categoryMap maps provider category labels onto the closed internal set.
var categoryMap = map[string]models.TournamentCategory{
	"grand_slam":       models.CategoryGrandSlam,
	"grand slam":       models.CategoryGrandSlam,
	"atp_1000":         models.CategoryATP1000,
	"atp masters 1000": models.CategoryATP1000,
	"atp_500":          models.CategoryATP500,
	"atp 500":          models.CategoryATP500,
	"atp_250":          models.CategoryATP250,
	"atp 250":          models.CategoryATP250,
	"finals":           models.CategoryFinals,
	"atp_finals":       models.CategoryFinals,
	"atp finals":       models.CategoryFinals,
	"challenger":       models.CategoryChallenger,
	"atp_challenger":   models.CategoryChallenger,
}

// TournamentCategory maps one provider category label to the internal
// category, defaulting to atp_250 for anything unrecognized.
func TournamentCategory(raw string) models.TournamentCategory {
	if category, ok := categoryMap[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return category
	}
	return models.CategoryATP250
}

// surfaceMap maps provider surface labels onto the closed internal set.
var surfaceMap = map[string]models.Surface{
	"hard":          models.SurfaceHard,
	"hardcourt":     models.SurfaceHard,
	"hard_indoor":   models.SurfaceHard,
	"hard_outdoor":  models.SurfaceHard,
	"clay":          models.SurfaceClay,
	"red_clay":      models.SurfaceClay,
	"grass":         models.SurfaceGrass,
	"carpet":        models.SurfaceCarpet,
	"carpet_indoor": models.SurfaceCarpet,
}

// CourtSurface maps one provider surface label to the internal surface,
// defaulting to hard.
func CourtSurface(raw string) models.Surface {
	if surface, ok := surfaceMap[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return surface
	}
	return models.SurfaceHard
}

// SeasonInfo parses a season-info XML document into a canonical
// tournament record. The season ID is mandatory; its absence is the only
// fatal condition.
func SeasonInfo(raw []byte, competitionID string) (*models.TournamentRecord, error) {
	var info seasonInfoXML
	if err := xml.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("failed to parse season info XML: %w", err)
	}
	if info.Season.ID == "" {
		return nil, fmt.Errorf("season info missing season id")
	}

	record := &models.TournamentRecord{
		SeasonID:      info.Season.ID,
		CompetitionID: competitionID,
		Name:          info.Season.Name,
		Category:      TournamentCategory(info.Category),
		Surface:       CourtSurface(info.Surface),
		PrizeMoney:    info.PrizeMoney.Amount,
		BestOf:        info.BestOf,
	}
	if record.BestOf == 0 {
		record.BestOf = 3
		if record.Category == models.CategoryGrandSlam {
			record.BestOf = 5
		}
	}
	if info.Venue.City != "" {
		record.Location = info.Venue.City
		if info.Venue.Country != "" {
			record.Location += ", " + info.Venue.Country
		}
	}
	if start, err := time.Parse("2006-01-02", info.Season.StartDate); err == nil {
		record.StartDate = start
	}
	if end, err := time.Parse("2006-01-02", info.Season.EndDate); err == nil {
		record.EndDate = end
	}
	return record, nil
}
