package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CompetitionsResponse mirrors the provider's competitions payload.
type CompetitionsResponse struct {
	Competitions []Competition `json:"competitions"`
}

// Competition is one recurring event on the tour calendar.
type Competition struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Gender   string `json:"gender"`
	Category struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"category"`
}

// SeasonsResponse mirrors the provider's per-competition seasons payload.
type SeasonsResponse struct {
	Seasons []Season `json:"seasons"`
}

// Season is one edition of a competition.
type Season struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Year      string `json:"year"`
}

// Competitions parses a competitions payload, keeping only men's singles
// events and dropping rows without an ID. The second return value is the
// number of filtered rows.
func Competitions(raw []byte) ([]Competition, int, error) {
	var resp CompetitionsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, 0, fmt.Errorf("failed to parse competitions payload: %w", err)
	}

	var kept []Competition
	filtered := 0
	for _, c := range resp.Competitions {
		if c.ID == "" || !isATPSingles(c) {
			filtered++
			continue
		}
		kept = append(kept, c)
	}
	return kept, filtered, nil
}

// Seasons parses a seasons payload, dropping rows without an ID.
func Seasons(raw []byte) ([]Season, int, error) {
	var resp SeasonsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, 0, fmt.Errorf("failed to parse seasons payload: %w", err)
	}

	var kept []Season
	filtered := 0
	for _, s := range resp.Seasons {
		if s.ID == "" {
			filtered++
			continue
		}
		kept = append(kept, s)
	}
	return kept, filtered, nil
}

func isATPSingles(c Competition) bool {
	if !strings.EqualFold(c.Type, "singles") {
		return false
	}
	if c.Gender != "" && !strings.EqualFold(c.Gender, "men") {
		return false
	}
	return strings.Contains(strings.ToUpper(c.Category.Name), "ATP")
}
