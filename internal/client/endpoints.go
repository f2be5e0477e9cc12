package client

import (
	"context"
	"fmt"
	"time"
)

// FetchRankings fetches the current ATP rankings payload.
func (c *Client) FetchRankings(ctx context.Context) ([]byte, error) {
	body, err := c.Get(ctx, "rankings.json")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rankings: %w", err)
	}
	return body, nil
}

// FetchCompetitions fetches the tour calendar of competitions.
func (c *Client) FetchCompetitions(ctx context.Context) ([]byte, error) {
	body, err := c.Get(ctx, "competitions.json")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch competitions: %w", err)
	}
	return body, nil
}

// FetchCompetitionSeasons fetches the seasons of one competition.
func (c *Client) FetchCompetitionSeasons(ctx context.Context, competitionID string) ([]byte, error) {
	body, err := c.Get(ctx, fmt.Sprintf("competitions/%s/seasons.json", competitionID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seasons for competition %s: %w", competitionID, err)
	}
	return body, nil
}

// FetchSeasonInfo fetches the XML info document of one season.
func (c *Client) FetchSeasonInfo(ctx context.Context, seasonID string) ([]byte, error) {
	body, err := c.Get(ctx, fmt.Sprintf("seasons/%s/info.xml", seasonID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch info for season %s: %w", seasonID, err)
	}
	return body, nil
}

// FetchSeasonSummaries fetches the full draw of one season.
func (c *Client) FetchSeasonSummaries(ctx context.Context, seasonID string) ([]byte, error) {
	body, err := c.Get(ctx, fmt.Sprintf("seasons/%s/summaries.json", seasonID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch summaries for season %s: %w", seasonID, err)
	}
	return body, nil
}

// FetchDailySummaries fetches all matches scheduled on one day.
func (c *Client) FetchDailySummaries(ctx context.Context, day time.Time) ([]byte, error) {
	body, err := c.Get(ctx, fmt.Sprintf("schedules/%s/summaries.json", day.Format("2006-01-02")))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule for %s: %w", day.Format("2006-01-02"), err)
	}
	return body, nil
}

// FetchEntryList fetches the entry-list HTML page of one season.
func (c *Client) FetchEntryList(ctx context.Context, seasonID string) ([]byte, error) {
	body, err := c.Get(ctx, fmt.Sprintf("seasons/%s/entry_list.html", seasonID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entry list for season %s: %w", seasonID, err)
	}
	return body, nil
}
