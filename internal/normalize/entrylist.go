package normalize

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"fantasytennis/ingestion/internal/models"

	"github.com/PuerkitoBio/goquery"
)

// entryTypeMap maps the entry-list abbreviations onto the internal set.
// A blank cell means a direct main-draw acceptance.
var entryTypeMap = map[string]models.EntryType{
	"":   models.EntryMainDraw,
	"md": models.EntryMainDraw,
	"q":  models.EntryQualifier,
	"wc": models.EntryWildcard,
	"ll": models.EntryLuckyLoser,
	"pr": models.EntryProtectedRanking,
}

// participationMap maps entry-list status labels onto the internal set.
var participationMap = map[string]models.ParticipationStatus{
	"confirmed":  models.ParticipationConfirmed,
	"in":         models.ParticipationConfirmed,
	"qualifying": models.ParticipationQualifying,
	"alternate":  models.ParticipationAlternate,
	"alt":        models.ParticipationAlternate,
	"withdrawn":  models.ParticipationWithdrawn,
	"wd":         models.ParticipationWithdrawn,
	"out":        models.ParticipationEliminated,
	"eliminated": models.ParticipationEliminated,
	"champion":   models.ParticipationChampion,
	"winner":     models.ParticipationChampion,
}

// ParticipationStatus maps one entry-list status label to the internal
// status, defaulting to confirmed.
func ParticipationStatus(raw string) models.ParticipationStatus {
	if status, ok := participationMap[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return status
	}
	return models.ParticipationConfirmed
}

// EntryListType maps one entry-list abbreviation to the internal entry
// type, defaulting to main_draw.
func EntryListType(raw string) models.EntryType {
	if entry, ok := entryTypeMap[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return entry
	}
	return models.EntryMainDraw
}

// EntryList parses a tournament entry-list HTML page into canonical
// entry records. The page carries one table row per entrant:
//
//	<tr data-competitor="sr:competitor:407573">
//	  <td class="seed">1</td>
//	  <td class="player">J. Sinner</td>
//	  <td class="country">ITA</td>
//	  <td class="entry">WC</td>
//	  <td class="status">Confirmed</td>
//	</tr>
//
// Rows with neither a competitor ID nor a player name are skipped; the
// second return value counts them.
func EntryList(page io.Reader) ([]models.EntryRecord, int, error) {
	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse entry list HTML: %w", err)
	}

	var records []models.EntryRecord
	filtered := 0
	doc.Find("table.entry-list tbody tr").Each(func(_ int, row *goquery.Selection) {
		record := models.EntryRecord{
			Name:        strings.TrimSpace(row.Find("td.player").Text()),
			CountryCode: strings.TrimSpace(row.Find("td.country").Text()),
			EntryType:   EntryListType(row.Find("td.entry").Text()),
			Status:      ParticipationStatus(row.Find("td.status").Text()),
		}
		if id, ok := row.Attr("data-competitor"); ok {
			record.CompetitorID = strings.TrimSpace(id)
		}
		if record.CompetitorID == "" && record.Name == "" {
			filtered++
			return
		}
		if seed, err := strconv.Atoi(strings.TrimSpace(row.Find("td.seed").Text())); err == nil {
			record.Seed = seed
		}
		records = append(records, record)
	})
	return records, filtered, nil
}
