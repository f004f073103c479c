package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/partsdesk/tosshin/models"
)

// Fixed selectors for the Tosshin parts-search result page. The first
// table on the page is assumed to be the OEM table.
var (
	selNothingFound = cascadia.MustCompile("div.parts-search__result__nothing strong")
	selOEMTable     = cascadia.MustCompile("table.parts-search__result__table")
	selFirstRow     = cascadia.MustCompile("tbody > tr:first-child")
)

// ExtractOEMFields reads maker, weight and price from the first row of
// the OEM table in a rendered search page.
//
// A page carrying the nothing-found marker yields (nil, nil): the
// keyword has no result, which is not an error. A page missing the
// table, the row, or enough cells yields an extraction error.
func ExtractOEMFields(rawHTML string) (*models.OEMFields, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeExtraction, "failed to parse result page", err)
	}

	if cascadia.Query(doc, selNothingFound) != nil {
		return nil, nil
	}

	table := cascadia.Query(doc, selOEMTable)
	if table == nil {
		return nil, models.NewScrapeError(
			models.ErrCodeExtraction, "OEM result table not found", nil)
	}

	row := cascadia.Query(table, selFirstRow)
	if row == nil {
		return nil, models.NewScrapeError(
			models.ErrCodeExtraction, "OEM result table has no rows", nil)
	}

	cells := goquery.NewDocumentFromNode(row).Find("td")
	if cells.Length() < 4 {
		return nil, models.NewScrapeError(
			models.ErrCodeExtraction,
			fmt.Sprintf("OEM result row has %d cells, want at least 4", cells.Length()),
			nil)
	}

	return &models.OEMFields{
		Maker:  collapseWhitespace(cells.Eq(1).Text()),
		Weight: strings.TrimSpace(cells.Eq(2).Text()),
		Price:  strings.TrimSpace(cells.Eq(3).Text()),
	}, nil
}

// collapseWhitespace trims the string and squashes internal runs of
// whitespace to single spaces. Maker names on the site often wrap
// across lines inside the cell.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
