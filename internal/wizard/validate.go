package wizard

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	pricePattern     = regexp.MustCompile(`^\d{0,10}(\.\d{0,2})?$`)
	sheetLinkPattern = regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`)
)

// ValidPrice reports whether s is a price of up to ten integer digits and
// two decimals. The pattern also admits the empty string.
func ValidPrice(s string) bool {
	return pricePattern.MatchString(s)
}

// SheetIDFromLink extracts the spreadsheet id from a ".../d/<id>/..." link.
func SheetIDFromLink(s string) (string, bool) {
	m := sheetLinkPattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// SheetURL returns the edit link of a spreadsheet.
func SheetURL(id string) string {
	return "https://docs.google.com/spreadsheets/d/" + id + "/edit"
}

// ValidDestinations reports whether s names a start and end separated by exactly one comma.
func ValidDestinations(s string) bool {
	return strings.Count(s, ",") == 1
}

// formatPrice renders a validated price with two decimals. Inputs the decimal
// parser rejects are returned unchanged.
func formatPrice(s string) string {
	if s == "" {
		return decimal.Zero.StringFixed(2)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	return d.StringFixed(2)
}
