package state

import (
	"regexp"
	"strings"

	"github.com/shashiranjanraj/mapstack/app/models"
)

var separatorsRE = regexp.MustCompile(`[-_\s]+`)

// Normalize lowercases s, collapses hyphen/underscore/whitespace runs into
// single spaces, and trims. "Shirt - Red_Large" becomes "shirt red large".
func Normalize(s string) string {
	return strings.TrimSpace(separatorsRE.ReplaceAllString(strings.ToLower(s), " "))
}

// MatchesSearch reports whether product p matches the query. Matching is
// case-insensitive and token-order-independent: every query term must match
// a title token (substring) or the barcode (exact or substring).
func MatchesSearch(p models.Product, query string) bool {
	q := Normalize(query)
	if q == "" {
		return true
	}

	titleTokens := strings.Split(Normalize(p.Title), " ")
	barcode := strings.ToLower(p.Barcode)

	for _, term := range strings.Split(q, " ") {
		if !termMatches(term, titleTokens, barcode) {
			return false
		}
	}
	return true
}

// MatchesTitle is the ticket-view variant: barcode is ignored, every term
// must match a title token.
func MatchesTitle(p models.Product, query string) bool {
	q := Normalize(query)
	if q == "" {
		return true
	}

	titleTokens := strings.Split(Normalize(p.Title), " ")
	for _, term := range strings.Split(q, " ") {
		if !termMatches(term, titleTokens, "") {
			return false
		}
	}
	return true
}

func termMatches(term string, titleTokens []string, barcode string) bool {
	for _, tok := range titleTokens {
		if strings.Contains(tok, term) {
			return true
		}
	}
	if barcode != "" && (barcode == term || strings.Contains(barcode, term)) {
		return true
	}
	return false
}
