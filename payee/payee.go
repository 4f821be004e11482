// Package payee cleans up noisy vendor names from bank and card statements
package payee

import (
	"strings"

	"github.com/johnstarich/go/regext"
)

const (
	maskedCardMarker = "xxxx"
	// Payment is the canonical name for every payment notification variant
	Payment = "PAYMENT"
)

var (
	// DefaultLocations are stripped from the end of vendor names. Order matters: see Normalize.
	DefaultLocations = []string{
		"CALGARY",
		"RICHMOND",
		"VANCOUVER",
		"MISSISSAUGA",
		"VICTORIA",
	}

	trailingSeparators = regext.MustCompile(`
		[ \s \- ]+ $   # whitespace and dashes left behind after truncating
	`)
)

// Normalize strips location suffixes and masked card numbers from name, then collapses payment variants into Payment.
//
// Locations are applied in order and each one operates on the output of the previous one, so the last matching location wins.
// A name starting with a location keeps that location, in which case only a second occurrence truncates.
func Normalize(name string, locations []string) string {
	for _, location := range locations {
		name = truncateLocation(name, location)
	}

	if cardIndex := strings.Index(name, maskedCardMarker); cardIndex > -1 {
		name = trimSeparators(name[:cardIndex])
	}

	if strings.HasPrefix(name, Payment) {
		name = Payment
	}
	return name
}

func truncateLocation(name, location string) string {
	if location == "" {
		return name
	}
	index := strings.Index(name, location)
	header := 0
	if index == 0 {
		// keep the leading location and its separator
		header = len(location) + 1
		if header > len(name) {
			return name
		}
		index = strings.Index(name[header:], location)
	}
	if index < 0 {
		return name
	}
	return trimSeparators(name[:header+index])
}

func trimSeparators(name string) string {
	return trailingSeparators.ReplaceAllString(name, "")
}

// ParseLocations parses a comma separated list of locations, preserving their order
func ParseLocations(list string) []string {
	var locations []string
	for _, location := range strings.Split(list, ",") {
		location = strings.ToUpper(strings.TrimSpace(location))
		if location != "" {
			locations = append(locations, location)
		}
	}
	return locations
}
