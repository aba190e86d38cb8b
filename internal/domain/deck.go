package domain

import (
	"fmt"
	"slices"
	"strings"
)

// FileDeck is the ATCF source granularity.
type FileDeck string

const (
	FileDeckA FileDeck = "a" // advisories, official forecasts and model aids
	FileDeckB FileDeck = "b" // best track reanalysis
	FileDeckF FileDeck = "f" // fixes
)

// Mode selects the archive or the live directory of the NHC server.
type Mode string

const (
	ModeHistorical Mode = "historical"
	ModeRealtime   Mode = "realtime"
)

// Record types retained from a remote deck when none is requested.
var DefaultRecordTypes = []string{"BEST", "OFCL"}

// See ftp://ftp.nhc.noaa.gov/atcf/docs/nhc_techlist.dat. Other a-deck aids
// exist but many lack the full set of columns.
var (
	aDeckRecordTypes = []string{"OFCL", "OFCP", "HWRF", "HMON", "CARQ"}
	bDeckRecordTypes = []string{"BEST"}
)

// ParseFileDeck normalizes a deck name. An empty string selects the a-deck.
func ParseFileDeck(s string) (FileDeck, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "a", "adeck", "a-deck":
		return FileDeckA, nil
	case "b", "bdeck", "b-deck":
		return FileDeckB, nil
	case "f", "fdeck", "f-deck":
		return FileDeckF, nil
	default:
		return "", fmt.Errorf("%w: unknown file deck %q", ErrConfiguration, s)
	}
}

// ParseMode normalizes a mode name. An empty string selects historical.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "historical", "archive":
		return ModeHistorical, nil
	case "realtime", "real-time", "live":
		return ModeRealtime, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrConfiguration, s)
	}
}

// AllowedRecordTypes returns the record types that may be selected for a deck.
func (d FileDeck) AllowedRecordTypes() ([]string, error) {
	switch d {
	case FileDeckA:
		return aDeckRecordTypes, nil
	case FileDeckB:
		return bDeckRecordTypes, nil
	default:
		return nil, fmt.Errorf("%w: file deck %q not implemented", ErrConfiguration, d)
	}
}

// NormalizeRecordType upper-cases a record type and checks it against the
// deck's allowed set. An empty record type means no restriction.
func NormalizeRecordType(deck FileDeck, recordType string) (string, error) {
	recordType = strings.ToUpper(strings.TrimSpace(recordType))
	if recordType == "" {
		return "", nil
	}
	allowed, err := deck.AllowedRecordTypes()
	if err != nil {
		return "", err
	}
	if !slices.Contains(allowed, recordType) {
		return "", fmt.Errorf("%w: record type %s not allowed, select from %v", ErrConfiguration, recordType, allowed)
	}
	return recordType, nil
}
