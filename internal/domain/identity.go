package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var stormIDRe = regexp.MustCompile(`^([A-Za-z]{2})(\d{2})(\d{4})$`)

// StormID identifies one storm by basin, number and year, e.g. AL112017.
type StormID struct {
	Basin  string
	Number int
	Year   int
}

func (id StormID) String() string {
	return fmt.Sprintf("%s%02d%04d", id.Basin, id.Number, id.Year)
}

// IsZero reports whether the identity is unset.
func (id StormID) IsZero() bool {
	return id == StormID{}
}

// ParseStormID parses a BBNNYYYY identifier, case-insensitively.
func ParseStormID(s string) (StormID, error) {
	m := stormIDRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return StormID{}, fmt.Errorf("%w: %q is not a storm id", ErrIdentityResolution, s)
	}
	number, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	return StormID{Basin: strings.ToUpper(m[1]), Number: number, Year: year}, nil
}

// SplitNameYear recognizes a storm name followed by a year, e.g. "irma2017".
// A string is treated as name+year when it contains exactly four digits and
// they form its suffix.
func SplitNameYear(s string) (name string, year int, ok bool) {
	s = strings.TrimSpace(s)
	digits := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits != 4 || len(s) <= 4 {
		return "", 0, false
	}
	year, err := strconv.Atoi(s[len(s)-4:])
	if err != nil {
		return "", 0, false
	}
	return s[:len(s)-4], year, true
}

// StormIDFromFix builds the identity implied by a fix's basin, number and year.
func StormIDFromFix(f Fix) StormID {
	return StormID{Basin: strings.ToUpper(f.Basin), Number: f.StormNumber, Year: f.Time.Year()}
}
