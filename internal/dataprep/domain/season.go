package dataprep

import (
	"fmt"
	"strings"
	"time"
)

// Season is one of the four simulation periods.
type Season string

const (
	SeasonSummer Season = "sum"
	SeasonWinter Season = "win"
	SeasonAutumn Season = "aut"
	SeasonSpring Season = "spr"
)

// Seasons lists every season in calendar order starting with winter.
var Seasons = []Season{SeasonWinter, SeasonSpring, SeasonSummer, SeasonAutumn}

var seasonMonths = map[Season][3]time.Month{
	SeasonWinter: {time.December, time.January, time.February},
	SeasonSpring: {time.March, time.April, time.May},
	SeasonSummer: {time.June, time.July, time.August},
	SeasonAutumn: {time.September, time.October, time.November},
}

// ParseSeason converts an external token into a Season.
func ParseSeason(value string) (Season, error) {
	season := Season(strings.ToLower(strings.TrimSpace(value)))
	if !season.IsValid() {
		return "", fmt.Errorf("%w: %q, must be one of: sum, win, aut, spr", ErrInvalidSeason, value)
	}
	return season, nil
}

// IsValid reports whether the season is one of the four known values.
func (s Season) IsValid() bool {
	_, ok := seasonMonths[s]
	return ok
}

// Months returns the calendar months of the season.
func (s Season) Months() []time.Month {
	months, ok := seasonMonths[s]
	if !ok {
		return nil
	}
	return months[:]
}

// Contains reports whether the month belongs to the season.
func (s Season) Contains(month time.Month) bool {
	months, ok := seasonMonths[s]
	if !ok {
		return false
	}
	for _, m := range months {
		if m == month {
			return true
		}
	}
	return false
}

// SeasonOf returns the season a month belongs to.
func SeasonOf(month time.Month) Season {
	for _, season := range Seasons {
		if season.Contains(month) {
			return season
		}
	}
	return ""
}

// String returns the external token.
func (s Season) String() string { return string(s) }
