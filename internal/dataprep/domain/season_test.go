package dataprep

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeason(t *testing.T) {
	for _, token := range []string{"sum", "win", "aut", "spr", " WIN "} {
		season, err := ParseSeason(token)
		require.NoError(t, err, token)
		assert.True(t, season.IsValid())
	}

	_, err := ParseSeason("summer")
	assert.True(t, errors.Is(err, ErrInvalidSeason))
	_, err = ParseSeason("")
	assert.True(t, errors.Is(err, ErrInvalidSeason))
}

func TestSeasonMonthsPartitionYear(t *testing.T) {
	counts := make(map[time.Month]int)
	for _, season := range Seasons {
		for _, month := range season.Months() {
			counts[month]++
		}
	}
	require.Len(t, counts, 12)
	for month := time.January; month <= time.December; month++ {
		assert.Equal(t, 1, counts[month], month.String())
	}
}

func TestSeasonContains(t *testing.T) {
	assert.True(t, SeasonWinter.Contains(time.December))
	assert.True(t, SeasonWinter.Contains(time.January))
	assert.False(t, SeasonWinter.Contains(time.March))
	assert.Equal(t, SeasonAutumn, SeasonOf(time.October))
	assert.Equal(t, SeasonSummer, SeasonOf(time.July))
	assert.False(t, Season("fall").Contains(time.October))
}
