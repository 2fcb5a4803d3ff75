package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	dataprep "lantern/internal/dataprep/domain"
	"lantern/internal/dataprep/infrastructure/memory"
)

// yearAxis returns one column every step hours over 2023 in UTC.
func yearAxis(step int) []time.Time {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	var out []time.Time
	for ts := start; ts.Before(end); ts = ts.Add(time.Duration(step) * time.Hour) {
		out = append(out, ts)
	}
	return out
}

// poolTable fills every cell with a positive value that encodes the row.
func poolTable(t *testing.T, rows int, columns []time.Time) *dataprep.Table {
	t.Helper()
	values := make([][]float64, rows)
	for i := range values {
		row := make([]float64, len(columns))
		for j := range row {
			row[j] = float64(i+1) + float64(j%24)/100
		}
		values[i] = row
	}
	table, err := dataprep.NewTable(columns, values)
	require.NoError(t, err)
	return table
}

func newPoolSource(t *testing.T, buildings, blockSize int, columns []time.Time) *memory.Source {
	t.Helper()
	source := memory.NewSource()
	source.Put("pv.csv", poolTable(t, buildings, columns))
	source.Put("load.csv", poolTable(t, buildings*blockSize, columns))
	return source
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.BlockSize = 4
	cfg.RandomSeed = 42
	return cfg
}
