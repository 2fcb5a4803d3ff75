package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorShapes(t *testing.T) {
	gen := newGenerator(1, 2023)
	gen.quiet = true

	pv, err := gen.pvTable(3)
	require.NoError(t, err)
	assert.Equal(t, 3, pv.Rows())
	assert.Equal(t, 8760, pv.Cols())

	load, err := gen.loadTable(12)
	require.NoError(t, err)
	assert.Equal(t, 12, load.Rows())

	midnight := 0
	for j, ts := range pv.Columns() {
		if ts.Hour() == 0 {
			assert.Zero(t, pv.At(0, j))
			midnight++
		}
	}
	assert.Equal(t, 365, midnight)
	for j := 0; j < load.Cols(); j++ {
		assert.Greater(t, load.At(0, j), 0.0)
	}
}

func TestGeneratorDeterministic(t *testing.T) {
	a := newGenerator(3, 2023)
	a.quiet = true
	b := newGenerator(3, 2023)
	b.quiet = true

	pa, err := a.pvTable(2)
	require.NoError(t, err)
	pb, err := b.pvTable(2)
	require.NoError(t, err)
	assert.Equal(t, pa.Row(1), pb.Row(1))
}

func TestHourlyYearLeap(t *testing.T) {
	assert.Len(t, hourlyYear(2024), 8784)
	assert.Equal(t, time.January, hourlyYear(2024)[0].Month())
}
