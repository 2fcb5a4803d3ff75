package main

import (
	"math"
	"math/rand/v2"
	"time"

	"gopkg.in/cheggaaa/pb.v1"

	dataprep "lantern/internal/dataprep/domain"
)

type generator struct {
	rng  *rand.Rand
	axis []time.Time
	// quiet disables the progress bar.
	quiet bool
}

func newGenerator(seed int64, year int) *generator {
	s := uint64(seed)
	return &generator{rng: rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15)), axis: hourlyYear(year)}
}

func hourlyYear(year int) []time.Time {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	axis := make([]time.Time, 0, 8784)
	for ts := start; ts.Before(end); ts = ts.Add(time.Hour) {
		axis = append(axis, ts)
	}
	return axis
}

// pvTable gives every building a peak capacity and a bell-shaped daily curve
// whose width follows the length of the day.
func (g *generator) pvTable(buildings int) (*dataprep.Table, error) {
	return g.table(buildings, "pv", func() func(ts time.Time) float64 {
		capacity := 3 + 12*g.rng.Float64()
		return func(ts time.Time) float64 {
			return capacity * solarShape(ts) * (0.6 + 0.4*g.rng.Float64())
		}
	})
}

// loadTable gives every apartment a base load with morning and evening peaks.
func (g *generator) loadTable(apartments int) (*dataprep.Table, error) {
	return g.table(apartments, "load", func() func(ts time.Time) float64 {
		base := 0.15 + 0.25*g.rng.Float64()
		peak := 0.5 + g.rng.Float64()
		return func(ts time.Time) float64 {
			h := float64(ts.Hour())
			daily := math.Exp(-math.Pow(h-7.5, 2)/3) + 1.4*math.Exp(-math.Pow(h-19, 2)/5)
			heating := 1 + 0.3*math.Cos(2*math.Pi*float64(ts.YearDay())/365)
			return (base + peak*daily) * heating * (0.8 + 0.4*g.rng.Float64())
		}
	})
}

func (g *generator) table(rows int, label string, profile func() func(time.Time) float64) (*dataprep.Table, error) {
	var bar *pb.ProgressBar
	if !g.quiet {
		bar = pb.StartNew(rows)
		bar.ShowTimeLeft = false
		bar.Prefix(label)
	}
	values := make([][]float64, rows)
	for i := range values {
		fn := profile()
		row := make([]float64, len(g.axis))
		for j, ts := range g.axis {
			row[j] = math.Round(fn(ts)*1000) / 1000
		}
		values[i] = row
		if bar != nil {
			bar.Increment()
		}
	}
	if bar != nil {
		bar.FinishPrint("\t" + label + " profiles generated")
	}
	return dataprep.NewTable(g.axis, values)
}

func solarShape(ts time.Time) float64 {
	day := float64(ts.YearDay())
	daylight := 12 + 4*math.Sin(2*math.Pi*(day-80)/365)
	sunrise := 12 - daylight/2
	h := float64(ts.Hour()) + 0.5
	if h < sunrise || h > sunrise+daylight {
		return 0
	}
	return math.Sin(math.Pi * (h - sunrise) / daylight)
}
