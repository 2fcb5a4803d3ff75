// Package simulation is the reference energy-community engine. It settles every
// timestep as self-consumption first, then local trading, then the shared
// battery, then the grid.
package simulation

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	dataprep "lantern/internal/dataprep/domain"
)

const hoursPerDay = 24

var (
	// ErrNilDataset is returned when the dataset is nil or has no steps.
	ErrNilDataset = errors.New("simulation: nil or empty dataset")
	// ErrShapeMismatch is returned when PV and load matrices do not line up.
	ErrShapeMismatch = errors.New("simulation: dataset shape mismatch")
)

// Engine implements the dataprep simulation port.
type Engine struct {
	cfg Config
}

// NewEngine constructs the engine.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Simulate runs the community over every step of the dataset.
func (e *Engine) Simulate(ctx context.Context, dataset *dataprep.PreparedDataset) (*dataprep.SimulationResult, error) {
	if err := checkDataset(dataset); err != nil {
		return nil, err
	}
	steps := dataset.Steps()
	members := dataset.Members()

	gen := mat.NewDense(steps, members, nil)
	load := mat.NewDense(steps, members, nil)
	for t := 0; t < steps; t++ {
		for m := 0; m < members; m++ {
			gen.Set(t, m, dataset.MemberPV(t, m))
			load.Set(t, m, dataset.MemberLoad(t, m))
		}
	}

	var warnings []string
	flexible := members * dataset.SDPercentage / 100
	if flexible > 0 && e.cfg.SDFlexShare > 0 {
		if shifted := shiftFlexibleLoad(load, gen, dataset, flexible, e.cfg.SDFlexShare); shifted == 0 {
			warnings = append(warnings, "smart devices could not shift load: no generation in the selected period")
		}
	}

	var capacity float64
	if dataset.WithBattery {
		capacity = e.cfg.BatteryKWhPerMember * float64(members)
	}

	var (
		totals     dataprep.EnergyMetrics
		traded     float64
		surplus    float64
		withoutLEC float64
		soc        float64
	)
	flows := mat.NewDense(members, members, nil)
	sur := make([]float64, members)
	def := make([]float64, members)

	for t := 0; t < steps; t++ {
		if t%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		var supply, demand float64
		for m := 0; m < members; m++ {
			p, l := gen.At(t, m), load.At(t, m)
			totals.TotalProduction += p
			totals.TotalConsumption += l
			self := min(p, l)
			sur[m] = p - self
			def[m] = l - self
			supply += sur[m]
			demand += def[m]
		}
		surplus += supply
		withoutLEC += demand*e.cfg.GridPrice - supply*e.cfg.FeedInPrice

		local := min(supply, demand)
		if local > 0 {
			scale := local / (supply * demand)
			for from := 0; from < members; from++ {
				if sur[from] == 0 {
					continue
				}
				for to := 0; to < members; to++ {
					if def[to] == 0 {
						continue
					}
					flows.Set(from, to, flows.At(from, to)+sur[from]*def[to]*scale)
				}
			}
		}
		traded += local
		supply -= local
		demand -= local

		if capacity > 0 {
			if supply > 0 {
				stored := min(supply*e.cfg.BatteryEfficiency, capacity-soc)
				soc += stored
				supply -= stored / e.cfg.BatteryEfficiency
			}
			if demand > 0 {
				released := min(demand, soc)
				soc -= released
				demand -= released
			}
		}

		totals.TotalGridImport += demand
		totals.TotalGridExport += supply
	}

	if totals.TotalProduction == 0 {
		warnings = append(warnings, "no member generates PV; community trading is not possible")
	} else if traded == 0 {
		warnings = append(warnings, "no energy was traded inside the community")
	}

	result := &dataprep.SimulationResult{
		TradingNetwork: buildNetwork(flows),
		EnergyMetrics:  totals,
		CostMetrics: dataprep.CostMetrics{
			CostWithLEC:    totals.TotalGridImport*e.cfg.GridPrice - totals.TotalGridExport*e.cfg.FeedInPrice,
			CostWithoutLEC: withoutLEC,
		},
		MarketMetrics: dataprep.MarketMetrics{
			TradingVolume:        traded,
			RatioFulfilledDemand: ratio(totals.TotalConsumption-totals.TotalGridImport, totals.TotalConsumption),
			RatioSoldSupply:      ratio(traded, surplus),
		},
		Profiles: dataprep.Profiles{
			LoadProfile: hourProfile(load, dataset),
			GenProfile:  hourProfile(gen, dataset),
		},
		Warnings: warnings,
		Errors:   []string{},
	}
	if result.Warnings == nil {
		result.Warnings = []string{}
	}
	return result, nil
}

func checkDataset(dataset *dataprep.PreparedDataset) error {
	if dataset == nil || dataset.PV == nil || dataset.Load == nil || dataset.Steps() == 0 {
		return ErrNilDataset
	}
	pvRows, members := dataset.PV.Dims()
	loadRows, apartments := dataset.Load.Dims()
	if pvRows != dataset.Steps() || loadRows != dataset.Steps() {
		return fmt.Errorf("%w: %d timestamps, pv %d rows, load %d rows", ErrShapeMismatch, dataset.Steps(), pvRows, loadRows)
	}
	if dataset.BlockSize <= 0 || apartments != members*dataset.BlockSize {
		return fmt.Errorf("%w: %d members, %d apartments, block size %d", ErrShapeMismatch, members, apartments, dataset.BlockSize)
	}
	return nil
}

// shiftFlexibleLoad moves share of each day's load of the first flexible members
// towards the hours in which the community generates. Daily energy is preserved.
// It returns the number of member-days shifted.
func shiftFlexibleLoad(load, gen *mat.Dense, dataset *dataprep.PreparedDataset, flexible int, share float64) int {
	shifted := 0
	for _, day := range dayRanges(dataset) {
		var dayGen float64
		hourGen := make([]float64, day.end-day.start)
		for t := day.start; t < day.end; t++ {
			hourGen[t-day.start] = mat.Sum(gen.RowView(t))
			dayGen += hourGen[t-day.start]
		}
		if dayGen == 0 {
			continue
		}
		for m := 0; m < flexible; m++ {
			var dayLoad float64
			for t := day.start; t < day.end; t++ {
				dayLoad += load.At(t, m)
			}
			if dayLoad == 0 {
				continue
			}
			moved := share * dayLoad
			for t := day.start; t < day.end; t++ {
				load.Set(t, m, (1-share)*load.At(t, m)+moved*hourGen[t-day.start]/dayGen)
			}
			shifted++
		}
	}
	return shifted
}

type stepRange struct {
	start, end int
}

// dayRanges splits the axis into runs of steps that share a calendar day.
func dayRanges(dataset *dataprep.PreparedDataset) []stepRange {
	var out []stepRange
	start := 0
	for t := 1; t <= dataset.Steps(); t++ {
		if t == dataset.Steps() || !sameDay(dataset, t-1, t) {
			out = append(out, stepRange{start: start, end: t})
			start = t
		}
	}
	return out
}

func sameDay(dataset *dataprep.PreparedDataset, a, b int) bool {
	ay, am, ad := dataset.Timestamps[a].Date()
	by, bm, bd := dataset.Timestamps[b].Date()
	return ay == by && am == bm && ad == bd
}

// hourProfile averages the community total per hour of day. Hours without samples are 0.
func hourProfile(values *mat.Dense, dataset *dataprep.PreparedDataset) []float64 {
	sums := make([]float64, hoursPerDay)
	counts := make([]int, hoursPerDay)
	for t, ts := range dataset.Timestamps {
		h := ts.Hour()
		sums[h] += mat.Sum(values.RowView(t))
		counts[h]++
	}
	for h := range sums {
		if counts[h] > 0 {
			sums[h] /= float64(counts[h])
		}
	}
	return sums
}

func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}
