package dataprep

import (
	"time"

	"gonum.org/v1/gonum/mat"
)

// PreparedDataset is the input handed to the simulation engine.
// PV is steps x members, Load is steps x (members * BlockSize); row t of both
// matrices refers to Timestamps[t].
type PreparedDataset struct {
	PV                  *mat.Dense
	Load                *mat.Dense
	Timestamps          []time.Time
	NormalizationFactor float64

	Season        Season
	CommunitySize int
	BlockSize     int
	PVPercentage  int
	SDPercentage  int
	WithBattery   bool

	// Source rows picked by the sampler, in sample order, and the members whose PV was zeroed.
	PVRows    []int
	LoadRows  []int
	NonOwners []int
}

// Steps returns the number of timestamps.
func (d *PreparedDataset) Steps() int { return len(d.Timestamps) }

// Members returns the number of PV columns.
func (d *PreparedDataset) Members() int {
	if d == nil || d.PV == nil {
		return 0
	}
	_, c := d.PV.Dims()
	return c
}

// Apartments returns the number of load columns.
func (d *PreparedDataset) Apartments() int {
	if d == nil || d.Load == nil {
		return 0
	}
	_, c := d.Load.Dims()
	return c
}

// MemberLoad sums the apartment block of a member at step t.
// Block k of the load matrix is assigned to member k.
func (d *PreparedDataset) MemberLoad(t, member int) float64 {
	var total float64
	for k := 0; k < d.BlockSize; k++ {
		total += d.Load.At(t, member*d.BlockSize+k)
	}
	return total * d.normalization()
}

// MemberPV returns the PV generation of a member at step t.
func (d *PreparedDataset) MemberPV(t, member int) float64 {
	return d.PV.At(t, member) * d.normalization()
}

func (d *PreparedDataset) normalization() float64 {
	if d.NormalizationFactor == 0 {
		return 1
	}
	return d.NormalizationFactor
}
