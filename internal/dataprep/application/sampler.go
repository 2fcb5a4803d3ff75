package application

import (
	"fmt"
	"math/rand/v2"

	dataprep "lantern/internal/dataprep/domain"
)

// Sampler draws indices without replacement from a seeded source.
// It is not safe for concurrent use; build one per pipeline run.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler seeds a PCG generator.
func NewSampler(seed int64) *Sampler {
	s := uint64(seed)
	return &Sampler{rng: rand.New(rand.NewPCG(s, s))}
}

// Sample returns k distinct indices from [0, population) in draw order.
func (s *Sampler) Sample(population, k int) ([]int, error) {
	if k < 0 || k > population {
		return nil, fmt.Errorf("%w: cannot draw %d from %d", dataprep.ErrInsufficientPopulation, k, population)
	}
	pool := make([]int, population)
	for i := range pool {
		pool[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + s.rng.IntN(population-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return append([]int(nil), pool[:k]...), nil
}

// Draws is the outcome of the member selection.
type Draws struct {
	LoadRows []int
	PVRows   []int
}

// DrawMembers selects the apartment rows first, then the building rows.
// The two draws are independent: the selected load blocks do not have to belong
// to the selected buildings.
func (s *Sampler) DrawMembers(buildings, blockSize, communitySize int) (Draws, error) {
	loadRows, err := s.Sample(buildings*blockSize, communitySize*blockSize)
	if err != nil {
		return Draws{}, fmt.Errorf("sample load rows: %w", err)
	}
	pvRows, err := s.Sample(buildings, communitySize)
	if err != nil {
		return Draws{}, fmt.Errorf("sample pv rows: %w", err)
	}
	return Draws{LoadRows: loadRows, PVRows: pvRows}, nil
}
