package dataprep

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSeason is returned when a season token is not one of sum, win, aut, spr.
	ErrInvalidSeason = errors.New("dataprep: invalid season")
	// ErrInvalidParameter is returned when a sampling parameter is out of bounds.
	ErrInvalidParameter = errors.New("dataprep: invalid parameter")
	// ErrSourceNotFound is returned when a source table is missing from the cache.
	ErrSourceNotFound = errors.New("dataprep: source table not found")
	// ErrInsufficientPopulation is returned when a sample is larger than its population.
	ErrInsufficientPopulation = errors.New("dataprep: insufficient population")
	// ErrInvalidSourcePool is returned when PV and load tables do not have R and R*B rows.
	ErrInvalidSourcePool = errors.New("dataprep: invalid source pool")
	// ErrEmptySeason is returned when no column falls into the requested season.
	ErrEmptySeason = errors.New("dataprep: no timestamps in season")
	// ErrNoCommonTimestamps is returned when PV and load share no timestamp.
	ErrNoCommonTimestamps = errors.New("dataprep: no common timestamps")
	// ErrNilTable is returned when a table is nil or would have no rows or columns.
	ErrNilTable = errors.New("dataprep: nil or empty table")
)

// ParameterError identifies which parameter bound was violated.
type ParameterError struct {
	Name  string
	Value int
	Min   int
	Max   int
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("dataprep: %s must be between %d and %d, got %d", e.Name, e.Min, e.Max, e.Value)
}

// Unwrap lets errors.Is match ErrInvalidParameter.
func (e *ParameterError) Unwrap() error { return ErrInvalidParameter }
