package application

import (
	"fmt"

	dataprep "lantern/internal/dataprep/domain"
)

// FilterSeason keeps the columns whose month lies in the season.
func FilterSeason(table *dataprep.Table, season dataprep.Season) (*dataprep.Table, error) {
	if table == nil {
		return nil, dataprep.ErrNilTable
	}
	if !season.IsValid() {
		return nil, fmt.Errorf("%w: %q", dataprep.ErrInvalidSeason, season)
	}
	keep := make([]int, 0, table.Cols())
	for j := 0; j < table.Cols(); j++ {
		if season.Contains(table.Column(j).Month()) {
			keep = append(keep, j)
		}
	}
	if len(keep) == 0 {
		return nil, fmt.Errorf("%w: %s", dataprep.ErrEmptySeason, season)
	}
	return table.SelectColumns(keep)
}
