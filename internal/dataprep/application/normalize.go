package application

import (
	"sort"
	"time"

	dataprep "lantern/internal/dataprep/domain"
)

// NormalizeTimeAxis reorders columns by (month mod 12, day, hour) so December
// comes before January and a Dec-Feb window is one contiguous run.
// Ties keep their original order.
func NormalizeTimeAxis(table *dataprep.Table) (*dataprep.Table, error) {
	if table == nil {
		return nil, dataprep.ErrNilTable
	}
	columns := table.Columns()
	order := make([]int, len(columns))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return lessTimeKey(columns[order[a]], columns[order[b]])
	})
	return table.SelectColumns(order)
}

func lessTimeKey(a, b time.Time) bool {
	am, bm := int(a.Month())%12, int(b.Month())%12
	if am != bm {
		return am < bm
	}
	if a.Day() != b.Day() {
		return a.Day() < b.Day()
	}
	return a.Hour() < b.Hour()
}
