package application

import (
	"time"

	dataprep "lantern/internal/dataprep/domain"
)

// Reconcile restricts both tables to the timestamps they share, ordered as in load.
func Reconcile(pv, load *dataprep.Table) (*dataprep.Table, *dataprep.Table, error) {
	if pv == nil || load == nil {
		return nil, nil, dataprep.ErrNilTable
	}
	common := dataprep.IntersectOrdered(load.Columns(), pv.Columns())
	if len(common) == 0 {
		return nil, nil, dataprep.ErrNoCommonTimestamps
	}
	alignedPV, err := pv.SelectColumns(positions(pv.Columns(), common))
	if err != nil {
		return nil, nil, err
	}
	alignedLoad, err := load.SelectColumns(positions(load.Columns(), common))
	if err != nil {
		return nil, nil, err
	}
	return alignedPV, alignedLoad, nil
}

func positions(columns, labels []time.Time) []int {
	index := dataprep.ColumnIndex(columns)
	out := make([]int, len(labels))
	for i, ts := range labels {
		out[i] = index[ts.UnixNano()]
	}
	return out
}
