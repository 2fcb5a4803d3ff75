package dataprep

import "time"

// IntersectOrdered returns the labels present in both slices, in the order they
// appear in left. Duplicates in left are kept once.
func IntersectOrdered(left, right []time.Time) []time.Time {
	inRight := make(map[int64]struct{}, len(right))
	for _, ts := range right {
		inRight[ts.UnixNano()] = struct{}{}
	}
	seen := make(map[int64]struct{}, len(left))
	result := make([]time.Time, 0, len(left))
	for _, ts := range left {
		key := ts.UnixNano()
		if _, ok := inRight[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, ts)
	}
	return result
}

// ColumnIndex maps each label to its first position.
func ColumnIndex(columns []time.Time) map[int64]int {
	index := make(map[int64]int, len(columns))
	for i, ts := range columns {
		key := ts.UnixNano()
		if _, ok := index[key]; !ok {
			index[key] = i
		}
	}
	return index
}
