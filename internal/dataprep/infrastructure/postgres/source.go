// Package postgres stores source tables in a long-format Postgres table:
//
//	CREATE TABLE ec_timeseries (
//		table_name TEXT NOT NULL,
//		row_idx    INTEGER NOT NULL,
//		ts         TIMESTAMPTZ NOT NULL,
//		value      DOUBLE PRECISION NOT NULL,
//		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//		PRIMARY KEY (table_name, row_idx, ts)
//	);
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	dataprep "lantern/internal/dataprep/domain"
	"lantern/internal/observability/metrics"
)

const (
	defaultTimeseriesTable = "ec_timeseries"
	backendName            = "postgres"
)

// TableSource loads and stores source tables in Postgres.
type TableSource struct {
	db    *sql.DB
	table string
	loc   *time.Location
}

// Option configures the source.
type Option func(*TableSource)

// WithTable overrides the default table name.
func WithTable(table string) Option {
	return func(s *TableSource) {
		if table != "" {
			s.table = table
		}
	}
}

// WithLocation sets the zone loaded timestamps are read in. Seasons and the
// time-axis order use the month, day and hour of that zone.
func WithLocation(loc *time.Location) Option {
	return func(s *TableSource) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewTableSource constructs a source with the default table name, reading
// timestamps in UTC.
func NewTableSource(db *sql.DB, opts ...Option) *TableSource {
	source := &TableSource{db: db, table: defaultTimeseriesTable, loc: time.UTC}
	for _, opt := range opts {
		opt(source)
	}
	return source
}

// EnsureSchema creates the storage table when missing.
func (s *TableSource) EnsureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("timeseries source: nil db")
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	table_name TEXT NOT NULL,
	row_idx INTEGER NOT NULL,
	ts TIMESTAMPTZ NOT NULL,
	value DOUBLE PRECISION NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (table_name, row_idx, ts)
)`, s.table))
	return err
}

// LoadTable reads every value stored under name. The table must be dense: each
// row needs a value for every timestamp.
func (s *TableSource) LoadTable(ctx context.Context, name string) (*dataprep.Table, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("timeseries source: nil db")
	}
	table, err := s.load(ctx, name)
	switch {
	case err == nil:
		metrics.IncSourceLoad(backendName, metrics.SourceOutcomeLoaded)
	case errors.Is(err, dataprep.ErrSourceNotFound):
		metrics.IncSourceLoad(backendName, metrics.SourceOutcomeNotFound)
	default:
		metrics.IncSourceLoad(backendName, metrics.SourceOutcomeError)
	}
	return table, err
}

func (s *TableSource) load(ctx context.Context, name string) (*dataprep.Table, error) {
	query := fmt.Sprintf(`
SELECT row_idx, ts, value
FROM %s
WHERE table_name = $1
ORDER BY row_idx ASC, ts ASC`, s.table)

	rows, err := s.db.QueryContext(ctx, query, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byRow := make(map[int]map[int64]float64)
	stamps := make(map[int64]time.Time)
	for rows.Next() {
		var rowIdx int
		var ts time.Time
		var value float64
		if err := rows.Scan(&rowIdx, &ts, &value); err != nil {
			return nil, err
		}
		values := byRow[rowIdx]
		if values == nil {
			values = make(map[int64]float64)
			byRow[rowIdx] = values
		}
		key := ts.UnixNano()
		values[key] = value
		stamps[key] = ts.In(s.loc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(byRow) == 0 {
		return nil, fmt.Errorf("%w: %q in %s", dataprep.ErrSourceNotFound, name, s.table)
	}

	columns := make([]time.Time, 0, len(stamps))
	for _, ts := range stamps {
		columns = append(columns, ts)
	}
	sort.Slice(columns, func(i, j int) bool { return columns[i].Before(columns[j]) })

	values := make([][]float64, len(byRow))
	for i := range values {
		stored, ok := byRow[i]
		if !ok {
			return nil, fmt.Errorf("timeseries source: %q missing row %d", name, i)
		}
		row := make([]float64, len(columns))
		for j, ts := range columns {
			v, ok := stored[ts.UnixNano()]
			if !ok {
				return nil, fmt.Errorf("timeseries source: %q row %d missing %s", name, i, ts.Format(time.RFC3339))
			}
			row[j] = v
		}
		values[i] = row
	}
	return dataprep.NewTable(columns, values)
}

// SaveTable upserts every value of table under name.
func (s *TableSource) SaveTable(ctx context.Context, name string, table *dataprep.Table) error {
	if s == nil || s.db == nil {
		return errors.New("timeseries source: nil db")
	}
	if name == "" || table == nil {
		return errors.New("timeseries source: invalid table")
	}

	query := fmt.Sprintf(`
INSERT INTO %s (table_name, row_idx, ts, value)
VALUES ($1, $2, $3, $4)
ON CONFLICT (table_name, row_idx, ts)
DO UPDATE SET
	value = EXCLUDED.value,
	updated_at = NOW()`, s.table)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	columns := table.Columns()
	for i := 0; i < table.Rows(); i++ {
		for j, ts := range columns {
			if _, err := stmt.ExecContext(ctx, name, i, ts, table.At(i, j)); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
	}
	return tx.Commit()
}

// DeleteTable removes every value stored under name.
func (s *TableSource) DeleteTable(ctx context.Context, name string) error {
	if s == nil || s.db == nil {
		return errors.New("timeseries source: nil db")
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE table_name = $1`, s.table), name)
	return err
}
