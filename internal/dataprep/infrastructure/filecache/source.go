package filecache

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	dataprep "lantern/internal/dataprep/domain"
	"lantern/internal/observability/metrics"
)

const backendName = "file"

// timestamp layouts accepted in header cells
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
}

// Source loads cached source tables from a directory and keeps them in memory.
// File layout: the first row holds a label cell followed by one timestamp per column,
// every other row holds an entity label followed by its values. Empty cells read as 0.
type Source struct {
	dir string

	mu     sync.RWMutex
	tables map[string]*dataprep.Table
}

// NewSource constructs a file cache rooted at dir.
func NewSource(dir string) *Source {
	return &Source{dir: dir, tables: make(map[string]*dataprep.Table)}
}

// LoadTable returns the table stored in name (.csv or .xlsx).
func (s *Source) LoadTable(ctx context.Context, name string) (*dataprep.Table, error) {
	if s == nil {
		return nil, errors.New("file cache: nil source")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.path(name)

	s.mu.RLock()
	cached := s.tables[path]
	s.mu.RUnlock()
	if cached != nil {
		metrics.IncSourceLoad(backendName, metrics.SourceOutcomeHit)
		return cached, nil
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			metrics.IncSourceLoad(backendName, metrics.SourceOutcomeNotFound)
			return nil, fmt.Errorf("%w: %q in directory %q", dataprep.ErrSourceNotFound, name, s.dir)
		}
		metrics.IncSourceLoad(backendName, metrics.SourceOutcomeError)
		return nil, err
	}

	table, err := readTable(path)
	if err != nil {
		metrics.IncSourceLoad(backendName, metrics.SourceOutcomeError)
		return nil, fmt.Errorf("file cache: read %s: %w", path, err)
	}

	s.mu.Lock()
	s.tables[path] = table
	s.mu.Unlock()
	metrics.IncSourceLoad(backendName, metrics.SourceOutcomeLoaded)
	return table, nil
}

// Evict drops every cached table.
func (s *Source) Evict() {
	s.mu.Lock()
	s.tables = make(map[string]*dataprep.Table)
	s.mu.Unlock()
}

func (s *Source) path(name string) string {
	if filepath.IsAbs(name) || s.dir == "" {
		return name
	}
	return filepath.Join(s.dir, name)
}

func readTable(path string) (*dataprep.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported cache format %q", filepath.Ext(path))
	}
}

func readCSV(path string) (*dataprep.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	return parseRecords(records)
}

func readXLSX(path string) (*dataprep.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	return parseRecords(records)
}

func parseRecords(records [][]string) (*dataprep.Table, error) {
	if len(records) < 2 {
		return nil, dataprep.ErrNilTable
	}
	header := records[0]
	if len(header) < 2 {
		return nil, errors.New("header has no timestamp columns")
	}
	columns := make([]time.Time, len(header)-1)
	for j, cell := range header[1:] {
		ts, err := ParseTimestamp(cell)
		if err != nil {
			return nil, fmt.Errorf("header column %d: %w", j+1, err)
		}
		columns[j] = ts
	}

	rows := make([][]float64, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) > len(header) {
			return nil, fmt.Errorf("row %d has %d cells, header has %d", i+1, len(record), len(header))
		}
		values := make([]float64, len(columns))
		for j := 1; j < len(record); j++ {
			cell := strings.TrimSpace(record[j])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", i+1, j, err)
			}
			values[j-1] = v
		}
		rows = append(rows, values)
	}
	return dataprep.NewTable(columns, rows)
}

// ParseTimestamp parses a column label. An offset in the label is kept so that
// month, day and hour read as written; labels without one parse as UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}
