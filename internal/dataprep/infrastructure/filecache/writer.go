package filecache

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	dataprep "lantern/internal/dataprep/domain"
)

// WriteTable stores a table as .csv or .xlsx, depending on the file extension.
// labelPrefix names the entity rows, e.g. "building" gives building_0, building_1, ...
func WriteTable(path string, table *dataprep.Table, labelPrefix string) error {
	if table == nil {
		return dataprep.ErrNilTable
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	records := toRecords(table, labelPrefix)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return writeCSV(path, records)
	case ".xlsx":
		return writeXLSX(path, records)
	default:
		return fmt.Errorf("unsupported cache format %q", filepath.Ext(path))
	}
}

func toRecords(table *dataprep.Table, labelPrefix string) [][]string {
	if labelPrefix == "" {
		labelPrefix = "row"
	}
	header := make([]string, 0, table.Cols()+1)
	header = append(header, labelPrefix)
	for _, ts := range table.Columns() {
		header = append(header, ts.Format(time.RFC3339))
	}
	records := make([][]string, 0, table.Rows()+1)
	records = append(records, header)
	for i := 0; i < table.Rows(); i++ {
		record := make([]string, 0, table.Cols()+1)
		record = append(record, fmt.Sprintf("%s_%d", labelPrefix, i))
		for _, v := range table.Row(i) {
			record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
		}
		records = append(records, record)
	}
	return records
}

func writeCSV(path string, records [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(records); err != nil {
		return err
	}
	return file.Sync()
}

func writeXLSX(path string, records [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := make([]interface{}, len(record))
		for j, value := range record {
			row[j] = value
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
