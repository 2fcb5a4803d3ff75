package interfaces

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/mat"

	"lantern/internal/dataprep/application"
	dataprep "lantern/internal/dataprep/domain"
	"lantern/internal/simulation"
)

const timestampLayout = "2006-01-02 15:04:05"

// BuildDatasetXLSX renders a prepared dataset with a summary sheet and one
// sheet per matrix. Rows are timestamps, columns are members or apartments.
func BuildDatasetXLSX(dataset *dataprep.PreparedDataset) ([]byte, error) {
	if dataset == nil || dataset.PV == nil || dataset.Load == nil {
		return nil, dataprep.ErrNilTable
	}
	f := excelize.NewFile()
	defer f.Close()

	summarySheet := "summary"
	pvSheet := "pv"
	loadSheet := "load"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(pvSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(loadSheet); err != nil {
		return nil, err
	}

	summary := [][2]any{
		{"Season", string(dataset.Season)},
		{"Community Size", dataset.CommunitySize},
		{"Apartment Block Size", dataset.BlockSize},
		{"PV Percentage", dataset.PVPercentage},
		{"SD Percentage", dataset.SDPercentage},
		{"With Battery", dataset.WithBattery},
		{"Timestamps", dataset.Steps()},
		{"Members", dataset.Members()},
		{"Apartments", dataset.Apartments()},
		{"Members Without PV", joinInts(dataset.NonOwners)},
		{"PV Source Rows", joinInts(dataset.PVRows)},
	}
	_ = f.SetCellValue(summarySheet, "A1", "Prepared Dataset")
	for i, item := range summary {
		row := i + 3
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), item[0])
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), item[1])
	}

	members := dataset.Members()
	pvHeader := make([]string, members)
	for m := range pvHeader {
		pvHeader[m] = simulation.MemberName(m)
	}
	if err := writeMatrix(f, pvSheet, pvHeader, dataset.PV, dataset.Timestamps); err != nil {
		return nil, err
	}

	loadHeader := make([]string, 0, dataset.Apartments())
	for m := 0; m < members; m++ {
		for k := 0; k < dataset.BlockSize; k++ {
			loadHeader = append(loadHeader, fmt.Sprintf("%s.%d", simulation.MemberName(m), k+1))
		}
	}
	if err := writeMatrix(f, loadSheet, loadHeader, dataset.Load, dataset.Timestamps); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeMatrix(f *excelize.File, sheet string, header []string, values *mat.Dense, timestamps []time.Time) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	head := make([]any, 0, len(header)+1)
	head = append(head, "timestamp")
	for _, name := range header {
		head = append(head, name)
	}
	if err := sw.SetRow("A1", head); err != nil {
		return err
	}
	_, cols := values.Dims()
	for t, ts := range timestamps {
		row := make([]any, 0, cols+1)
		row = append(row, ts.Format(timestampLayout))
		for j := 0; j < cols; j++ {
			row = append(row, values.At(t, j))
		}
		cell, err := excelize.CoordinatesToCellName(1, t+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	return sw.Flush()
}

// BuildRunPDF renders a one-run simulation report.
func BuildRunPDF(run *application.SimulationRun) ([]byte, error) {
	if run == nil || run.Result == nil {
		return nil, fmt.Errorf("report: nil run")
	}
	res := run.Result

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Energy Community Simulation")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	lines := []string{
		fmt.Sprintf("Run: %s", run.ID),
		fmt.Sprintf("Finished: %s", run.FinishedAt.Format(time.RFC3339)),
		fmt.Sprintf("Season: %s", run.Params.Season),
		fmt.Sprintf("Community Size: %d", run.Params.CommunitySize),
		fmt.Sprintf("PV Percentage: %d", run.Params.PVPercentage),
		fmt.Sprintf("SD Percentage: %d", run.Params.SDPercentage),
		fmt.Sprintf("Battery: %t", run.Params.WithBattery),
	}
	for _, line := range lines {
		pdf.Cell(0, 6, line)
		pdf.Ln(5)
	}

	pdf.Ln(4)
	metricsRows := [][2]string{
		{"Total Production (kWh)", fmt.Sprintf("%.3f", res.EnergyMetrics.TotalProduction)},
		{"Total Consumption (kWh)", fmt.Sprintf("%.3f", res.EnergyMetrics.TotalConsumption)},
		{"Grid Import (kWh)", fmt.Sprintf("%.3f", res.EnergyMetrics.TotalGridImport)},
		{"Grid Export (kWh)", fmt.Sprintf("%.3f", res.EnergyMetrics.TotalGridExport)},
		{"Cost With LEC", fmt.Sprintf("%.2f", res.CostMetrics.CostWithLEC)},
		{"Cost Without LEC", fmt.Sprintf("%.2f", res.CostMetrics.CostWithoutLEC)},
		{"Trading Volume (kWh)", fmt.Sprintf("%.3f", res.MarketMetrics.TradingVolume)},
		{"Fulfilled Demand", fmt.Sprintf("%.1f%%", 100*res.MarketMetrics.RatioFulfilledDemand)},
		{"Sold Supply", fmt.Sprintf("%.1f%%", 100*res.MarketMetrics.RatioSoldSupply)},
	}
	for _, row := range metricsRows {
		pdf.CellFormat(70, 6, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, row[1], "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 6, "Hour", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Load (kWh)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Generation (kWh)", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for h := range res.Profiles.LoadProfile {
		var gen float64
		if h < len(res.Profiles.GenProfile) {
			gen = res.Profiles.GenProfile[h]
		}
		pdf.CellFormat(30, 6, fmt.Sprintf("%02d:00", h), "1", 0, "C", false, 0, "")
		pdf.CellFormat(45, 6, fmt.Sprintf("%.3f", res.Profiles.LoadProfile[h]), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 6, fmt.Sprintf("%.3f", gen), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	if len(res.Warnings) > 0 {
		pdf.Ln(4)
		for _, warning := range res.Warnings {
			pdf.Cell(0, 6, "Warning: "+warning)
			pdf.Ln(5)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
