package reporting

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/ehr/vitals/internal/domain/vitals"
)

var visitHeaders = []string{
	"Patient ID",
	"Date",
	"Temperature (C)",
	"Heart Rate (bpm)",
	"Respiratory Rate (bpm)",
	"Systolic BP (mmHg)",
	"Diastolic BP (mmHg)",
	"Oxygen Saturation (%)",
}

func writeVisitRows(f *excelize.File, sheet string, visits []vitals.PatientVisit) error {
	for i, h := range visitHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		_ = f.SetCellValue(sheet, cell, h)
	}
	for i, pv := range visits {
		row := i + 2
		values := []interface{}{
			pv.PatientID,
			pv.Visit.Date.String(),
			pv.Visit.Temperature,
			pv.Visit.HeartRate,
			pv.Visit.RespiratoryRate,
			pv.Visit.SystolicBP,
			pv.Visit.DiastolicBP,
			pv.Visit.OxygenSaturation,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	return nil
}

func writeFile(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildVisitsXLSX renders one row per visit.
func BuildVisitsXLSX(visits []vitals.PatientVisit) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "visits"
	f.SetSheetName("Sheet1", sheet)
	if err := writeVisitRows(f, sheet, visits); err != nil {
		return nil, err
	}
	return writeFile(f)
}

// BuildStatsXLSX renders the averages on a single summary sheet.
func BuildStatsXLSX(stats *vitals.VitalStats) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "summary"
	f.SetSheetName("Sheet1", sheet)

	_ = f.SetCellValue(sheet, "A1", stats.Title())
	_ = f.SetCellValue(sheet, "A3", "Visits")
	_ = f.SetCellValue(sheet, "B3", stats.NumVisits)
	for i, row := range stats.Rows() {
		r := i + 4
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", r), row[0])
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", r), row[1])
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", r), row[2])
	}
	return writeFile(f)
}

// BuildFollowUpXLSX lists the follow-up patients on one sheet and their
// out-of-range visits on another.
func BuildFollowUpXLSX(report vitals.FollowUpReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	summary := "patients"
	detail := "visits"
	f.SetSheetName("Sheet1", summary)
	if _, err := f.NewSheet(detail); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summary, "A1", "Patient ID")
	for i, id := range report.PatientIDs {
		_ = f.SetCellValue(summary, fmt.Sprintf("A%d", i+2), id)
	}
	if err := writeVisitRows(f, detail, report.Visits); err != nil {
		return nil, err
	}
	return writeFile(f)
}

// BuildStatsPDF renders the averages as a one-page PDF.
func BuildStatsPDF(stats *vitals.VitalStats) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, stats.Title())
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Visits: %d", stats.NumVisits))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().UTC().Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(80, 6, "Vital sign", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Mean", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Unit", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, row := range stats.Rows() {
		pdf.CellFormat(80, 6, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, row[1], "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, row[2], "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
