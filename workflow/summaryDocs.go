package workflow

import (
	"bytes"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/rentnotice_backend/models"
	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	SummarySheetName       = "Rent Increases"
	XlsxContentType        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	PdfContentType         = "application/pdf"
	SummaryWorkbookName    = "rent-increase-summary.xlsx"
	PortfolioSummaryName   = "rent-increase-portfolio-summary.pdf"
)

// BuildSummaryWorkbook renders the run's schedules into a spreadsheet.
// Zero schedules still yields a valid workbook with only the header row.
func BuildSummaryWorkbook(schedules []models.RentIncreaseSchedule) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheetName); err != nil {
		return nil, err
	}

	// Add headers
	f.SetCellValue(SummarySheetName, "A1", "Property")
	f.SetCellValue(SummarySheetName, "B1", "Unit")
	f.SetCellValue(SummarySheetName, "C1", "Tenant")
	f.SetCellValue(SummarySheetName, "D1", "CurrentRent")
	f.SetCellValue(SummarySheetName, "E1", "NewRent")
	f.SetCellValue(SummarySheetName, "F1", "Rate")
	f.SetCellValue(SummarySheetName, "G1", "Increase")
	f.SetCellValue(SummarySheetName, "H1", "EffectiveDate")

	// Add data
	for i, s := range schedules {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(SummarySheetName, "A"+row, s.PropertyName)
		f.SetCellValue(SummarySheetName, "B"+row, s.UnitName)
		f.SetCellValue(SummarySheetName, "C"+row, s.TenantDisplayName())
		f.SetCellValue(SummarySheetName, "D"+row, s.CurrentRent.StringFixed(2))
		f.SetCellValue(SummarySheetName, "E"+row, s.NewRent.StringFixed(2))
		f.SetCellValue(SummarySheetName, "F"+row, s.RatePercent)
		f.SetCellValue(SummarySheetName, "G"+row, s.IncreaseAmount.StringFixed(2))
		f.SetCellValue(SummarySheetName, "H"+row, s.EffectiveDate)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildPortfolioSummary renders the portfolio-level PDF. Valid even for
// zero schedules.
func BuildPortfolioSummary(companyName string, schedules []models.RentIncreaseSchedule) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, "Rent Increase Portfolio Summary")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	if companyName != "" {
		pdf.Cell(0, 6, companyName)
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, "Generated "+time.Now().Format("2006-01-02"))
	pdf.Ln(10)

	widths := []float64{60, 25, 55, 30, 30, 20, 25, 30}
	headers := []string{"Property", "Unit", "Tenant", "Current Rent", "New Rent", "Rate", "Increase", "Effective"}

	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	totalIncrease := decimal.Zero
	for _, s := range schedules {
		cells := []string{
			s.PropertyName,
			s.UnitName,
			s.TenantDisplayName(),
			s.CurrentRent.StringFixed(2),
			s.NewRent.StringFixed(2),
			s.RatePercent,
			s.IncreaseAmount.StringFixed(2),
			s.EffectiveDate,
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		totalIncrease = totalIncrease.Add(s.IncreaseAmount)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Leases: %d    Total monthly increase: %s", len(schedules), totalIncrease.StringFixed(2)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
