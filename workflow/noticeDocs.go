package workflow

import (
	"bytes"
	"fmt"

	"bitbucket.org/mmdatafocus/rentnotice_backend/models"
	"github.com/go-pdf/fpdf"
)

// NoticeFilename is the upload name for one lease's notice document.
func NoticeFilename(s models.RentIncreaseSchedule) string {
	return fmt.Sprintf("rent-increase-notice-%s.pdf", s.LeaseId)
}

// BuildNoticePDF renders the legal notice for one lease from its
// computed schedule only.
func BuildNoticePDF(companyName string, s models.RentIncreaseSchedule) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, "Notice of Rent Increase")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	if s.TenantDisplayName() != "" {
		pdf.Cell(0, 7, "To: "+s.TenantDisplayName())
		pdf.Ln(7)
	}
	pdf.Cell(0, 7, fmt.Sprintf("Re: %s, Unit %s", s.PropertyName, s.UnitName))
	pdf.Ln(12)

	pdf.MultiCell(0, 6, fmt.Sprintf(
		"This is notice that effective %s your monthly rent will increase from %s to %s, "+
			"an increase of %s applying the guideline rate of %s.",
		s.EffectiveDate,
		s.CurrentRent.StringFixed(2),
		s.NewRent.StringFixed(2),
		s.IncreaseAmount.StringFixed(2),
		s.RatePercent,
	), "", "L", false)
	pdf.Ln(4)

	if !s.AgiAmount.IsZero() {
		line := fmt.Sprintf("The new rent includes an above-guideline adjustment of %s", s.AgiAmount.StringFixed(2))
		if s.AgiPercent != "" {
			line += fmt.Sprintf(" (%s of current rent)", s.AgiPercent)
		}
		pdf.MultiCell(0, 6, line+".", "", "L", false)
		pdf.Ln(4)
	}

	if s.IsExtended && s.ExtensionEndDate != "" {
		pdf.MultiCell(0, 6, fmt.Sprintf("Your lease term is extended to %s.", s.ExtensionEndDate), "", "L", false)
		pdf.Ln(4)
	}

	if companyName != "" {
		pdf.Ln(8)
		pdf.Cell(0, 7, companyName)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
