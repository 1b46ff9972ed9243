package report

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"factorypulse/internal/model"
)

// WriteOEEPDF writes a one-page OEE summary: headline figures, the
// per-line table and the downtime reasons.
func WriteOEEPDF(w io.Writer, snap model.Snapshot, site string) error {
	oee := snap.OEE

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(site+" OEE Report", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(190, 10, site+" - OEE Analytics")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	for _, kv := range [][2]string{
		{"Overall OEE", percent(oee.Overall)},
		{"Availability", percent(oee.Availability)},
		{"Performance", percent(oee.Performance)},
		{"Quality", percent(oee.Quality)},
	} {
		pdf.CellFormat(50, 7, kv[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, kv[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(190, 8, "OEE by Production Line")
	pdf.Ln(9)
	header(pdf, []string{"Line", "Availability", "Performance", "Quality", "OEE"}, []float64{54, 34, 34, 34, 34})
	pdf.SetFont("Arial", "", 10)
	for _, l := range oee.Lines {
		pdf.CellFormat(54, 8, l.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(34, 8, percent(l.Availability), "1", 0, "C", false, 0, "")
		pdf.CellFormat(34, 8, percent(l.Performance), "1", 0, "C", false, 0, "")
		pdf.CellFormat(34, 8, percent(l.Quality), "1", 0, "C", false, 0, "")
		pdf.CellFormat(34, 8, percent(l.Overall), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(190, 8, "Downtime Reasons")
	pdf.Ln(9)
	header(pdf, []string{"Reason", "Minutes", "Share"}, []float64{110, 40, 40})
	pdf.SetFont("Arial", "", 10)
	for _, r := range oee.DowntimeReasons {
		pdf.CellFormat(110, 8, r.Reason, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, fmt.Sprintf("%.0f min", r.Minutes), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 8, percent(r.Percentage), "1", 1, "C", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("oee pdf: %w", err)
	}
	return pdf.Output(w)
}

func header(pdf *gofpdf.Fpdf, cols []string, widths []float64) {
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	for i, c := range cols {
		ln := 0
		if i == len(cols)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 8, c, "1", ln, "C", true, 0, "")
	}
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
