package http

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"aura-panel/internal/analytics/application"
)

// BuildSummaryPDF renders a minimal PDF for an analytics summary.
func BuildSummaryPDF(summary application.Summary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Rover Hazard Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Window: %s", summary.Window))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Since: %s", summary.Since.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", summary.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Events: %d", summary.Total))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(90, 6, "Category", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Events", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, category := range summary.Categories {
		pdf.CellFormat(90, 6, category.Category, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, fmt.Sprintf("%d", category.Count), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
