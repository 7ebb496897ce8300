package itinerary

import (
	"bytes"
	"fmt"
	"os"

	"wayfare/models"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// RenderPDF lays out the full day-by-day plan with a QR code linking back to
// the itinerary page.
func RenderPDF(it *models.Itinerary) ([]byte, error) {
	baseURL := os.Getenv("PUBLIC_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:5173"
	}
	link := fmt.Sprintf("%s/itineraries/%s", baseURL, it.ID.Hex())

	qrPNG, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("qr code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, fmt.Sprintf("Trip to %s", it.City))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("%s - %s (%d day(s))",
		it.StartDate.Format("Jan 2, 2006"), it.EndDate.Format("Jan 2, 2006"), it.TripDuration()))
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 160, 10, 35, 35, false, imageOpts, 0, "")

	for _, day := range it.Details {
		pdf.SetFont("Arial", "B", 14)
		pdf.Cell(0, 10, fmt.Sprintf("Day %d: %s", day.Day, day.Title))
		pdf.Ln(9)

		for _, stage := range day.Stages {
			pdf.SetFont("Arial", "B", 11)
			pdf.Cell(0, 7, fmt.Sprintf("%s - %s", stage.Period, stage.Title))
			pdf.Ln(6)

			pdf.SetFont("Arial", "", 10)
			pdf.MultiCell(0, 5, stage.Description, "", "L", false)
			pdf.Cell(0, 6, fmt.Sprintf("Cost: %s | Duration: ~%d min | Accessible: %t",
				stage.Cost, stage.AvgDuration, stage.Accessible))
			pdf.Ln(8)
		}
		pdf.Ln(4)
	}

	if it.Docs != nil {
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 14)
		pdf.Cell(0, 10, "Travel documents")
		pdf.Ln(10)

		writeDocsSection(pdf, "Mandatory", it.Docs.Mandatory)
		writeDocsSection(pdf, "Recommended", it.Docs.Recommended)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeDocsSection(pdf *gofpdf.Fpdf, title string, items []models.DocsDetail) {
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(7)

	pdf.SetFont("Arial", "", 10)
	for _, item := range items {
		pdf.MultiCell(0, 5, fmt.Sprintf("- %s: %s", item.Name, item.Description), "", "L", false)
		pdf.Ln(1)
	}
	pdf.Ln(4)
}
