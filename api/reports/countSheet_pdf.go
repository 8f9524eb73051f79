package reports

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/jung-kurt/gofpdf"
)

// renderCountSheetPDF produces an A4 count sheet for a session: a Code128
// barcode of the session code, the session header, and one row per ledger
// line.
func renderCountSheetPDF(data SheetData, printedAt time.Time) ([]byte, error) {
	barcodePNG, err := renderCode128PNG(data.Code, 1200, 220)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Stock Opname Count Sheet", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "STOCK OPNAME COUNT SHEET", "", 1, "C", false, 0, "")

	opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	imageName := fmt.Sprintf("session-barcode-%d", data.SessionID)
	pdf.RegisterImageOptionsReader(imageName, opt, bytes.NewReader(barcodePNG))
	pageW, _ := pdf.GetPageSize()
	imgW := 120.0
	imgH := 22.0
	pdf.ImageOptions(imageName, (pageW-imgW)/2, 18, imgW, imgH, false, opt, 0, "")

	pdf.SetY(42)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, data.Code, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Location: %s (%s)", data.LocationName, data.LocationCode), "", 1, "C", false, 0, "")
	snapshot := "-"
	if data.SnapshotAt != nil {
		snapshot = data.SnapshotAt.Format("02/01/2006 15:04")
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("Type: %s   Status: %s   Snapshot: %s", data.Type, data.Status, snapshot), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Progress: %d/%d items (%.1f%%)   Printed: %s",
		data.ItemsScanned, data.TotalItems, data.ProgressPercent, printedAt.Format("02/01/2006 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	colWidths := []float64{28, 58, 18, 18, 18, 18, 18, 14}
	headers := []string{"SKU", "Item", "System", "Moved", "Expect", "Counted", "Var", "Status"}

	pdf.SetFont("Helvetica", "B", 8)
	for i, h := range headers {
		pdf.CellFormat(colWidths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, line := range data.Lines {
		cells := []string{
			line.SKU,
			truncate(line.Name, 38),
			fmt.Sprintf("%.0f", line.SystemQty),
			fmt.Sprintf("%.0f", line.MovementQty),
			fmt.Sprintf("%.0f", line.EffectiveQty),
			fmt.Sprintf("%.0f", line.CountedQty),
			fmt.Sprintf("%.0f", line.VarianceQty),
			line.Status,
		}
		for i, c := range cells {
			align := "L"
			if i >= 2 {
				align = "R"
			}
			pdf.CellFormat(colWidths[i], 6, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func renderCode128PNG(value string, width, height int) ([]byte, error) {
	code, err := code128.Encode(value)
	if err != nil {
		return nil, err
	}
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, err
	}
	normalized := toNRGBA(scaled)
	var barcodePNG bytes.Buffer
	if err := png.Encode(&barcodePNG, normalized); err != nil {
		return nil, err
	}
	return barcodePNG.Bytes(), nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	return dst
}
