package export

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/phpdave11/gofpdf"
	"go.uber.org/zap"

	"github.com/garyjia/claimflow/internal/domain/entity"
)

// column widths in mm for a landscape A4 page
var pdfWidths = []float64{30, 36, 36, 52, 16, 22, 42, 42}

// PDFExporter writes claims as a PDF table
type PDFExporter struct {
	title  string
	logger *zap.Logger
}

// NewPDFExporter creates a PDFExporter whose pages carry title
func NewPDFExporter(title string, logger *zap.Logger) *PDFExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if title == "" {
		title = "Claims"
	}
	return &PDFExporter{title: title, logger: logger}
}

func (e *PDFExporter) Format() string { return "pdf" }

func (e *PDFExporter) ContentType() string { return "application/pdf" }

func (e *PDFExporter) Export(ctx context.Context, claims []*entity.Claim, w io.Writer) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(e.title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, col := range columns {
			pdf.CellFormat(pdfWidths[i], 7, col, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
	}
	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 10, tr(e.title), "", 1, "L", false, 0, "")
		header()
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	for _, c := range claims {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i, v := range row(c) {
			pdf.CellFormat(pdfWidths[i], 6, truncate(pdf, tr(v), pdfWidths[i]), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(pdfWidths[0]+pdfWidths[1]+pdfWidths[2]+pdfWidths[3], 7, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(pdfWidths[4], 7, strconv.FormatFloat(totalHours(claims), 'f', -1, 64), "1", 1, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}

	e.logger.Debug("Claims exported", zap.String("format", e.Format()), zap.Int("count", len(claims)))
	return nil
}

// truncate shortens s with "..." until it fits width
func truncate(pdf *gofpdf.Fpdf, s string, width float64) string {
	const pad = 2
	if pdf.GetStringWidth(s)+pad <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...")+pad > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
