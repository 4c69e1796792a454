package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// DocumentConfig carries the branding the document builder stamps on every
// report. It is injected at construction; the builder never mutates global
// library state.
type DocumentConfig struct {
	BrandName string
	// LogoPath is optional; a missing or unreadable file degrades to a
	// text-only header, never to a failed export.
	LogoPath string
}

// KeyStat is one label/value pair of the statistics strip under the title.
type KeyStat struct {
	Label string
	Value string
}

// ColumnSpec sizes one table column of the document. Width is in mm; a zero
// width marks the flexible column that absorbs the remaining page width.
// MaxChars truncates long values with an ellipsis; zero disables truncation.
type ColumnSpec struct {
	Width    float64
	MaxChars int
}

// Document is the declarative input of the builder: title, generation
// timestamp, 2-3 key statistics, and the table mirroring the Formatter's
// columns. The page template around it is fixed.
type Document struct {
	Title       string
	GeneratedAt time.Time
	Stats       []KeyStat
	Table       Table
	Columns     []ColumnSpec
}

// Fixed page geometry and style table, identical for all record kinds.
const (
	pageMarginLeft  = 10.0
	pageMarginTop   = 12.0
	pageMarginRight = 10.0
	footerHeight    = 14.0

	titleFontSize  = 16.0
	statFontSize   = 9.0
	headerFontSize = 8.5
	cellFontSize   = 8.0
	headerRowH     = 7.0
	dataRowH       = 6.0
)

var (
	headerFillRGB = [3]int{37, 99, 235}
	stripeFillRGB = [3]int{241, 245, 249}
	titleTextRGB  = [3]int{30, 41, 59}
)

// DocumentBuilder renders a Document into a paginated landscape PDF.
// Stateless apart from its injected configuration.
type DocumentBuilder struct {
	cfg    DocumentConfig
	logger *slog.Logger
}

// NewDocumentBuilder creates a document builder with the given branding
func NewDocumentBuilder(cfg DocumentConfig, logger *slog.Logger) *DocumentBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentBuilder{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "document_builder")),
	}
}

// Build renders the document and returns the PDF bytes. Output is
// deterministic for a fixed Document, including its GeneratedAt, which is
// also used as the embedded creation date.
func (b *DocumentBuilder) Build(doc Document) ([]byte, error) {
	if len(doc.Columns) != len(doc.Table.Columns) {
		return nil, fmt.Errorf("column spec count %d does not match table columns %d",
			len(doc.Columns), len(doc.Table.Columns))
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetCreationDate(doc.GeneratedAt)
	pdf.SetMargins(pageMarginLeft, pageMarginTop, pageMarginRight)
	pdf.SetAutoPageBreak(false, footerHeight)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	brand := b.cfg.BrandName
	year := doc.GeneratedAt.Year()
	pdf.SetFooterFunc(func() {
		pdf.SetY(-footerHeight + 2)
		pdf.SetFont("Helvetica", "I", 7.5)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, tr(fmt.Sprintf("%s © %d", brand, year)), "", 0, "L", false, 0, "")
		pdf.SetX(pageMarginLeft)
		pdf.CellFormat(0, 5, tr(fmt.Sprintf("Page %d sur {nb}", pdf.PageNo())), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	b.drawHeader(pdf, tr, doc)
	widths := resolveWidths(pdf, doc.Columns)
	b.drawTable(pdf, tr, doc, widths)

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("serialize document: %w", err)
	}

	b.logger.Debug("document built",
		slog.String("title", doc.Title),
		slog.Int("rows", len(doc.Table.Rows)),
		slog.Int("bytes", out.Len()))
	return out.Bytes(), nil
}

// drawHeader paints the branded header, the centered all-caps title, and the
// key statistics strip on the first page.
func (b *DocumentBuilder) drawHeader(pdf *gofpdf.Fpdf, tr func(string) string, doc Document) {
	left, top, right, _ := pdf.GetMargins()
	pageW, _ := pdf.GetPageSize()
	usable := pageW - left - right

	x := left
	if b.cfg.LogoPath != "" {
		if _, err := os.Stat(b.cfg.LogoPath); err == nil {
			pdf.ImageOptions(b.cfg.LogoPath, left, top, 14, 14, false,
				gofpdf.ImageOptions{ReadDpi: true}, 0, "")
			x += 17
		}
	}

	pdf.SetXY(x, top+2)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(titleTextRGB[0], titleTextRGB[1], titleTextRGB[2])
	pdf.CellFormat(usable/2, 7, tr(b.cfg.BrandName), "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(left+usable/2, top+2)
	pdf.CellFormat(usable/2, 7, tr("Généré le "+FormatDateTime(doc.GeneratedAt)), "", 1, "R", false, 0, "")

	pdf.SetY(top + 16)
	pdf.SetFont("Helvetica", "B", titleFontSize)
	pdf.SetTextColor(titleTextRGB[0], titleTextRGB[1], titleTextRGB[2])
	pdf.CellFormat(usable, 9, tr(strings.ToUpper(doc.Title)), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	if len(doc.Stats) > 0 {
		statW := usable / float64(len(doc.Stats))
		pdf.SetFont("Helvetica", "", statFontSize)
		y := pdf.GetY()
		for i, stat := range doc.Stats {
			pdf.SetXY(left+float64(i)*statW, y)
			pdf.SetFont("Helvetica", "B", statFontSize)
			pdf.SetTextColor(titleTextRGB[0], titleTextRGB[1], titleTextRGB[2])
			pdf.CellFormat(statW, 5, tr(stat.Label), "", 2, "C", false, 0, "")
			pdf.SetFont("Helvetica", "", statFontSize)
			pdf.SetTextColor(60, 60, 60)
			pdf.CellFormat(statW, 5, tr(stat.Value), "", 0, "C", false, 0, "")
		}
		pdf.SetY(y + 12)
	}
}

// drawTable paints the striped table, repeating the colored header row on
// every page break.
func (b *DocumentBuilder) drawTable(pdf *gofpdf.Fpdf, tr func(string) string, doc Document, widths []float64) {
	_, pageH := pdf.GetPageSize()
	breakAt := pageH - footerHeight - dataRowH

	drawHead := func() {
		pdf.SetFont("Helvetica", "B", headerFontSize)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFillColor(headerFillRGB[0], headerFillRGB[1], headerFillRGB[2])
		for i, name := range doc.Table.Columns {
			pdf.CellFormat(widths[i], headerRowH, tr(name), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}

	drawHead()
	pdf.SetFont("Helvetica", "", cellFontSize)
	pdf.SetTextColor(40, 40, 40)

	for r, row := range doc.Table.Rows {
		if pdf.GetY() > breakAt {
			pdf.AddPage()
			drawHead()
			pdf.SetFont("Helvetica", "", cellFontSize)
			pdf.SetTextColor(40, 40, 40)
		}
		fill := r%2 == 1
		pdf.SetFillColor(stripeFillRGB[0], stripeFillRGB[1], stripeFillRGB[2])
		for c, value := range row {
			if c < len(doc.Columns) && doc.Columns[c].MaxChars > 0 {
				value = Truncate(value, doc.Columns[c].MaxChars)
			}
			pdf.CellFormat(widths[c], dataRowH, tr(value), "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}
}

// resolveWidths turns the column specs into absolute widths: fixed columns
// keep their width, flexible ones split whatever the page has left.
func resolveWidths(pdf *gofpdf.Fpdf, specs []ColumnSpec) []float64 {
	left, _, right, _ := pdf.GetMargins()
	pageW, _ := pdf.GetPageSize()
	usable := pageW - left - right

	fixed := 0.0
	flex := 0
	for _, spec := range specs {
		if spec.Width > 0 {
			fixed += spec.Width
		} else {
			flex++
		}
	}

	widths := make([]float64, len(specs))
	remaining := usable - fixed
	for i, spec := range specs {
		if spec.Width > 0 {
			widths[i] = spec.Width
		} else if flex > 0 {
			widths[i] = remaining / float64(flex)
		}
	}
	return widths
}

// Truncate cuts a value at the given character budget, appending an
// ellipsis. Budgets are counted in runes so accented text is not cut
// mid-character.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
