// Package pdf renders content trees into PDF documents with go-pdf/fpdf.
// Auto page breaks are disabled so every content-tree page stays on one
// physical page; row heights and column widths from the tree are drawn
// exactly as given.
package pdf

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"calprint/internal/color"
	"calprint/internal/doc"
)

const (
	cellPadding = 2.0
	// blank cells before the first and after the last day of the month
	blankGray = 240
)

// Renderer draws content trees with go-pdf/fpdf.
type Renderer struct {
	// Font is the core font family, Helvetica by default.
	Font string
}

func New() *Renderer {
	return &Renderer{Font: "Helvetica"}
}

// Render produces the binary PDF for the document.
func (r *Renderer) Render(d *doc.Document) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	pdf.SetTitle(d.Meta.Title, true)
	pdf.SetAuthor(d.Meta.Author, true)
	if len(d.Meta.Keywords) > 0 {
		pdf.SetKeywords(strings.Join(d.Meta.Keywords, ", "), true)
	}
	if !d.Meta.Created.IsZero() {
		pdf.SetCreationDate(d.Meta.Created)
	}

	// Core fonts are cp1252-encoded; translate UTF-8 input once.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for i := range d.Pages {
		r.renderPage(pdf, tr, &d.Pages[i])
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Renderer) renderPage(pdf *fpdf.Fpdf, tr func(string) string, p *doc.Page) {
	pdf.AddPageFormat("P", fpdf.SizeType{Wd: p.PageW, Ht: p.PageH})

	x0 := p.Margin
	y := p.Margin

	// Title row.
	pdf.SetFont(r.Font, "B", p.TitleFontSize)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(x0, y)
	pdf.CellFormat(p.PageW-2*p.Margin, p.TitleHeight, tr(p.Title), "", 0, "CM", false, 0, "")
	y += p.TitleHeight

	// Weekday header row.
	pdf.SetFont(r.Font, "B", p.HeaderFontSize)
	pdf.SetFillColor(225, 225, 225)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	for col, hc := range p.Header {
		x := x0 + float64(col)*p.ColWidth
		pdf.SetXY(x, y)
		pdf.CellFormat(p.ColWidth, p.HeaderHeight, tr(hc.Text), "1", 0, "CM", true, 0, "")
	}
	y += p.HeaderHeight

	// Week rows.
	for i := range p.Rows {
		row := &p.Rows[i]
		for col := 0; col < 7; col++ {
			x := x0 + float64(col)*p.ColWidth
			r.renderCell(pdf, tr, p, &row.Cells[col], x, y, p.ColWidth, row.Height)
		}
		y += row.Height
	}

	// Legend rows.
	pdf.SetFont(r.Font, "", p.HeaderFontSize)
	for _, lrow := range p.Legend {
		for i, lc := range lrow.Cells {
			x := x0 + float64(i)*p.ColWidth
			setFill(pdf, lc.Background)
			setText(pdf, lc.Color)
			pdf.SetXY(x, y)
			pdf.CellFormat(p.ColWidth, lrow.Height, tr(lc.Text), "1", 0, "CM", true, 0, "")
		}
		y += lrow.Height
	}
}

// renderCell draws one day cell: border, the day number pinned to the
// bottom-right corner (placed first, using the already-solved row height),
// then the entries top-down in sort order.
func (r *Renderer) renderCell(pdf *fpdf.Fpdf, tr func(string) string, p *doc.Page, cell *doc.GridCell, x, y, w, h float64) {
	if cell.Blank {
		pdf.SetFillColor(blankGray, blankGray, blankGray)
		pdf.Rect(x, y, w, h, "FD")
		return
	}
	pdf.Rect(x, y, w, h, "D")

	lineHeight := p.FontSize * 1.4

	pdf.SetFont(r.Font, "B", p.FontSize)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(x, y+h-lineHeight-cellPadding/2)
	pdf.CellFormat(w-cellPadding, lineHeight, strconv.Itoa(cell.Day), "", 0, "RB", false, 0, "")

	pdf.SetFont(r.Font, "", p.FontSize)
	ey := y + cellPadding/2
	for _, en := range cell.Entries {
		fill := en.Background != color.White
		if fill {
			setFill(pdf, en.Background)
		}
		setText(pdf, en.Color)
		for _, line := range pdf.SplitText(tr(en.Text), w-2*cellPadding) {
			pdf.SetXY(x+cellPadding, ey)
			pdf.CellFormat(w-2*cellPadding, lineHeight, line, "", 0, "L", fill, 0, "")
			ey += lineHeight
		}
	}
}

func setFill(pdf *fpdf.Fpdf, c color.RGB) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func setText(pdf *fpdf.Fpdf, c color.RGB) {
	pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
}
